package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/domain"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/repository"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/session"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound     = errors.New("exercise not found")
	ErrExerciseAccessDenied = errors.New("access denied to modify or delete this exercise")
	// ErrValidationFailed is wrapped with the failing field by every service.
	ErrValidationFailed = errors.New("validation failed")
)

// ExerciseInput carries the editable exercise fields.
type ExerciseInput struct {
	Name                string
	Description         string
	Category            string
	Difficulty          string
	PrimaryMuscleGroups []string
	Equipment           []string
	Instructions        []string
	VideoURL            string
	CaloriesPerMinute   float64
}

type ExerciseService interface {
	ListExercises(ctx context.Context, viewer domain.Role, query domain.ExerciseQuery) (*domain.ExercisePage, error)
	GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	// CreateExercise publishes admin submissions immediately; user submissions wait for approval.
	CreateExercise(ctx context.Context, creatorID primitive.ObjectID, role domain.Role, in ExerciseInput) (*domain.Exercise, error)
	UpdateExercise(ctx context.Context, exerciseID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error)
	ApproveExercise(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, exerciseID primitive.ObjectID) error
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	paging       session.Paging
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, paging session.Paging) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		paging:       paging,
	}
}

// ListExercises returns one page of the library. Only admins may see unapproved exercises.
func (s *exerciseService) ListExercises(ctx context.Context, viewer domain.Role, query domain.ExerciseQuery) (*domain.ExercisePage, error) {
	page := s.paging.Normalize(domain.PageRequest{Page: query.Page, Limit: query.Limit})
	query.Page, query.Limit = page.Page, page.Limit
	query.Sort = query.Sort.Normalized()
	if viewer != domain.RoleAdmin {
		approved := true
		query.Filters.IsApproved = &approved
	}

	exercises, total, err := s.exerciseRepo.List(ctx, query)
	if err != nil {
		return nil, err
	}
	return &domain.ExercisePage{
		Data:       exercises,
		Pagination: domain.NewPagination(page.Page, page.Limit, total),
		Sort:       query.Sort,
	}, nil
}

// GetExerciseByID retrieves a single exercise.
func (s *exerciseService) GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

func (s *exerciseService) CreateExercise(ctx context.Context, creatorID primitive.ObjectID, role domain.Role, in ExerciseInput) (*domain.Exercise, error) {
	if creatorID == primitive.NilObjectID {
		return nil, errors.New("creator ID is required to create an exercise")
	}
	if err := validateExercise(in); err != nil {
		return nil, err
	}

	exercise := &domain.Exercise{CreatedBy: creatorID, IsApproved: role == domain.RoleAdmin}
	applyExerciseInput(exercise, in)

	exerciseID, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	return s.GetExerciseByID(ctx, exerciseID)
}

func (s *exerciseService) UpdateExercise(ctx context.Context, exerciseID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error) {
	if err := validateExercise(in); err != nil {
		return nil, err
	}
	existing, err := s.GetExerciseByID(ctx, exerciseID)
	if err != nil {
		return nil, err
	}

	applyExerciseInput(existing, in)
	if err := s.exerciseRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return existing, nil
}

func (s *exerciseService) ApproveExercise(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	if err := s.exerciseRepo.SetApproved(ctx, exerciseID, true); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return s.GetExerciseByID(ctx, exerciseID)
}

func (s *exerciseService) DeleteExercise(ctx context.Context, exerciseID primitive.ObjectID) error {
	if err := s.exerciseRepo.Delete(ctx, exerciseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	return nil
}

func validateExercise(in ExerciseInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: exercise name is required", ErrValidationFailed)
	}
	if in.CaloriesPerMinute < 0 {
		return fmt.Errorf("%w: caloriesPerMinute must not be negative", ErrValidationFailed)
	}
	return nil
}

func applyExerciseInput(e *domain.Exercise, in ExerciseInput) {
	e.Name = strings.TrimSpace(in.Name)
	e.Description = in.Description
	e.Category = in.Category
	e.Difficulty = in.Difficulty
	e.PrimaryMuscleGroups = in.PrimaryMuscleGroups
	e.Equipment = in.Equipment
	e.Instructions = in.Instructions
	e.VideoURL = in.VideoURL
	e.CaloriesPerMinute = in.CaloriesPerMinute
}
