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
	ErrWorkoutNotFound     = errors.New("workout not found")
	ErrWorkoutAccessDenied = errors.New("access denied to this workout")
)

// WorkoutInput carries the editable workout fields.
type WorkoutInput struct {
	Name              string
	Description       string
	Difficulty        string
	EstimatedDuration int
	Exercises         []domain.WorkoutExercise
	IsPublic          bool
}

type WorkoutService interface {
	CreateWorkout(ctx context.Context, ownerID primitive.ObjectID, in WorkoutInput) (*domain.Workout, error)
	// GetWorkout returns a workout the user owns or that is public.
	GetWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error)
	ListWorkouts(ctx context.Context, userID primitive.ObjectID, page domain.PageRequest) (*domain.WorkoutPage, error)
	UpdateWorkout(ctx context.Context, ownerID, workoutID primitive.ObjectID, in WorkoutInput) (*domain.Workout, error)
	DeleteWorkout(ctx context.Context, ownerID, workoutID primitive.ObjectID) error
}

type workoutService struct {
	workoutRepo  repository.WorkoutRepository
	exerciseRepo repository.ExerciseRepository
	paging       session.Paging
}

func NewWorkoutService(workoutRepo repository.WorkoutRepository, exerciseRepo repository.ExerciseRepository, paging session.Paging) WorkoutService {
	return &workoutService{
		workoutRepo:  workoutRepo,
		exerciseRepo: exerciseRepo,
		paging:       paging,
	}
}

func (s *workoutService) CreateWorkout(ctx context.Context, ownerID primitive.ObjectID, in WorkoutInput) (*domain.Workout, error) {
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}
	workout := &domain.Workout{CreatedBy: ownerID}
	applyWorkoutInput(workout, in)

	workoutID, err := s.workoutRepo.Create(ctx, workout)
	if err != nil {
		return nil, err
	}
	workout.ID = workoutID
	return workout, nil
}

func (s *workoutService) GetWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if workout.CreatedBy != userID && !workout.IsPublic {
		return nil, ErrWorkoutAccessDenied
	}
	return workout, nil
}

func (s *workoutService) ListWorkouts(ctx context.Context, userID primitive.ObjectID, page domain.PageRequest) (*domain.WorkoutPage, error) {
	page = s.paging.Normalize(page)
	workouts, total, err := s.workoutRepo.ListVisible(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return &domain.WorkoutPage{
		Data:       workouts,
		Pagination: domain.NewPagination(page.Page, page.Limit, total),
	}, nil
}

func (s *workoutService) UpdateWorkout(ctx context.Context, ownerID, workoutID primitive.ObjectID, in WorkoutInput) (*domain.Workout, error) {
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}
	workout, err := s.GetWorkout(ctx, ownerID, workoutID)
	if err != nil {
		return nil, err
	}
	if workout.CreatedBy != ownerID {
		return nil, ErrWorkoutAccessDenied
	}

	applyWorkoutInput(workout, in)
	if err := s.workoutRepo.Update(ctx, workout); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return workout, nil
}

func (s *workoutService) DeleteWorkout(ctx context.Context, ownerID, workoutID primitive.ObjectID) error {
	workout, err := s.GetWorkout(ctx, ownerID, workoutID)
	if err != nil {
		return err
	}
	if workout.CreatedBy != ownerID {
		return ErrWorkoutAccessDenied
	}
	if err := s.workoutRepo.Delete(ctx, workoutID, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutNotFound
		}
		return err
	}
	return nil
}

// validate checks the input and that every referenced exercise exists.
func (s *workoutService) validate(ctx context.Context, in WorkoutInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: workout name is required", ErrValidationFailed)
	}
	if len(in.Exercises) == 0 {
		return fmt.Errorf("%w: a workout needs at least one exercise", ErrValidationFailed)
	}
	if in.EstimatedDuration < 0 {
		return fmt.Errorf("%w: estimatedDuration must not be negative", ErrValidationFailed)
	}
	for i, we := range in.Exercises {
		if we.Sets < 1 {
			return fmt.Errorf("%w: exercises[%d].sets must be at least 1", ErrValidationFailed, i)
		}
		if we.Reps < 0 || we.WeightKg < 0 || we.DurationSeconds < 0 || we.RestSeconds < 0 {
			return fmt.Errorf("%w: exercises[%d] has a negative value", ErrValidationFailed, i)
		}
		if _, err := s.exerciseRepo.GetByID(ctx, we.ExerciseID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: exercises[%d].exerciseId does not exist", ErrValidationFailed, i)
			}
			return err
		}
	}
	return nil
}

func applyWorkoutInput(w *domain.Workout, in WorkoutInput) {
	w.Name = strings.TrimSpace(in.Name)
	w.Description = in.Description
	w.Difficulty = in.Difficulty
	w.EstimatedDuration = in.EstimatedDuration
	w.Exercises = in.Exercises
	w.IsPublic = in.IsPublic
}
