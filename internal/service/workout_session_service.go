package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/domain"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/repository"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/session"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/stream"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrSessionNotFound     = errors.New("workout session not found")
	ErrSessionAccessDenied = errors.New("access denied to this workout session")
	ErrActiveSessionExists = errors.New("an active workout session already exists")
	ErrSessionConflict     = errors.New("workout session was modified concurrently, reload and retry")
)

// SessionPublisher receives every persisted session change. *stream.Hub implements it.
type SessionPublisher interface {
	PublishSession(eventType string, s *domain.WorkoutSession)
}

type WorkoutSessionService interface {
	StartSession(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.WorkoutSession, error)
	// GetActiveSession returns nil and no error when the user has no unfinished session.
	GetActiveSession(ctx context.Context, userID primitive.ObjectID) (*domain.WorkoutSession, error)
	GetSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*domain.WorkoutSession, error)

	// exerciseID may be nil; it is resolved from the workout.
	LogSetProgress(ctx context.Context, userID, sessionID primitive.ObjectID, exerciseIndex int, exerciseID primitive.ObjectID, set domain.SetPerformance) (*domain.WorkoutSession, error)
	CompleteExercise(ctx context.Context, userID, sessionID primitive.ObjectID, exerciseIndex int, exerciseID primitive.ObjectID, caloriesBurned float64) (*domain.WorkoutSession, error)
	PauseSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*domain.WorkoutSession, error)
	ResumeSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*domain.WorkoutSession, error)
	CompleteSession(ctx context.Context, userID, sessionID primitive.ObjectID, a session.Annotation) (*domain.WorkoutSession, error)
	StopSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*domain.WorkoutSession, error)
	AnnotateSession(ctx context.Context, userID, sessionID primitive.ObjectID, a session.Annotation) (*domain.WorkoutSession, error)
	DeleteSession(ctx context.Context, userID, sessionID primitive.ObjectID) error

	ListSessions(ctx context.Context, userID primitive.ObjectID, filter domain.SessionFilter, page domain.PageRequest) (*domain.SessionPage, error)
	GetStats(ctx context.Context, userID primitive.ObjectID) (*domain.SessionStats, error)
}

type workoutSessionService struct {
	sessionRepo repository.WorkoutSessionRepository
	workoutRepo repository.WorkoutRepository
	lifecycle   *session.Lifecycle
	paging      session.Paging
	publisher   SessionPublisher
}

// NewWorkoutSessionService wires the lifecycle to persistence. publisher may be nil.
func NewWorkoutSessionService(
	sessionRepo repository.WorkoutSessionRepository,
	workoutRepo repository.WorkoutRepository,
	lifecycle *session.Lifecycle,
	paging session.Paging,
	publisher SessionPublisher,
) WorkoutSessionService {
	if lifecycle == nil {
		lifecycle = session.NewLifecycle(nil)
	}
	return &workoutSessionService{
		sessionRepo: sessionRepo,
		workoutRepo: workoutRepo,
		lifecycle:   lifecycle,
		paging:      paging,
		publisher:   publisher,
	}
}

// StartSession begins a session against a workout the user can see.
// TotalExercises is taken from the workout's exercise list.
func (s *workoutSessionService) StartSession(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.WorkoutSession, error) {
	workout, err := s.loadWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	if workout.CreatedBy != userID && !workout.IsPublic {
		return nil, ErrWorkoutAccessDenied
	}

	if _, err := s.sessionRepo.GetActiveByUser(ctx, userID); err == nil {
		return nil, ErrActiveSessionExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	ws, err := s.lifecycle.Start(userID, workoutID, len(workout.Exercises))
	if err != nil {
		return nil, err
	}
	if _, err := s.sessionRepo.Create(ctx, ws); err != nil {
		// Lost a race with a concurrent start
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrActiveSessionExists
		}
		return nil, err
	}
	s.publish(stream.EventSessionUpdated, ws)
	return s.present(ws), nil
}

func (s *workoutSessionService) GetActiveSession(ctx context.Context, userID primitive.ObjectID) (*domain.WorkoutSession, error) {
	ws, err := s.sessionRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return s.present(ws), nil
}

func (s *workoutSessionService) GetSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*domain.WorkoutSession, error) {
	ws, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.present(ws), nil
}

func (s *workoutSessionService) LogSetProgress(ctx context.Context, userID, sessionID primitive.ObjectID, exerciseIndex int, exerciseID primitive.ObjectID, set domain.SetPerformance) (*domain.WorkoutSession, error) {
	return s.mutate(ctx, userID, sessionID, func(ws *domain.WorkoutSession) error {
		id, err := s.resolveExercise(ctx, ws, exerciseIndex, exerciseID)
		if err != nil {
			return err
		}
		return s.lifecycle.LogSetProgress(ws, exerciseIndex, id, set)
	})
}

func (s *workoutSessionService) CompleteExercise(ctx context.Context, userID, sessionID primitive.ObjectID, exerciseIndex int, exerciseID primitive.ObjectID, caloriesBurned float64) (*domain.WorkoutSession, error) {
	return s.mutate(ctx, userID, sessionID, func(ws *domain.WorkoutSession) error {
		id, err := s.resolveExercise(ctx, ws, exerciseIndex, exerciseID)
		if err != nil {
			return err
		}
		return s.lifecycle.CompleteExercise(ws, exerciseIndex, id, caloriesBurned)
	})
}

func (s *workoutSessionService) PauseSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*domain.WorkoutSession, error) {
	return s.mutate(ctx, userID, sessionID, s.lifecycle.Pause)
}

func (s *workoutSessionService) ResumeSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*domain.WorkoutSession, error) {
	return s.mutate(ctx, userID, sessionID, s.lifecycle.Resume)
}

func (s *workoutSessionService) CompleteSession(ctx context.Context, userID, sessionID primitive.ObjectID, a session.Annotation) (*domain.WorkoutSession, error) {
	return s.mutate(ctx, userID, sessionID, func(ws *domain.WorkoutSession) error {
		return s.lifecycle.CompleteSession(ws, a)
	})
}

func (s *workoutSessionService) StopSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*domain.WorkoutSession, error) {
	return s.mutate(ctx, userID, sessionID, s.lifecycle.StopSession)
}

func (s *workoutSessionService) AnnotateSession(ctx context.Context, userID, sessionID primitive.ObjectID, a session.Annotation) (*domain.WorkoutSession, error) {
	return s.mutate(ctx, userID, sessionID, func(ws *domain.WorkoutSession) error {
		return s.lifecycle.Annotate(ws, a)
	})
}

// DeleteSession permanently removes a session in any state.
func (s *workoutSessionService) DeleteSession(ctx context.Context, userID, sessionID primitive.ObjectID) error {
	ws, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	if err := s.sessionRepo.Delete(ctx, sessionID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	s.publish(stream.EventSessionDeleted, ws)
	return nil
}

func (s *workoutSessionService) ListSessions(ctx context.Context, userID primitive.ObjectID, filter domain.SessionFilter, page domain.PageRequest) (*domain.SessionPage, error) {
	page = s.paging.Normalize(page)
	sessions, total, err := s.sessionRepo.List(ctx, userID, filter, page)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		sessions[i] = *s.present(&sessions[i])
	}
	return &domain.SessionPage{
		Sessions:   sessions,
		Total:      total,
		Page:       page.Page,
		TotalPages: session.TotalPages(total, page.Limit),
	}, nil
}

func (s *workoutSessionService) GetStats(ctx context.Context, userID primitive.ObjectID) (*domain.SessionStats, error) {
	return s.sessionRepo.Stats(ctx, userID)
}

// mutate loads an owned session, applies one transition and persists it under the loaded version.
// A failed transition is returned as is and nothing is written.
func (s *workoutSessionService) mutate(ctx context.Context, userID, sessionID primitive.ObjectID, apply func(*domain.WorkoutSession) error) (*domain.WorkoutSession, error) {
	ws, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := apply(ws); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Update(ctx, ws); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrSessionConflict
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("save workout session: %w", err)
	}
	s.publish(stream.EventSessionUpdated, ws)
	return s.present(ws), nil
}

func (s *workoutSessionService) loadOwned(ctx context.Context, userID, sessionID primitive.ObjectID) (*domain.WorkoutSession, error) {
	ws, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if ws.UserID != userID {
		return nil, ErrSessionAccessDenied
	}
	return ws, nil
}

func (s *workoutSessionService) loadWorkout(ctx context.Context, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return workout, nil
}

// resolveExercise maps an exercise index to the workout's exercise ID.
// A deleted or shortened workout leaves the ID unknown, which the lifecycle accepts.
// Sessions that are not active are passed through so the lifecycle reports the transition error first.
func (s *workoutSessionService) resolveExercise(ctx context.Context, ws *domain.WorkoutSession, index int, given primitive.ObjectID) (primitive.ObjectID, error) {
	if ws.Status != domain.SessionActive {
		return given, nil
	}
	workout, err := s.workoutRepo.GetByID(ctx, ws.WorkoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return given, nil
		}
		return primitive.NilObjectID, err
	}
	if index < 0 || index >= len(workout.Exercises) {
		return given, nil
	}
	resolved := workout.Exercises[index].ExerciseID
	if given != primitive.NilObjectID && given != resolved {
		return primitive.NilObjectID, &session.ValidationError{Field: "exerciseId", Reason: "does not match the workout's exercise at this index"}
	}
	return resolved, nil
}

// present fills the fields that are never stored: live duration for unfinished sessions
// and the calories-per-minute rate.
func (s *workoutSessionService) present(ws *domain.WorkoutSession) *domain.WorkoutSession {
	out := ws.Clone()
	out.TotalDuration = session.LiveDuration(out, s.lifecycle.Now())
	session.Recompute(out)
	return out
}

func (s *workoutSessionService) publish(eventType string, ws *domain.WorkoutSession) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishSession(eventType, s.present(ws))
}
