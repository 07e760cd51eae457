package repository

import (
	"context"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
	ErrDuplicate    = RepositoryError("duplicate key")
	// ErrConflict means the stored document changed since it was read (version mismatch).
	ErrConflict = RepositoryError("version conflict")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// ExerciseRepository defines the interface for the exercise library.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	List(ctx context.Context, query domain.ExerciseQuery) ([]domain.Exercise, int64, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	SetApproved(ctx context.Context, id primitive.ObjectID, approved bool) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// WorkoutRepository defines the interface for interacting with workout templates.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	// ListVisible returns the user's own workouts plus public ones.
	ListVisible(ctx context.Context, userID primitive.ObjectID, page domain.PageRequest) ([]domain.Workout, int64, error)
	Update(ctx context.Context, workout *domain.Workout) error
	Delete(ctx context.Context, id, ownerID primitive.ObjectID) error
}

// WorkoutSessionRepository persists workout sessions.
// Update is optimistic: it succeeds only when the stored version equals session.Version,
// then increments it. A mismatch returns ErrConflict.
type WorkoutSessionRepository interface {
	Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error)
	// GetActiveByUser returns the user's active or paused session, or ErrNotFound.
	GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*domain.WorkoutSession, error)
	Update(ctx context.Context, session *domain.WorkoutSession) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
	List(ctx context.Context, userID primitive.ObjectID, filter domain.SessionFilter, page domain.PageRequest) ([]domain.WorkoutSession, int64, error)
	Stats(ctx context.Context, userID primitive.ObjectID) (*domain.SessionStats, error)
}
