package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/domain"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/repository"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/session"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type workoutSessionRepository struct {
	mu       sync.RWMutex
	sessions map[primitive.ObjectID]*domain.WorkoutSession
}

// NewWorkoutSessionRepository creates an empty in-memory session store.
// Stored sessions are deep-copied in and out so callers never share state with the store.
func NewWorkoutSessionRepository() repository.WorkoutSessionRepository {
	return &workoutSessionRepository{sessions: map[primitive.ObjectID]*domain.WorkoutSession{}}
}

func (r *workoutSessionRepository) Create(ctx context.Context, s *domain.WorkoutSession) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !s.Status.IsTerminal() {
		for _, existing := range r.sessions {
			if existing.UserID == s.UserID && !existing.Status.IsTerminal() {
				return primitive.NilObjectID, repository.ErrDuplicate
			}
		}
	}
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	// Timestamps already set by the lifecycle clock are kept.
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.CreatedAt
	}
	s.Version = 1
	r.sessions[s.ID] = s.Clone()
	return s.ID, nil
}

func (r *workoutSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.Clone(), nil
}

func (r *workoutSessionRepository) GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*domain.WorkoutSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.sessions {
		if s.UserID == userID && !s.Status.IsTerminal() {
			return s.Clone(), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *workoutSessionRepository) Update(ctx context.Context, s *domain.WorkoutSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.sessions[s.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != s.Version {
		return repository.ErrConflict
	}
	s.Version++
	s.CreatedAt = stored.CreatedAt
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}
	r.sessions[s.ID] = s.Clone()
	return nil
}

func (r *workoutSessionRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok || s.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *workoutSessionRepository) List(ctx context.Context, userID primitive.ObjectID, filter domain.SessionFilter, page domain.PageRequest) ([]domain.WorkoutSession, int64, error) {
	matched := r.userSessions(userID, func(s *domain.WorkoutSession) bool {
		return session.Matches(filter, s)
	})
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].StartTime.Equal(matched[j].StartTime) {
			return matched[i].StartTime.After(matched[j].StartTime)
		}
		return matched[i].ID.Hex() > matched[j].ID.Hex()
	})
	return paginate(matched, page), int64(len(matched)), nil
}

func (r *workoutSessionRepository) Stats(ctx context.Context, userID primitive.ObjectID) (*domain.SessionStats, error) {
	stats := session.Summarize(r.userSessions(userID, nil))
	return &stats, nil
}

func (r *workoutSessionRepository) userSessions(userID primitive.ObjectID, keep func(*domain.WorkoutSession) bool) []domain.WorkoutSession {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.WorkoutSession{}
	for _, s := range r.sessions {
		if s.UserID != userID || (keep != nil && !keep(s)) {
			continue
		}
		out = append(out, *s.Clone())
	}
	return out
}
