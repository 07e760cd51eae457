package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/domain"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type workoutRepository struct {
	mu       sync.RWMutex
	workouts map[primitive.ObjectID]domain.Workout
}

// NewWorkoutRepository creates an empty in-memory workout store.
func NewWorkoutRepository() repository.WorkoutRepository {
	return &workoutRepository{workouts: map[primitive.ObjectID]domain.Workout{}}
}

func (r *workoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now
	r.workouts[workout.ID] = copyWorkout(*workout)
	return workout.ID, nil
}

func (r *workoutRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	w = copyWorkout(w)
	return &w, nil
}

func (r *workoutRepository) ListVisible(ctx context.Context, userID primitive.ObjectID, page domain.PageRequest) ([]domain.Workout, int64, error) {
	r.mu.RLock()
	var visible []domain.Workout
	for _, w := range r.workouts {
		if w.CreatedBy == userID || w.IsPublic {
			visible = append(visible, copyWorkout(w))
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].CreatedAt.After(visible[j].CreatedAt)
	})
	return paginate(visible, page), int64(len(visible)), nil
}

func (r *workoutRepository) Update(ctx context.Context, workout *domain.Workout) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.workouts[workout.ID]
	if !ok || existing.CreatedBy != workout.CreatedBy {
		return repository.ErrNotFound
	}
	workout.CreatedAt = existing.CreatedAt
	workout.UpdatedAt = time.Now().UTC()
	r.workouts[workout.ID] = copyWorkout(*workout)
	return nil
}

func (r *workoutRepository) Delete(ctx context.Context, id, ownerID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.workouts[id]
	if !ok || w.CreatedBy != ownerID {
		return repository.ErrNotFound
	}
	delete(r.workouts, id)
	return nil
}

func copyWorkout(w domain.Workout) domain.Workout {
	if w.Exercises != nil {
		exercises := make([]domain.WorkoutExercise, len(w.Exercises))
		copy(exercises, w.Exercises)
		w.Exercises = exercises
	}
	return w
}
