package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/domain"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type exerciseRepository struct {
	mu        sync.RWMutex
	exercises map[primitive.ObjectID]domain.Exercise
}

// NewExerciseRepository creates an empty in-memory exercise library.
func NewExerciseRepository() repository.ExerciseRepository {
	return &exerciseRepository{exercises: map[primitive.ObjectID]domain.Exercise{}}
}

func (r *exerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	if exercise.CreatedAt.IsZero() {
		exercise.CreatedAt = now
	}
	exercise.UpdatedAt = now
	r.exercises[exercise.ID] = *exercise
	return exercise.ID, nil
}

func (r *exerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ex, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ex, nil
}

func (r *exerciseRepository) List(ctx context.Context, query domain.ExerciseQuery) ([]domain.Exercise, int64, error) {
	r.mu.RLock()
	matched := make([]domain.Exercise, 0, len(r.exercises))
	for _, ex := range r.exercises {
		if exerciseMatches(query.Filters, ex) {
			matched = append(matched, ex)
		}
	}
	r.mu.RUnlock()

	sortSpec := query.Sort.Normalized()
	sort.SliceStable(matched, func(i, j int) bool {
		less := exerciseLess(sortSpec.Field, matched[i], matched[j])
		if sortSpec.Order == domain.SortAsc {
			return less
		}
		return exerciseLess(sortSpec.Field, matched[j], matched[i])
	})

	total := int64(len(matched))
	return paginate(matched, domain.PageRequest{Page: query.Page, Limit: query.Limit}), total, nil
}

func (r *exerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.exercises[exercise.ID]; !ok {
		return repository.ErrNotFound
	}
	exercise.UpdatedAt = time.Now().UTC()
	r.exercises[exercise.ID] = *exercise
	return nil
}

func (r *exerciseRepository) SetApproved(ctx context.Context, id primitive.ObjectID, approved bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ex, ok := r.exercises[id]
	if !ok {
		return repository.ErrNotFound
	}
	ex.IsApproved = approved
	ex.UpdatedAt = time.Now().UTC()
	r.exercises[id] = ex
	return nil
}

func (r *exerciseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.exercises[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.exercises, id)
	return nil
}

func exerciseMatches(f domain.ExerciseFilters, ex domain.Exercise) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(ex.Name), q) && !strings.Contains(strings.ToLower(ex.Description), q) {
			return false
		}
	}
	if f.Category != "" && ex.Category != f.Category {
		return false
	}
	if f.Difficulty != "" && ex.Difficulty != f.Difficulty {
		return false
	}
	if len(f.PrimaryMuscleGroups) > 0 && !overlaps(f.PrimaryMuscleGroups, ex.PrimaryMuscleGroups) {
		return false
	}
	if len(f.Equipment) > 0 && !overlaps(f.Equipment, ex.Equipment) {
		return false
	}
	if f.IsApproved != nil && ex.IsApproved != *f.IsApproved {
		return false
	}
	return true
}

func exerciseLess(field string, a, b domain.Exercise) bool {
	switch field {
	case "name":
		return a.Name < b.Name
	case "category":
		return a.Category < b.Category
	case "difficulty":
		return a.Difficulty < b.Difficulty
	case "caloriesPerMinute":
		return a.CaloriesPerMinute < b.CaloriesPerMinute
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

// overlaps mirrors Mongo's $in on an array field.
func overlaps(want, have []string) bool {
	for _, w := range want {
		for _, h := range have {
			if w == h {
				return true
			}
		}
	}
	return false
}

func paginate[T any](items []T, page domain.PageRequest) []T {
	if page.Limit <= 0 {
		return items
	}
	skip := page.Skip()
	if skip >= int64(len(items)) {
		return []T{}
	}
	end := skip + int64(page.Limit)
	if end > int64(len(items)) {
		end = int64(len(items))
	}
	return items[skip:end]
}
