// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise represents a single exercise definition in the library.
type Exercise struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedBy   primitive.ObjectID `bson:"createdBy" json:"createdBy"` // User who submitted the exercise
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	Category            string   `bson:"category" json:"category"`                                         // e.g., "strength", "cardio"
	Difficulty          string   `bson:"difficulty" json:"difficulty"`                                     // e.g., "beginner", "advanced"
	PrimaryMuscleGroups []string `bson:"primaryMuscleGroups,omitempty" json:"primaryMuscleGroups,omitempty"` // e.g., "chest", "legs"
	Equipment           []string `bson:"equipment,omitempty" json:"equipment,omitempty"`
	Instructions        []string `bson:"instructions,omitempty" json:"instructions,omitempty"`
	VideoURL            string   `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	CaloriesPerMinute   float64  `bson:"caloriesPerMinute,omitempty" json:"caloriesPerMinute,omitempty"`
	IsApproved          bool     `bson:"isApproved" json:"isApproved"` // Only admins approve user submissions

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Sort orders accepted by list queries.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// ExerciseFilters narrows an exercise library listing. All supplied filters must match.
type ExerciseFilters struct {
	Search              string   `json:"search,omitempty"`
	Category            string   `json:"category,omitempty"`
	Difficulty          string   `json:"difficulty,omitempty"`
	PrimaryMuscleGroups []string `json:"primaryMuscleGroups,omitempty"`
	Equipment           []string `json:"equipment,omitempty"`
	IsApproved          *bool    `json:"isApproved,omitempty"`
}

// SortSpec names a sort field and direction.
type SortSpec struct {
	Field string `json:"field"`
	Order string `json:"order"`
}

// ExerciseQuery is the paginated list request for the exercise library.
type ExerciseQuery struct {
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
	Filters ExerciseFilters `json:"filters"`
	Sort    SortSpec        `json:"sort"`
}

// Pagination describes the page returned by a list query.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// NewPagination computes page bookkeeping for a total count.
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// ExercisePage is one page of the exercise library.
type ExercisePage struct {
	Data       []Exercise `json:"data"`
	Pagination Pagination `json:"pagination"`
	Sort       SortSpec   `json:"sort"`
}

// DefaultExerciseSortField is used when a listing names no sort field.
const DefaultExerciseSortField = "createdAt"

// ExerciseSortFields whitelists the fields a listing may be sorted by.
var ExerciseSortFields = map[string]bool{
	"name":              true,
	"category":          true,
	"difficulty":        true,
	"caloriesPerMinute": true,
	"createdAt":         true,
}

// Normalized falls back to newest first for unknown fields or orders.
func (s SortSpec) Normalized() SortSpec {
	if !ExerciseSortFields[s.Field] {
		s.Field = DefaultExerciseSortField
	}
	if s.Order != SortAsc {
		s.Order = SortDesc
	}
	return s
}
