package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutExercise is one entry of a workout's ordered exercise list.
type WorkoutExercise struct {
	ExerciseID      primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Sets            int                `bson:"sets" json:"sets"`
	Reps            int                `bson:"reps,omitempty" json:"reps,omitempty"`
	WeightKg        float64            `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	DurationSeconds int                `bson:"durationSeconds,omitempty" json:"durationSeconds,omitempty"` // For timed exercises
	RestSeconds     int                `bson:"restSeconds,omitempty" json:"restSeconds,omitempty"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Workout is a user-created routine. Sessions are performed against it.
type Workout struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedBy         primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	Name              string             `bson:"name" json:"name"` // e.g., "Day 1: Upper Body", "Long Run"
	Description       string             `bson:"description,omitempty" json:"description,omitempty"`
	Difficulty        string             `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
	EstimatedDuration int                `bson:"estimatedDuration,omitempty" json:"estimatedDuration,omitempty"` // Minutes
	Exercises         []WorkoutExercise  `bson:"exercises" json:"exercises"`                                     // Order matters: index == exerciseIndex in sessions
	IsPublic          bool               `bson:"isPublic" json:"isPublic"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// WorkoutPage is one page of a user's workouts.
type WorkoutPage struct {
	Data       []Workout  `json:"data"`
	Pagination Pagination `json:"pagination"`
}
