package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionStatus type for workout session lifecycle
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionPaused    SessionStatus = "paused"
	SessionCompleted SessionStatus = "completed" // Terminal
	SessionStopped   SessionStatus = "stopped"   // Terminal, ended early
)

// IsTerminal reports whether no further transition is allowed.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionCompleted || s == SessionStopped
}

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionActive, SessionPaused, SessionCompleted, SessionStopped:
		return true
	}
	return false
}

// Mood is how the user felt after a session.
type Mood string

const (
	MoodGreat     Mood = "great"
	MoodGood      Mood = "good"
	MoodOkay      Mood = "okay"
	MoodTired     Mood = "tired"
	MoodExhausted Mood = "exhausted"
)

func (m Mood) Valid() bool {
	switch m {
	case MoodGreat, MoodGood, MoodOkay, MoodTired, MoodExhausted:
		return true
	}
	return false
}

// HeartRateStats are optional wearable readings attached after a session.
type HeartRateStats struct {
	Average int `bson:"average" json:"average"`
	Max     int `bson:"max" json:"max"`
	Min     int `bson:"min" json:"min"`
}

// SetPerformance is one logged working set. A set is replaced only by re-submitting its index.
type SetPerformance struct {
	SetIndex    int       `bson:"setIndex" json:"setIndex"`
	Reps        int       `bson:"reps" json:"reps"`
	WeightKg    float64   `bson:"weight" json:"weight"`
	Duration    int64     `bson:"duration" json:"duration"` // Seconds
	RestTime    int64     `bson:"restTime" json:"restTime"` // Seconds
	CompletedAt time.Time `bson:"completedAt" json:"completedAt"`
	Notes       string    `bson:"notes,omitempty" json:"notes,omitempty"`
}

// ExerciseCompletion is the record of one exercise within a session. It lives in
// WorkoutSession.CurrentExercise while sets are logged and moves to CompletedExercises once completed.
type ExerciseCompletion struct {
	ExerciseID     primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	ExerciseIndex  int                `bson:"exerciseIndex" json:"exerciseIndex"`
	Sets           []SetPerformance   `bson:"sets" json:"sets"`
	TotalDuration  int64              `bson:"totalDuration" json:"totalDuration"` // Seconds, sets + rest
	CaloriesBurned float64            `bson:"caloriesBurned" json:"caloriesBurned"`
	IsCompleted    bool               `bson:"isCompleted" json:"isCompleted"`
	StartedAt      time.Time          `bson:"startedAt" json:"startedAt"`
	CompletedAt    *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// WorkoutSession represents one attempt at performing a workout.
type WorkoutSession struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	WorkoutID primitive.ObjectID `bson:"workoutId" json:"workoutId"`
	Status    SessionStatus      `bson:"status" json:"status"`

	StartTime      time.Time  `bson:"startTime" json:"startTime"`
	EndTime        *time.Time `bson:"endTime,omitempty" json:"endTime,omitempty"` // Set iff completed or stopped
	PausedAt       *time.Time `bson:"pausedAt,omitempty" json:"pausedAt,omitempty"`
	TotalDuration  int64      `bson:"totalDuration" json:"totalDuration"`   // Seconds, excludes pauses
	PausedDuration int64      `bson:"pausedDuration" json:"pausedDuration"` // Seconds

	CurrentExerciseIndex int                  `bson:"currentExerciseIndex" json:"currentExerciseIndex"`
	TotalExercises       int                  `bson:"totalExercises" json:"totalExercises"`
	CompletedExercises   []ExerciseCompletion `bson:"completedExercises" json:"completedExercises"` // Completed only, one per index
	CurrentExercise      *ExerciseCompletion  `bson:"currentExercise,omitempty" json:"currentExercise,omitempty"`

	TotalCaloriesBurned  float64  `bson:"totalCaloriesBurned" json:"totalCaloriesBurned"`
	CompletionPercentage int      `bson:"completionPercentage" json:"completionPercentage"`
	CaloriesPerMinute    *float64 `bson:"-" json:"caloriesPerMinute,omitempty"` // Virtual

	Notes     string          `bson:"notes,omitempty" json:"notes,omitempty"`
	Rating    *int            `bson:"rating,omitempty" json:"rating,omitempty"` // 1-5
	Mood      Mood            `bson:"mood,omitempty" json:"mood,omitempty"`
	HeartRate *HeartRateStats `bson:"heartRate,omitempty" json:"heartRate,omitempty"`

	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Exercise returns the record for an exercise index, completed or in progress, or nil if it was never started.
func (s *WorkoutSession) Exercise(index int) *ExerciseCompletion {
	for i := range s.CompletedExercises {
		if s.CompletedExercises[i].ExerciseIndex == index {
			return &s.CompletedExercises[i]
		}
	}
	if s.CurrentExercise != nil && s.CurrentExercise.ExerciseIndex == index {
		return s.CurrentExercise
	}
	return nil
}

// CompletedCount is the number of exercises marked complete.
func (s *WorkoutSession) CompletedCount() int {
	n := 0
	for _, ex := range s.CompletedExercises {
		if ex.IsCompleted {
			n++
		}
	}
	return n
}

// Clone returns a deep copy, so a failed transition can never leak partial writes.
func (s *WorkoutSession) Clone() *WorkoutSession {
	if s == nil {
		return nil
	}
	c := *s
	c.EndTime = cloneTime(s.EndTime)
	c.PausedAt = cloneTime(s.PausedAt)
	if s.Rating != nil {
		r := *s.Rating
		c.Rating = &r
	}
	if s.HeartRate != nil {
		hr := *s.HeartRate
		c.HeartRate = &hr
	}
	if s.CaloriesPerMinute != nil {
		v := *s.CaloriesPerMinute
		c.CaloriesPerMinute = &v
	}
	if s.CompletedExercises != nil {
		c.CompletedExercises = make([]ExerciseCompletion, len(s.CompletedExercises))
		for i, ex := range s.CompletedExercises {
			c.CompletedExercises[i] = cloneExercise(ex)
		}
	}
	if s.CurrentExercise != nil {
		ex := cloneExercise(*s.CurrentExercise)
		c.CurrentExercise = &ex
	}
	return &c
}

func cloneExercise(ex ExerciseCompletion) ExerciseCompletion {
	ex.CompletedAt = cloneTime(ex.CompletedAt)
	if ex.Sets != nil {
		sets := make([]SetPerformance, len(ex.Sets))
		copy(sets, ex.Sets)
		ex.Sets = sets
	}
	return ex
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
