// Package session holds the workout-session state machine and its derived metrics.
// Nothing here performs I/O; callers load a session, apply one transition and persist the result.
package session

import (
	"math"
	"sort"
	"time"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Annotation holds the optional post-session fields. Nil fields are left untouched.
type Annotation struct {
	Notes     *string
	Rating    *int
	Mood      *domain.Mood
	HeartRate *domain.HeartRateStats
}

// Lifecycle applies transitions to a WorkoutSession.
// Every method validates first and mutates only on success.
type Lifecycle struct {
	now func() time.Time
}

// NewLifecycle creates a Lifecycle. A nil clock means time.Now in UTC.
func NewLifecycle(now func() time.Time) *Lifecycle {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Lifecycle{now: now}
}

// Now exposes the lifecycle clock.
func (l *Lifecycle) Now() time.Time {
	return l.now()
}

// Start creates a new active session for a workout.
func (l *Lifecycle) Start(userID, workoutID primitive.ObjectID, totalExercises int) (*domain.WorkoutSession, error) {
	if userID == primitive.NilObjectID {
		return nil, invalid("userId", "is required")
	}
	if workoutID == primitive.NilObjectID {
		return nil, invalid("workoutId", "is required")
	}
	if totalExercises < 1 {
		return nil, invalid("totalExercises", "must be at least 1")
	}

	now := l.now()
	s := &domain.WorkoutSession{
		ID:                 primitive.NewObjectID(),
		UserID:             userID,
		WorkoutID:          workoutID,
		Status:             domain.SessionActive,
		StartTime:          now,
		TotalExercises:     totalExercises,
		CompletedExercises: []domain.ExerciseCompletion{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	Recompute(s)
	return s, nil
}

// Pause moves an active session to paused.
func (l *Lifecycle) Pause(s *domain.WorkoutSession) error {
	if s.Status != domain.SessionActive {
		return &TransitionError{From: s.Status, Op: OpPause}
	}
	now := l.now()
	refreshDuration(s, now)
	s.PausedAt = &now
	s.Status = domain.SessionPaused
	s.UpdatedAt = now
	return nil
}

// Resume moves a paused session back to active and books the paused interval.
func (l *Lifecycle) Resume(s *domain.WorkoutSession) error {
	if s.Status != domain.SessionPaused {
		return &TransitionError{From: s.Status, Op: OpResume}
	}
	now := l.now()
	closePause(s, now)
	s.Status = domain.SessionActive
	refreshDuration(s, now)
	s.UpdatedAt = now
	return nil
}

// LogSetProgress records one set of the exercise at exerciseIndex.
// The exercise must be the current one or one that was already started.
// A set with an existing SetIndex replaces the earlier record.
func (l *Lifecycle) LogSetProgress(s *domain.WorkoutSession, exerciseIndex int, exerciseID primitive.ObjectID, set domain.SetPerformance) error {
	if s.Status != domain.SessionActive {
		return &TransitionError{From: s.Status, Op: OpLogSetProgress}
	}
	if err := checkIndex(s, exerciseIndex); err != nil {
		return err
	}
	if err := validateSet(set); err != nil {
		return err
	}
	record := s.Exercise(exerciseIndex)
	if err := checkReachable(s, record, exerciseIndex, exerciseID); err != nil {
		return err
	}

	now := l.now()
	if set.CompletedAt.IsZero() {
		set.CompletedAt = now
	}
	if record == nil {
		record = startExercise(s, exerciseIndex, exerciseID, now)
	}
	record.Sets = upsertSet(record.Sets, set)

	refreshDuration(s, now)
	s.UpdatedAt = now
	Recompute(s)
	return nil
}

// CompleteExercise marks the exercise at exerciseIndex complete with its calorie contribution.
// Completing the current exercise advances the current index. Completing an exercise twice
// replaces its calories instead of adding them again.
func (l *Lifecycle) CompleteExercise(s *domain.WorkoutSession, exerciseIndex int, exerciseID primitive.ObjectID, caloriesBurned float64) error {
	if s.Status != domain.SessionActive {
		return &TransitionError{From: s.Status, Op: OpCompleteExercise}
	}
	if err := checkIndex(s, exerciseIndex); err != nil {
		return err
	}
	if caloriesBurned < 0 || math.IsNaN(caloriesBurned) || math.IsInf(caloriesBurned, 0) {
		return invalid("caloriesBurned", "must be a non-negative number")
	}
	record := s.Exercise(exerciseIndex)
	if err := checkReachable(s, record, exerciseIndex, exerciseID); err != nil {
		return err
	}

	now := l.now()
	if record == nil || !record.IsCompleted {
		record = moveToCompleted(s, record, exerciseIndex, exerciseID, now)
	}
	record.CaloriesBurned = caloriesBurned

	if exerciseIndex == s.CurrentExerciseIndex && s.CurrentExerciseIndex < s.TotalExercises-1 {
		s.CurrentExerciseIndex++
	}

	refreshDuration(s, now)
	s.UpdatedAt = now
	Recompute(s)
	return nil
}

// CompleteSession finishes an active or paused session and merges the annotation.
func (l *Lifecycle) CompleteSession(s *domain.WorkoutSession, a Annotation) error {
	if s.Status != domain.SessionActive && s.Status != domain.SessionPaused {
		return &TransitionError{From: s.Status, Op: OpCompleteSession}
	}
	if err := validateAnnotation(a); err != nil {
		return err
	}
	l.finish(s, domain.SessionCompleted)
	applyAnnotation(s, a)
	return nil
}

// StopSession ends an active or paused session early. Completion is not forced.
func (l *Lifecycle) StopSession(s *domain.WorkoutSession) error {
	if s.Status != domain.SessionActive && s.Status != domain.SessionPaused {
		return &TransitionError{From: s.Status, Op: OpStopSession}
	}
	l.finish(s, domain.SessionStopped)
	return nil
}

// Annotate updates notes, rating, mood or heart rate once the session has ended.
func (l *Lifecycle) Annotate(s *domain.WorkoutSession, a Annotation) error {
	if !s.Status.IsTerminal() {
		return &TransitionError{From: s.Status, Op: OpAnnotate}
	}
	if err := validateAnnotation(a); err != nil {
		return err
	}
	applyAnnotation(s, a)
	s.UpdatedAt = l.now()
	return nil
}

// LiveDuration is the session's active time at now without mutating it.
func LiveDuration(s *domain.WorkoutSession, now time.Time) int64 {
	if s.Status.IsTerminal() {
		return s.TotalDuration
	}
	paused := s.PausedDuration
	if s.PausedAt != nil {
		paused += seconds(now.Sub(*s.PausedAt))
	}
	d := seconds(now.Sub(s.StartTime)) - paused
	if d < s.TotalDuration {
		return s.TotalDuration
	}
	return d
}

func (l *Lifecycle) finish(s *domain.WorkoutSession, status domain.SessionStatus) {
	now := l.now()
	if s.Status == domain.SessionPaused {
		closePause(s, now)
	}
	total := seconds(now.Sub(s.StartTime)) - s.PausedDuration
	if total < 0 {
		total = 0
	}
	s.TotalDuration = total
	s.EndTime = &now
	s.Status = status
	s.UpdatedAt = now
	Recompute(s)
}

func closePause(s *domain.WorkoutSession, now time.Time) {
	if s.PausedAt == nil {
		return
	}
	if d := seconds(now.Sub(*s.PausedAt)); d > 0 {
		s.PausedDuration += d
	}
	s.PausedAt = nil
}

func refreshDuration(s *domain.WorkoutSession, now time.Time) {
	s.TotalDuration = LiveDuration(s, now)
}

func seconds(d time.Duration) int64 {
	return int64(d / time.Second)
}

func checkIndex(s *domain.WorkoutSession, index int) error {
	if index < 0 || index >= s.TotalExercises {
		return &IndexError{Field: "exerciseIndex", Index: index, Total: s.TotalExercises}
	}
	return nil
}

func checkReachable(s *domain.WorkoutSession, record *domain.ExerciseCompletion, index int, exerciseID primitive.ObjectID) error {
	if record == nil {
		if index != s.CurrentExerciseIndex {
			return invalid("exerciseIndex", "exercise has not been started")
		}
		return nil
	}
	if exerciseID != primitive.NilObjectID && record.ExerciseID != primitive.NilObjectID && record.ExerciseID != exerciseID {
		return invalid("exerciseId", "does not match the exercise at this index")
	}
	return nil
}

// startExercise opens the in-progress record for the current exercise.
func startExercise(s *domain.WorkoutSession, index int, exerciseID primitive.ObjectID, now time.Time) *domain.ExerciseCompletion {
	s.CurrentExercise = &domain.ExerciseCompletion{
		ExerciseID:    exerciseID,
		ExerciseIndex: index,
		Sets:          []domain.SetPerformance{},
		StartedAt:     now,
	}
	return s.CurrentExercise
}

// moveToCompleted appends the completed record for index to CompletedExercises.
// An in-progress record keeps its sets and start time; without one the exercise starts and ends now.
func moveToCompleted(s *domain.WorkoutSession, inProgress *domain.ExerciseCompletion, index int, exerciseID primitive.ObjectID, now time.Time) *domain.ExerciseCompletion {
	done := domain.ExerciseCompletion{
		ExerciseID:    exerciseID,
		ExerciseIndex: index,
		Sets:          []domain.SetPerformance{},
		StartedAt:     now,
	}
	if inProgress != nil {
		done = *inProgress
	}
	completedAt := now
	if completedAt.Before(done.StartedAt) {
		completedAt = done.StartedAt
	}
	done.IsCompleted = true
	done.CompletedAt = &completedAt

	s.CompletedExercises = append(s.CompletedExercises, done)
	if s.CurrentExercise != nil && s.CurrentExercise.ExerciseIndex == index {
		s.CurrentExercise = nil
	}
	return &s.CompletedExercises[len(s.CompletedExercises)-1]
}

func upsertSet(sets []domain.SetPerformance, set domain.SetPerformance) []domain.SetPerformance {
	for i := range sets {
		if sets[i].SetIndex == set.SetIndex {
			sets[i] = set
			return sets
		}
	}
	sets = append(sets, set)
	sort.SliceStable(sets, func(i, j int) bool { return sets[i].SetIndex < sets[j].SetIndex })
	return sets
}

func validateSet(set domain.SetPerformance) error {
	switch {
	case set.SetIndex < 0:
		return invalid("setIndex", "must be zero or greater")
	case set.Reps < 0:
		return invalid("reps", "must be zero or greater")
	case set.WeightKg < 0 || math.IsNaN(set.WeightKg) || math.IsInf(set.WeightKg, 0):
		return invalid("weight", "must be a non-negative number")
	case set.Duration < 0:
		return invalid("duration", "must be zero or greater")
	case set.RestTime < 0:
		return invalid("restTime", "must be zero or greater")
	}
	return nil
}

func validateAnnotation(a Annotation) error {
	if a.Rating != nil && (*a.Rating < 1 || *a.Rating > 5) {
		return invalid("rating", "must be between 1 and 5")
	}
	if a.Mood != nil && *a.Mood != "" && !a.Mood.Valid() {
		return invalid("mood", "unknown mood "+string(*a.Mood))
	}
	if hr := a.HeartRate; hr != nil {
		if hr.Min < 0 || hr.Average < 0 || hr.Max < 0 {
			return invalid("heartRate", "values must be zero or greater")
		}
		if hr.Min > hr.Max {
			return invalid("heartRate", "min exceeds max")
		}
	}
	return nil
}

func applyAnnotation(s *domain.WorkoutSession, a Annotation) {
	if a.Notes != nil {
		s.Notes = *a.Notes
	}
	if a.Rating != nil {
		r := *a.Rating
		s.Rating = &r
	}
	if a.Mood != nil {
		s.Mood = *a.Mood
	}
	if a.HeartRate != nil {
		hr := *a.HeartRate
		s.HeartRate = &hr
	}
}
