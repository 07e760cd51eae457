package session

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLifecycle() (*Lifecycle, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
	return NewLifecycle(clock.Now), clock
}

func startThree(t *testing.T, l *Lifecycle) *domain.WorkoutSession {
	t.Helper()
	s, err := l.Start(primitive.NewObjectID(), primitive.NewObjectID(), 3)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return s
}

func TestStartCreatesActiveSession(t *testing.T) {
	l, clock := newTestLifecycle()
	s := startThree(t, l)

	if s.Status != domain.SessionActive {
		t.Fatalf("expected active, got %s", s.Status)
	}
	if s.CurrentExerciseIndex != 0 || len(s.CompletedExercises) != 0 {
		t.Fatalf("expected fresh progress, got index %d with %d records", s.CurrentExerciseIndex, len(s.CompletedExercises))
	}
	if !s.StartTime.Equal(clock.Now()) {
		t.Fatalf("expected start time %v, got %v", clock.Now(), s.StartTime)
	}
	if s.EndTime != nil {
		t.Fatalf("expected no end time on an active session")
	}
	if s.ID == primitive.NilObjectID {
		t.Fatalf("expected session id")
	}
}

func TestStartRejectsEmptyWorkout(t *testing.T) {
	l, _ := newTestLifecycle()
	_, err := l.Start(primitive.NewObjectID(), primitive.NewObjectID(), 0)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "totalExercises" {
		t.Fatalf("expected totalExercises validation error, got %v", err)
	}
}

func TestCompleteExerciseAdvancesAndAggregates(t *testing.T) {
	l, clock := newTestLifecycle()
	s := startThree(t, l)
	clock.Advance(2 * time.Minute)

	if err := l.CompleteExercise(s, 0, primitive.NilObjectID, 50); err != nil {
		t.Fatalf("complete exercise: %v", err)
	}
	if len(s.CompletedExercises) != 1 {
		t.Fatalf("expected 1 record, got %d", len(s.CompletedExercises))
	}
	if s.TotalCaloriesBurned != 50 {
		t.Fatalf("expected 50 calories, got %v", s.TotalCaloriesBurned)
	}
	if s.CurrentExerciseIndex != 1 {
		t.Fatalf("expected current index 1, got %d", s.CurrentExerciseIndex)
	}
	if s.CompletionPercentage != 33 {
		t.Fatalf("expected 33%%, got %d", s.CompletionPercentage)
	}
	ex := s.CompletedExercises[0]
	if !ex.IsCompleted || ex.CompletedAt == nil || ex.CompletedAt.Before(ex.StartedAt) {
		t.Fatalf("expected completed record with completedAt >= startedAt, got %+v", ex)
	}
}

func TestPauseResumeAccumulatesPausedDuration(t *testing.T) {
	l, clock := newTestLifecycle()
	s := startThree(t, l)
	if err := l.CompleteExercise(s, 0, primitive.NilObjectID, 50); err != nil {
		t.Fatalf("complete exercise: %v", err)
	}

	if err := l.Pause(s); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if s.Status != domain.SessionPaused || s.PausedAt == nil {
		t.Fatalf("expected paused session with pause instant")
	}
	clock.Advance(30 * time.Second)
	if err := l.Resume(s); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if s.Status != domain.SessionActive {
		t.Fatalf("expected active after resume, got %s", s.Status)
	}
	if s.PausedDuration != 30 {
		t.Fatalf("expected 30s paused, got %d", s.PausedDuration)
	}
	if s.PausedAt != nil {
		t.Fatalf("expected pause instant cleared")
	}
}

func TestCompleteSessionAfterAllExercises(t *testing.T) {
	l, clock := newTestLifecycle()
	s := startThree(t, l)
	for i := 0; i < 3; i++ {
		clock.Advance(time.Minute)
		if err := l.CompleteExercise(s, i, primitive.NilObjectID, 40); err != nil {
			t.Fatalf("complete exercise %d: %v", i, err)
		}
	}
	if s.CurrentExerciseIndex != 2 {
		t.Fatalf("expected current index to stay on last exercise, got %d", s.CurrentExerciseIndex)
	}

	rating := 5
	mood := domain.MoodGreat
	notes := "felt strong"
	if err := l.CompleteSession(s, Annotation{Notes: &notes, Rating: &rating, Mood: &mood}); err != nil {
		t.Fatalf("complete session: %v", err)
	}
	if s.Status != domain.SessionCompleted {
		t.Fatalf("expected completed, got %s", s.Status)
	}
	if s.CompletionPercentage != 100 {
		t.Fatalf("expected 100%%, got %d", s.CompletionPercentage)
	}
	if s.EndTime == nil {
		t.Fatalf("expected end time")
	}
	if s.TotalCaloriesBurned != 120 {
		t.Fatalf("expected 120 calories, got %v", s.TotalCaloriesBurned)
	}
	if s.Rating == nil || *s.Rating != 5 || s.Mood != domain.MoodGreat || s.Notes != notes {
		t.Fatalf("expected annotation merged, got rating=%v mood=%s notes=%q", s.Rating, s.Mood, s.Notes)
	}
	if s.CaloriesPerMinute == nil || *s.CaloriesPerMinute != 40 {
		t.Fatalf("expected 40 kcal/min, got %v", s.CaloriesPerMinute)
	}
}

func TestTerminalSessionRejectsEveryOperation(t *testing.T) {
	for _, terminal := range []domain.SessionStatus{domain.SessionCompleted, domain.SessionStopped} {
		l, clock := newTestLifecycle()
		s := startThree(t, l)
		if err := l.CompleteExercise(s, 0, primitive.NilObjectID, 10); err != nil {
			t.Fatalf("complete exercise: %v", err)
		}
		if terminal == domain.SessionCompleted {
			if err := l.CompleteSession(s, Annotation{}); err != nil {
				t.Fatalf("complete: %v", err)
			}
		} else if err := l.StopSession(s); err != nil {
			t.Fatalf("stop: %v", err)
		}
		clock.Advance(time.Hour)
		before := s.Clone()

		ops := map[Operation]func() error{
			OpPause:            func() error { return l.Pause(s) },
			OpResume:           func() error { return l.Resume(s) },
			OpLogSetProgress:   func() error { return l.LogSetProgress(s, 1, primitive.NilObjectID, domain.SetPerformance{Reps: 5}) },
			OpCompleteExercise: func() error { return l.CompleteExercise(s, 1, primitive.NilObjectID, 10) },
			OpCompleteSession:  func() error { return l.CompleteSession(s, Annotation{}) },
			OpStopSession:      func() error { return l.StopSession(s) },
		}
		for op, fn := range ops {
			err := fn()
			if !errors.Is(err, ErrInvalidStateTransition) {
				t.Fatalf("%s from %s: expected invalid transition, got %v", op, terminal, err)
			}
			var terr *TransitionError
			if !errors.As(err, &terr) || terr.From != terminal || terr.Op != op {
				t.Fatalf("%s from %s: expected context in error, got %v", op, terminal, err)
			}
			if !reflect.DeepEqual(before, s) {
				t.Fatalf("%s from %s mutated the session", op, terminal)
			}
		}
	}
}

func TestPauseFromCompletedLeavesSessionUnchanged(t *testing.T) {
	l, _ := newTestLifecycle()
	s := startThree(t, l)
	for i := 0; i < 3; i++ {
		if err := l.CompleteExercise(s, i, primitive.NilObjectID, 10); err != nil {
			t.Fatalf("complete exercise: %v", err)
		}
	}
	if err := l.CompleteSession(s, Annotation{}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	before := s.Clone()
	if err := l.Pause(s); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if !reflect.DeepEqual(before, s) {
		t.Fatalf("expected session unchanged")
	}
}

func TestPauseAndResumeRequireMatchingState(t *testing.T) {
	l, _ := newTestLifecycle()
	s := startThree(t, l)
	if err := l.Resume(s); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("resume from active: expected invalid transition, got %v", err)
	}
	if err := l.Pause(s); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := l.Pause(s); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("pause from paused: expected invalid transition, got %v", err)
	}
	if err := l.LogSetProgress(s, 0, primitive.NilObjectID, domain.SetPerformance{Reps: 3}); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("log set while paused: expected invalid transition, got %v", err)
	}
}

func TestIndexOutOfRange(t *testing.T) {
	l, _ := newTestLifecycle()
	s := startThree(t, l)
	before := s.Clone()

	for _, idx := range []int{-1, 3, 10} {
		err := l.LogSetProgress(s, idx, primitive.NilObjectID, domain.SetPerformance{Reps: 8})
		var ierr *IndexError
		if !errors.As(err, &ierr) || ierr.Index != idx || ierr.Total != 3 {
			t.Fatalf("log set index %d: expected index error, got %v", idx, err)
		}
		if err := l.CompleteExercise(s, idx, primitive.NilObjectID, 10); !errors.Is(err, ErrOutOfRangeIndex) {
			t.Fatalf("complete index %d: expected out of range, got %v", idx, err)
		}
	}
	if !reflect.DeepEqual(before, s) {
		t.Fatalf("out-of-range calls mutated the session")
	}
}

func TestLogSetProgressAppendsAndReplaces(t *testing.T) {
	l, _ := newTestLifecycle()
	s := startThree(t, l)
	exerciseID := primitive.NewObjectID()

	sets := []domain.SetPerformance{
		{SetIndex: 1, Reps: 8, WeightKg: 60, Duration: 40, RestTime: 60},
		{SetIndex: 0, Reps: 10, WeightKg: 55, Duration: 45, RestTime: 60},
	}
	for _, set := range sets {
		if err := l.LogSetProgress(s, 0, exerciseID, set); err != nil {
			t.Fatalf("log set: %v", err)
		}
	}
	if err := l.LogSetProgress(s, 0, exerciseID, domain.SetPerformance{SetIndex: 1, Reps: 9, WeightKg: 60, Duration: 42, RestTime: 90}); err != nil {
		t.Fatalf("replace set: %v", err)
	}

	ex := s.Exercise(0)
	if ex == nil {
		t.Fatalf("expected working record")
	}
	if len(ex.Sets) != 2 {
		t.Fatalf("expected 2 sets, got %d", len(ex.Sets))
	}
	if ex.Sets[0].SetIndex != 0 || ex.Sets[1].SetIndex != 1 || ex.Sets[1].Reps != 9 {
		t.Fatalf("expected ordered sets with replacement, got %+v", ex.Sets)
	}
	if ex.TotalDuration != 45+60+42+90 {
		t.Fatalf("unexpected exercise duration %d", ex.TotalDuration)
	}
	if ex.IsCompleted {
		t.Fatalf("logging sets must not complete the exercise")
	}
	if s.CompletionPercentage != 0 {
		t.Fatalf("expected 0%% before any completion, got %d", s.CompletionPercentage)
	}

	other := primitive.NewObjectID()
	if err := l.LogSetProgress(s, 0, other, domain.SetPerformance{SetIndex: 2, Reps: 1}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected mismatched exercise id to fail validation, got %v", err)
	}
}

func TestCompletedExercisesHoldOnlyCompletedRecords(t *testing.T) {
	l, clock := newTestLifecycle()
	s := startThree(t, l)
	for i := 0; i < 2; i++ {
		if err := l.CompleteExercise(s, i, primitive.NilObjectID, 20); err != nil {
			t.Fatalf("complete %d: %v", i, err)
		}
	}

	clock.Advance(time.Minute)
	if err := l.LogSetProgress(s, 2, primitive.NilObjectID, domain.SetPerformance{SetIndex: 0, Reps: 12, Duration: 30, RestTime: 30}); err != nil {
		t.Fatalf("log set: %v", err)
	}
	if len(s.CompletedExercises) != 2 || s.CompletionPercentage != 67 {
		t.Fatalf("an unfinished exercise must not count: %d records, %d%%", len(s.CompletedExercises), s.CompletionPercentage)
	}
	if s.CurrentExercise == nil || s.CurrentExercise.ExerciseIndex != 2 || s.CurrentExercise.TotalDuration != 60 {
		t.Fatalf("expected in-progress record for exercise 2, got %+v", s.CurrentExercise)
	}

	clock.Advance(time.Minute)
	if err := l.CompleteExercise(s, 2, primitive.NilObjectID, 30); err != nil {
		t.Fatalf("complete 2: %v", err)
	}
	if s.CurrentExercise != nil {
		t.Fatalf("completing must clear the in-progress record")
	}
	if len(s.CompletedExercises) != s.TotalExercises || s.CompletionPercentage != 100 {
		t.Fatalf("expected all %d exercises at 100%%, got %d at %d%%", s.TotalExercises, len(s.CompletedExercises), s.CompletionPercentage)
	}
	last := s.CompletedExercises[2]
	if len(last.Sets) != 1 || !last.StartedAt.Equal(clock.Now().Add(-time.Minute)) || s.TotalCaloriesBurned != 70 {
		t.Fatalf("completed record must keep its sets and start time: %+v", last)
	}
}

func TestLogSetProgressRejectsUnstartedExercise(t *testing.T) {
	l, _ := newTestLifecycle()
	s := startThree(t, l)
	err := l.LogSetProgress(s, 2, primitive.NilObjectID, domain.SetPerformance{Reps: 5})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "exerciseIndex" {
		t.Fatalf("expected exerciseIndex validation error, got %v", err)
	}
	if err := l.LogSetProgress(s, 0, primitive.NilObjectID, domain.SetPerformance{Reps: -1}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected negative reps to fail validation, got %v", err)
	}
}

func TestRecompletingExerciseDoesNotDoubleCount(t *testing.T) {
	l, _ := newTestLifecycle()
	s := startThree(t, l)
	if err := l.CompleteExercise(s, 0, primitive.NilObjectID, 50); err != nil {
		t.Fatalf("complete: %v", err)
	}
	firstCompletedAt := *s.CompletedExercises[0].CompletedAt
	if err := l.CompleteExercise(s, 0, primitive.NilObjectID, 50); err != nil {
		t.Fatalf("retry complete: %v", err)
	}
	if s.TotalCaloriesBurned != 50 {
		t.Fatalf("expected retried completion to keep 50 calories, got %v", s.TotalCaloriesBurned)
	}
	if len(s.CompletedExercises) != 1 || s.CurrentExerciseIndex != 1 {
		t.Fatalf("retry must not add records or advance again")
	}
	if !s.CompletedExercises[0].CompletedAt.Equal(firstCompletedAt) {
		t.Fatalf("expected original completion time kept")
	}
}

func TestDurationExcludesPauses(t *testing.T) {
	l, clock := newTestLifecycle()
	s := startThree(t, l)

	clock.Advance(5 * time.Minute)
	if err := l.Pause(s); err != nil {
		t.Fatalf("pause: %v", err)
	}
	clock.Advance(2 * time.Minute)
	if err := l.Resume(s); err != nil {
		t.Fatalf("resume: %v", err)
	}
	clock.Advance(3 * time.Minute)
	if err := l.Pause(s); err != nil {
		t.Fatalf("pause: %v", err)
	}
	clock.Advance(90 * time.Second)
	// Completing straight from paused books the open pause too.
	if err := l.CompleteSession(s, Annotation{}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	wall := int64(5*60 + 2*60 + 3*60 + 90)
	paused := int64(2*60 + 90)
	if s.PausedDuration != paused {
		t.Fatalf("expected %ds paused, got %d", paused, s.PausedDuration)
	}
	if s.TotalDuration != wall-paused {
		t.Fatalf("expected %ds active, got %d", wall-paused, s.TotalDuration)
	}
}

func TestLiveDurationIsMonotonic(t *testing.T) {
	l, clock := newTestLifecycle()
	s := startThree(t, l)
	var last int64
	steps := []func() error{
		func() error { return nil },
		func() error { return l.Pause(s) },
		func() error { return nil },
		func() error { return l.Resume(s) },
		func() error { return nil },
	}
	for i, step := range steps {
		clock.Advance(1500 * time.Millisecond)
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		d := LiveDuration(s, clock.Now())
		if d < last {
			t.Fatalf("duration went backwards at step %d: %d < %d", i, d, last)
		}
		last = d
	}
}

func TestStopSessionKeepsPartialCompletion(t *testing.T) {
	l, clock := newTestLifecycle()
	s := startThree(t, l)
	if err := l.CompleteExercise(s, 0, primitive.NilObjectID, 30); err != nil {
		t.Fatalf("complete: %v", err)
	}
	clock.Advance(10 * time.Minute)
	if err := l.StopSession(s); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if s.Status != domain.SessionStopped || s.EndTime == nil {
		t.Fatalf("expected stopped session with end time")
	}
	if s.CompletionPercentage != 33 {
		t.Fatalf("expected completion kept at 33%%, got %d", s.CompletionPercentage)
	}
	if s.TotalDuration != 600 {
		t.Fatalf("expected 600s, got %d", s.TotalDuration)
	}
}

func TestAnnotateOnlyAfterSessionEnds(t *testing.T) {
	l, _ := newTestLifecycle()
	s := startThree(t, l)
	notes := "late note"
	if err := l.Annotate(s, Annotation{Notes: &notes}); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected annotate on active session to fail, got %v", err)
	}
	if err := l.StopSession(s); err != nil {
		t.Fatalf("stop: %v", err)
	}
	bad := 6
	if err := l.Annotate(s, Annotation{Rating: &bad}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected rating validation error, got %v", err)
	}
	mood := domain.MoodTired
	if err := l.Annotate(s, Annotation{Notes: &notes, Mood: &mood, HeartRate: &domain.HeartRateStats{Average: 120, Max: 160, Min: 80}}); err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if s.Notes != notes || s.Mood != domain.MoodTired || s.HeartRate == nil {
		t.Fatalf("expected annotation applied")
	}
}
