package session

import (
	"math"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/domain"
)

// CompletionPercentage is round(100*completed/total) clamped to [0,100].
// It only reaches 100 when every exercise is complete, and is 0 when total is 0.
func CompletionPercentage(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	pct := int(math.Round(100 * float64(completed) / float64(total)))
	if pct >= 100 {
		pct = 99
	}
	return pct
}

// TotalCalories sums the calories of completed exercises only.
func TotalCalories(records []domain.ExerciseCompletion) float64 {
	var total float64
	for _, ex := range records {
		if ex.IsCompleted {
			total += ex.CaloriesBurned
		}
	}
	return total
}

// ExerciseDuration is the sum of set durations plus rest.
func ExerciseDuration(ex domain.ExerciseCompletion) int64 {
	var total int64
	for _, set := range ex.Sets {
		total += set.Duration + set.RestTime
	}
	return total
}

// CaloriesPerMinute returns nil when there is no active time to divide by.
func CaloriesPerMinute(calories float64, durationSeconds int64) *float64 {
	if durationSeconds <= 0 {
		return nil
	}
	v := math.Round(calories/(float64(durationSeconds)/60)*100) / 100
	return &v
}

// Recompute refreshes every derived field from the stored records.
// It reads nothing but the session, so calling it twice gives the same result.
func Recompute(s *domain.WorkoutSession) {
	for i := range s.CompletedExercises {
		s.CompletedExercises[i].TotalDuration = ExerciseDuration(s.CompletedExercises[i])
	}
	if s.CurrentExercise != nil {
		s.CurrentExercise.TotalDuration = ExerciseDuration(*s.CurrentExercise)
	}
	s.TotalCaloriesBurned = TotalCalories(s.CompletedExercises)
	s.CompletionPercentage = CompletionPercentage(s.CompletedCount(), s.TotalExercises)
	s.CaloriesPerMinute = CaloriesPerMinute(s.TotalCaloriesBurned, s.TotalDuration)
}

// Summarize folds a user's sessions into history stats.
// AverageDuration is over all sessions, AverageRating over rated ones only.
func Summarize(sessions []domain.WorkoutSession) domain.SessionStats {
	var st domain.SessionStats
	var ratingSum, rated int
	for _, s := range sessions {
		st.TotalSessions++
		switch s.Status {
		case domain.SessionCompleted:
			st.CompletedSessions++
		case domain.SessionStopped:
			st.StoppedSessions++
		}
		st.TotalDuration += s.TotalDuration
		st.TotalCaloriesBurned += s.TotalCaloriesBurned
		if s.Rating != nil {
			ratingSum += *s.Rating
			rated++
		}
	}
	if st.TotalSessions > 0 {
		st.AverageDuration = float64(st.TotalDuration) / float64(st.TotalSessions)
	}
	if rated > 0 {
		st.AverageRating = float64(ratingSum) / float64(rated)
	}
	return st
}
