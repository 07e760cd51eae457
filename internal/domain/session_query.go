package domain

import "time"

// SessionFilter selects sessions from a user's history. Every supplied criterion must hold.
type SessionFilter struct {
	Statuses    []SessionStatus `json:"status,omitempty"`
	StartDate   *time.Time      `json:"startDate,omitempty"` // Inclusive, on startTime
	EndDate     *time.Time      `json:"endDate,omitempty"`   // Inclusive, on startTime
	MinDuration *int64          `json:"minDuration,omitempty"`
	MaxDuration *int64          `json:"maxDuration,omitempty"`
	MinCalories *float64        `json:"minCalories,omitempty"`
	MaxCalories *float64        `json:"maxCalories,omitempty"`
	Ratings     []int           `json:"rating,omitempty"`
	Moods       []Mood          `json:"mood,omitempty"`
}

// IsEmpty reports whether the filter places no constraint.
func (f SessionFilter) IsEmpty() bool {
	return len(f.Statuses) == 0 && f.StartDate == nil && f.EndDate == nil &&
		f.MinDuration == nil && f.MaxDuration == nil &&
		f.MinCalories == nil && f.MaxCalories == nil &&
		len(f.Ratings) == 0 && len(f.Moods) == 0
}

// PageRequest is a 1-based page with a bounded size.
type PageRequest struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Skip is the number of records before the requested page.
func (p PageRequest) Skip() int64 {
	if p.Page < 1 {
		return 0
	}
	return int64(p.Page-1) * int64(p.Limit)
}

// SessionPage is one page of session history.
type SessionPage struct {
	Sessions   []WorkoutSession `json:"sessions"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
}

// SessionStats summarises a user's session history.
type SessionStats struct {
	TotalSessions       int64   `bson:"totalSessions" json:"totalSessions"`
	CompletedSessions   int64   `bson:"completedSessions" json:"completedSessions"`
	StoppedSessions     int64   `bson:"stoppedSessions" json:"stoppedSessions"`
	TotalDuration       int64   `bson:"totalDuration" json:"totalDuration"` // Seconds
	TotalCaloriesBurned float64 `bson:"totalCaloriesBurned" json:"totalCaloriesBurned"`
	AverageDuration     float64 `bson:"averageDuration" json:"averageDuration"`
	AverageRating       float64 `bson:"averageRating" json:"averageRating"` // 0 when nothing is rated
}
