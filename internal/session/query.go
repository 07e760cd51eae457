package session

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/domain"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Paging holds the page-size bounds applied to history queries.
type Paging struct {
	DefaultLimit int
	MaxLimit     int
}

// DefaultPaging is used when configuration leaves the bounds unset.
var DefaultPaging = Paging{DefaultLimit: DefaultPageSize, MaxLimit: MaxPageSize}

// Normalize clamps a page request: page >= 1, 1 <= limit <= MaxLimit.
func (p Paging) Normalize(req domain.PageRequest) domain.PageRequest {
	def, max := p.DefaultLimit, p.MaxLimit
	if def <= 0 {
		def = DefaultPageSize
	}
	if max <= 0 {
		max = MaxPageSize
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = def
	}
	if req.Limit > max {
		req.Limit = max
	}
	return req
}

// TotalPages is ceil(total/limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// EncodeQuery renders a filter and page as query parameters understood by ParseQuery.
func EncodeQuery(f domain.SessionFilter, p domain.PageRequest) url.Values {
	v := url.Values{}
	for _, st := range f.Statuses {
		v.Add("status", string(st))
	}
	if f.StartDate != nil {
		v.Set("startDate", f.StartDate.UTC().Format(time.RFC3339))
	}
	if f.EndDate != nil {
		v.Set("endDate", f.EndDate.UTC().Format(time.RFC3339))
	}
	if f.MinDuration != nil {
		v.Set("minDuration", strconv.FormatInt(*f.MinDuration, 10))
	}
	if f.MaxDuration != nil {
		v.Set("maxDuration", strconv.FormatInt(*f.MaxDuration, 10))
	}
	if f.MinCalories != nil {
		v.Set("minCalories", strconv.FormatFloat(*f.MinCalories, 'f', -1, 64))
	}
	if f.MaxCalories != nil {
		v.Set("maxCalories", strconv.FormatFloat(*f.MaxCalories, 'f', -1, 64))
	}
	for _, r := range f.Ratings {
		v.Add("rating", strconv.Itoa(r))
	}
	for _, m := range f.Moods {
		v.Add("mood", string(m))
	}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	return v
}

// ParseQuery reads a history query. List parameters may repeat or be comma separated.
// The returned page is not normalized.
func ParseQuery(v url.Values) (domain.SessionFilter, domain.PageRequest, error) {
	var f domain.SessionFilter
	var p domain.PageRequest

	for _, raw := range listParam(v, "status") {
		st := domain.SessionStatus(raw)
		if !st.Valid() {
			return f, p, invalid("status", "unknown status "+raw)
		}
		f.Statuses = append(f.Statuses, st)
	}
	for _, raw := range listParam(v, "mood") {
		m := domain.Mood(raw)
		if !m.Valid() {
			return f, p, invalid("mood", "unknown mood "+raw)
		}
		f.Moods = append(f.Moods, m)
	}
	for _, raw := range listParam(v, "rating") {
		r, err := strconv.Atoi(raw)
		if err != nil || r < 1 || r > 5 {
			return f, p, invalid("rating", "must be between 1 and 5")
		}
		f.Ratings = append(f.Ratings, r)
	}

	var err error
	if f.StartDate, err = timeParam(v, "startDate"); err != nil {
		return f, p, err
	}
	if f.EndDate, err = timeParam(v, "endDate"); err != nil {
		return f, p, err
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return f, p, invalid("endDate", "is before startDate")
	}
	if f.MinDuration, err = intParam(v, "minDuration"); err != nil {
		return f, p, err
	}
	if f.MaxDuration, err = intParam(v, "maxDuration"); err != nil {
		return f, p, err
	}
	if f.MinCalories, err = floatParam(v, "minCalories"); err != nil {
		return f, p, err
	}
	if f.MaxCalories, err = floatParam(v, "maxCalories"); err != nil {
		return f, p, err
	}

	if page, err := intParam(v, "page"); err != nil {
		return f, p, err
	} else if page != nil {
		p.Page = int(*page)
	}
	if limit, err := intParam(v, "limit"); err != nil {
		return f, p, err
	} else if limit != nil {
		p.Limit = int(*limit)
	}
	return f, p, nil
}

func listParam(v url.Values, key string) []string {
	var out []string
	for _, raw := range v[key] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func timeParam(v url.Values, key string) (*time.Time, error) {
	raw := v.Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		// Plain dates are accepted as midnight UTC.
		if t, err = time.Parse("2006-01-02", raw); err != nil {
			return nil, invalid(key, "must be an RFC3339 timestamp or YYYY-MM-DD date")
		}
	}
	t = t.UTC()
	return &t, nil
}

func intParam(v url.Values, key string) (*int64, error) {
	raw := v.Get(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return nil, invalid(key, "must be a non-negative integer")
	}
	return &n, nil
}

func floatParam(v url.Values, key string) (*float64, error) {
	raw := v.Get(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || n < 0 {
		return nil, invalid(key, "must be a non-negative number")
	}
	return &n, nil
}

// Matches reports whether a session satisfies every criterion of the filter.
func Matches(f domain.SessionFilter, s *domain.WorkoutSession) bool {
	if len(f.Statuses) > 0 && !contains(f.Statuses, s.Status) {
		return false
	}
	if f.StartDate != nil && s.StartTime.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && s.StartTime.After(*f.EndDate) {
		return false
	}
	if f.MinDuration != nil && s.TotalDuration < *f.MinDuration {
		return false
	}
	if f.MaxDuration != nil && s.TotalDuration > *f.MaxDuration {
		return false
	}
	if f.MinCalories != nil && s.TotalCaloriesBurned < *f.MinCalories {
		return false
	}
	if f.MaxCalories != nil && s.TotalCaloriesBurned > *f.MaxCalories {
		return false
	}
	if len(f.Ratings) > 0 && (s.Rating == nil || !contains(f.Ratings, *s.Rating)) {
		return false
	}
	if len(f.Moods) > 0 && !contains(f.Moods, s.Mood) {
		return false
	}
	return true
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
