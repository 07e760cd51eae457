package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/domain"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/session"
)

// User is the account as the API returns it.
type User struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Email        string              `json:"email"`
	Role         domain.Role         `json:"role"`
	CreatedAt    time.Time           `json:"createdAt"`
	FitnessLevel domain.FitnessLevel `json:"fitnessLevel,omitempty"`
	AvatarURL    string              `json:"avatarUrl,omitempty"`
}

type loginResponse struct {
	Tokens
	User User `json:"user"`
}

// SetInput is one logged set. ExerciseID may be empty.
type SetInput struct {
	ExerciseIndex int     `json:"exerciseIndex"`
	ExerciseID    string  `json:"exerciseId,omitempty"`
	SetIndex      int     `json:"setIndex"`
	Reps          int     `json:"reps"`
	Weight        float64 `json:"weight"`
	Duration      int64   `json:"duration"`
	RestTime      int64   `json:"restTime"`
	Notes         string  `json:"notes,omitempty"`
}

type completeExerciseInput struct {
	ExerciseIndex  int     `json:"exerciseIndex"`
	CaloriesBurned float64 `json:"caloriesBurned"`
}

// Annotation mirrors the optional post-session fields.
type Annotation struct {
	Notes     *string                `json:"notes,omitempty"`
	Rating    *int                   `json:"rating,omitempty"`
	Mood      *domain.Mood           `json:"mood,omitempty"`
	HeartRate *domain.HeartRateStats `json:"heartRate,omitempty"`
}

// --- Auth ---

func (c *Client) Register(ctx context.Context, name, email, password string) (*User, error) {
	var user User
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login stores the returned tokens for subsequent calls.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var resp loginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &resp); err != nil {
		return nil, err
	}
	c.setTokens(resp.Tokens)
	return &resp.User, nil
}

// Logout revokes the refresh token and forgets both tokens.
func (c *Client) Logout(ctx context.Context) error {
	body := map[string]string{"refreshToken": c.Tokens().RefreshToken}
	if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, body, nil); err != nil {
		return err
	}
	c.setTokens(Tokens{})
	return nil
}

// --- Workout sessions ---

func (c *Client) StartSession(ctx context.Context, workoutID string) (*domain.WorkoutSession, error) {
	return c.sessionCall(ctx, http.MethodPost, "/workout-sessions/start", map[string]string{"workoutId": workoutID})
}

// ActiveSession returns nil without error when no session is unfinished.
func (c *Client) ActiveSession(ctx context.Context) (*domain.WorkoutSession, error) {
	var ws *domain.WorkoutSession
	if err := c.do(ctx, http.MethodGet, "/workout-sessions/active", nil, nil, &ws); err != nil {
		return nil, err
	}
	return fillDerived(ws), nil
}

func (c *Client) GetSession(ctx context.Context, id string) (*domain.WorkoutSession, error) {
	return c.sessionCall(ctx, http.MethodGet, sessionPath(id, ""), nil)
}

func (c *Client) LogSet(ctx context.Context, id string, set SetInput) (*domain.WorkoutSession, error) {
	return c.sessionCall(ctx, http.MethodPut, sessionPath(id, "/exercise-progress"), set)
}

func (c *Client) CompleteExercise(ctx context.Context, id string, exerciseIndex int, caloriesBurned float64) (*domain.WorkoutSession, error) {
	return c.sessionCall(ctx, http.MethodPut, sessionPath(id, "/complete-exercise"), completeExerciseInput{ExerciseIndex: exerciseIndex, CaloriesBurned: caloriesBurned})
}

func (c *Client) PauseSession(ctx context.Context, id string) (*domain.WorkoutSession, error) {
	return c.sessionCall(ctx, http.MethodPut, sessionPath(id, "/pause"), nil)
}

func (c *Client) ResumeSession(ctx context.Context, id string) (*domain.WorkoutSession, error) {
	return c.sessionCall(ctx, http.MethodPut, sessionPath(id, "/resume"), nil)
}

func (c *Client) CompleteSession(ctx context.Context, id string, a Annotation) (*domain.WorkoutSession, error) {
	return c.sessionCall(ctx, http.MethodPut, sessionPath(id, "/complete"), a)
}

func (c *Client) StopSession(ctx context.Context, id string) (*domain.WorkoutSession, error) {
	return c.sessionCall(ctx, http.MethodPut, sessionPath(id, "/stop"), nil)
}

func (c *Client) AnnotateSession(ctx context.Context, id string, a Annotation) (*domain.WorkoutSession, error) {
	return c.sessionCall(ctx, http.MethodPatch, sessionPath(id, ""), a)
}

func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, sessionPath(id, ""), nil, nil, nil)
}

func (c *Client) ListSessions(ctx context.Context, filter domain.SessionFilter, page domain.PageRequest) (*domain.SessionPage, error) {
	var result domain.SessionPage
	if err := c.do(ctx, http.MethodGet, "/workout-sessions", session.EncodeQuery(filter, page), nil, &result); err != nil {
		return nil, err
	}
	for i := range result.Sessions {
		fillDerived(&result.Sessions[i])
	}
	return &result, nil
}

func (c *Client) SessionStats(ctx context.Context) (*domain.SessionStats, error) {
	var stats domain.SessionStats
	if err := c.do(ctx, http.MethodGet, "/workout-sessions/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) sessionCall(ctx context.Context, method, path string, body interface{}) (*domain.WorkoutSession, error) {
	var ws domain.WorkoutSession
	if err := c.do(ctx, method, path, nil, body, &ws); err != nil {
		return nil, err
	}
	return fillDerived(&ws), nil
}

func sessionPath(id, suffix string) string {
	return "/workout-sessions/" + url.PathEscape(id) + suffix
}

// fillDerived computes caloriesPerMinute when the server left it out.
func fillDerived(ws *domain.WorkoutSession) *domain.WorkoutSession {
	if ws != nil && ws.CaloriesPerMinute == nil {
		ws.CaloriesPerMinute = session.CaloriesPerMinute(ws.TotalCaloriesBurned, ws.TotalDuration)
	}
	return ws
}

// --- Exercises and workouts ---

func (c *Client) ListExercises(ctx context.Context, q domain.ExerciseQuery) (*domain.ExercisePage, error) {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	setIf(v, "search", q.Filters.Search)
	setIf(v, "category", q.Filters.Category)
	setIf(v, "difficulty", q.Filters.Difficulty)
	setIf(v, "primaryMuscleGroups", strings.Join(q.Filters.PrimaryMuscleGroups, ","))
	setIf(v, "equipment", strings.Join(q.Filters.Equipment, ","))
	if q.Filters.IsApproved != nil {
		v.Set("isApproved", strconv.FormatBool(*q.Filters.IsApproved))
	}
	setIf(v, "sortBy", q.Sort.Field)
	setIf(v, "sortOrder", q.Sort.Order)

	var page domain.ExercisePage
	if err := c.do(ctx, http.MethodGet, "/exercises", v, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetExercise(ctx context.Context, id string) (*domain.Exercise, error) {
	var ex domain.Exercise
	if err := c.do(ctx, http.MethodGet, "/exercises/"+url.PathEscape(id), nil, nil, &ex); err != nil {
		return nil, err
	}
	return &ex, nil
}

func (c *Client) ListWorkouts(ctx context.Context, page domain.PageRequest) (*domain.WorkoutPage, error) {
	v := url.Values{}
	if page.Page > 0 {
		v.Set("page", strconv.Itoa(page.Page))
	}
	if page.Limit > 0 {
		v.Set("limit", strconv.Itoa(page.Limit))
	}
	var result domain.WorkoutPage
	if err := c.do(ctx, http.MethodGet, "/workouts", v, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}
