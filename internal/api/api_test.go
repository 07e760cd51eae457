package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/cache"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/domain"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/repository/memory"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/service"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/session"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/stream"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "api-test-secret"

type testServer struct {
	router *gin.Engine
	hub    *stream.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := memory.NewUserRepository()
	exercises := memory.NewExerciseRepository()
	workouts := memory.NewWorkoutRepository()
	sessions := memory.NewWorkoutSessionRepository()
	hub := stream.NewHub(nil)
	t.Cleanup(func() { hub.Close() })

	router := gin.New()
	SetupRoutes(router, testSecret,
		service.NewAuthService(users, cache.NewMemoryTokenStore(nil), testSecret, time.Hour, 24*time.Hour),
		service.NewProfileService(users, nil, nil),
		service.NewExerciseService(exercises, session.DefaultPaging),
		service.NewWorkoutService(workouts, exercises, session.DefaultPaging),
		service.NewWorkoutSessionService(sessions, workouts, session.NewLifecycle(nil), session.DefaultPaging, hub),
		hub,
	)
	return &testServer{router: router, hub: hub}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode envelope %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, env
}

func decode(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

// signup registers and logs in, returning the access token and the user ID.
func (s *testServer) signup(t *testing.T, email string) (string, string) {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{Name: "Tester", Email: email, Password: "password123"})
	if code != http.StatusCreated || !env.Success {
		t.Fatalf("register: %d %+v", code, env)
	}
	code, env = s.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: email, Password: "password123"})
	if code != http.StatusOK {
		t.Fatalf("login: %d %+v", code, env)
	}
	var login LoginResponse
	decode(t, env, &login)
	return login.AccessToken, login.User.ID
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &service.Claims{
		UserID: primitive.NewObjectID().Hex(),
		Role:   domain.RoleAdmin,
		Type:   service.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign admin token: %v", err)
	}
	return token
}

// seedWorkout creates an approved exercise and a two-exercise workout owned by the token's user.
func (s *testServer) seedWorkout(t *testing.T, token string) string {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/v1/exercises", adminToken(t), ExerciseRequest{Name: "Squat", Category: "strength", CaloriesPerMinute: 8})
	if code != http.StatusCreated {
		t.Fatalf("create exercise: %d %+v", code, env)
	}
	var exercise domain.Exercise
	decode(t, env, &exercise)

	code, env = s.do(t, http.MethodPost, "/api/v1/workouts", token, WorkoutRequest{
		Name: "Legs",
		Exercises: []WorkoutExerciseRequest{
			{ExerciseID: exercise.ID.Hex(), Sets: 3, Reps: 8},
			{ExerciseID: exercise.ID.Hex(), Sets: 2, Reps: 12},
		},
	})
	if code != http.StatusCreated {
		t.Fatalf("create workout: %d %+v", code, env)
	}
	var workout domain.Workout
	decode(t, env, &workout)
	return workout.ID.Hex()
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t)

	if code, _ := s.do(t, http.MethodGet, "/api/v1/profile", "", nil); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", code)
	}

	token, _ := s.signup(t, "ana@example.com")
	code, env := s.do(t, http.MethodGet, "/api/v1/profile", token, nil)
	if code != http.StatusOK {
		t.Fatalf("profile: %d %+v", code, env)
	}
	var profile UserResponse
	decode(t, env, &profile)
	if profile.Email != "ana@example.com" || profile.Role != domain.RoleUser {
		t.Fatalf("unexpected profile %+v", profile)
	}

	if code, env = s.do(t, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "password123"}); code != http.StatusConflict || env.Success {
		t.Fatalf("duplicate register: %d %+v", code, env)
	}
	if code, _ = s.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: "ana@example.com", Password: "wrong-pass"}); code != http.StatusUnauthorized {
		t.Fatalf("bad password: %d", code)
	}
}

func TestRefreshRotationOverHTTP(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "ana@example.com")
	_, env := s.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: "ana@example.com", Password: "password123"})
	var login LoginResponse
	decode(t, env, &login)

	if code, _ := s.do(t, http.MethodGet, "/api/v1/profile", login.RefreshToken, nil); code != http.StatusUnauthorized {
		t.Fatalf("refresh token must not authorize requests, got %d", code)
	}

	code, env := s.do(t, http.MethodPost, "/api/v1/auth/refresh", "", RefreshRequest{RefreshToken: login.RefreshToken})
	if code != http.StatusOK {
		t.Fatalf("refresh: %d %+v", code, env)
	}
	var pair service.TokenPair
	decode(t, env, &pair)
	if pair.AccessToken == "" || pair.RefreshToken == login.RefreshToken {
		t.Fatalf("expected a rotated pair, got %+v", pair)
	}
	if code, _ = s.do(t, http.MethodPost, "/api/v1/auth/refresh", "", RefreshRequest{RefreshToken: login.RefreshToken}); code != http.StatusUnauthorized {
		t.Fatalf("reused refresh token: %d", code)
	}

	if code, _ = s.do(t, http.MethodPost, "/api/v1/auth/logout", "", RefreshRequest{RefreshToken: pair.RefreshToken}); code != http.StatusOK {
		t.Fatalf("logout: %d", code)
	}
	if code, _ = s.do(t, http.MethodPost, "/api/v1/auth/refresh", "", RefreshRequest{RefreshToken: pair.RefreshToken}); code != http.StatusUnauthorized {
		t.Fatalf("refresh after logout: %d", code)
	}
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	token, userID := s.signup(t, "ana@example.com")
	workoutID := s.seedWorkout(t, token)

	code, env := s.do(t, http.MethodGet, "/api/v1/workout-sessions/active", token, nil)
	if code != http.StatusOK || string(env.Data) != "null" {
		t.Fatalf("expected data null without a session, got %d %s", code, env.Data)
	}

	code, env = s.do(t, http.MethodPost, "/api/v1/workout-sessions/start", token, StartSessionRequest{WorkoutID: workoutID})
	if code != http.StatusCreated {
		t.Fatalf("start: %d %+v", code, env)
	}
	var ws domain.WorkoutSession
	decode(t, env, &ws)
	if ws.UserID.Hex() != userID || ws.TotalExercises != 2 || ws.Status != domain.SessionActive {
		t.Fatalf("unexpected session %+v", ws)
	}
	base := "/api/v1/workout-sessions/" + ws.ID.Hex()

	if code, _ = s.do(t, http.MethodPost, "/api/v1/workout-sessions/start", token, StartSessionRequest{WorkoutID: workoutID}); code != http.StatusConflict {
		t.Fatalf("second start: %d", code)
	}

	zero := 0
	code, env = s.do(t, http.MethodPut, base+"/exercise-progress", token, ExerciseProgressRequest{ExerciseIndex: &zero, SetIndex: &zero, Reps: 8, Weight: 60, Duration: 40, RestTime: 60})
	if code != http.StatusOK {
		t.Fatalf("log set: %d %+v", code, env)
	}

	five := 5
	if code, env = s.do(t, http.MethodPut, base+"/complete-exercise", token, CompleteExerciseRequest{ExerciseIndex: &five, CaloriesBurned: 10}); code != http.StatusBadRequest {
		t.Fatalf("out of range index: %d %+v", code, env)
	}
	if code, _ = s.do(t, http.MethodPut, base+"/complete-exercise", token, CompleteExerciseRequest{ExerciseIndex: &zero, CaloriesBurned: 25}); code != http.StatusOK {
		t.Fatalf("complete exercise: %d", code)
	}

	if code, _ = s.do(t, http.MethodPut, base+"/pause", token, nil); code != http.StatusOK {
		t.Fatalf("pause: %d", code)
	}
	code, env = s.do(t, http.MethodPut, base+"/pause", token, nil)
	if code != http.StatusConflict {
		t.Fatalf("second pause: %d", code)
	}
	var details TransitionDetails
	decode(t, env, &details)
	if details.CurrentStatus != "paused" || details.Operation != "pause" {
		t.Fatalf("unexpected transition details %+v", details)
	}

	if code, _ = s.do(t, http.MethodPut, base+"/resume", token, nil); code != http.StatusOK {
		t.Fatalf("resume: %d", code)
	}
	rating := 4
	code, env = s.do(t, http.MethodPut, base+"/complete", token, AnnotationRequest{Rating: &rating})
	if code != http.StatusOK {
		t.Fatalf("complete: %d %+v", code, env)
	}
	decode(t, env, &ws)
	if ws.Status != domain.SessionCompleted || ws.TotalCaloriesBurned != 25 || ws.CompletionPercentage != 50 {
		t.Fatalf("unexpected completed session %+v", ws)
	}

	notes := "felt strong"
	if code, _ = s.do(t, http.MethodPatch, base, token, AnnotationRequest{Notes: &notes}); code != http.StatusOK {
		t.Fatalf("annotate: %d", code)
	}

	code, env = s.do(t, http.MethodGet, "/api/v1/workout-sessions?status=completed&limit=5", token, nil)
	if code != http.StatusOK {
		t.Fatalf("history: %d %+v", code, env)
	}
	var page domain.SessionPage
	decode(t, env, &page)
	if page.Total != 1 || page.Sessions[0].Notes != notes {
		t.Fatalf("unexpected history %+v", page)
	}
	if code, _ = s.do(t, http.MethodGet, "/api/v1/workout-sessions?status=bogus", token, nil); code != http.StatusBadRequest {
		t.Fatalf("bad filter: %d", code)
	}

	code, env = s.do(t, http.MethodGet, "/api/v1/workout-sessions/stats", token, nil)
	var stats domain.SessionStats
	decode(t, env, &stats)
	if code != http.StatusOK || stats.TotalSessions != 1 || stats.AverageRating != 4 {
		t.Fatalf("unexpected stats %d %+v", code, stats)
	}

	if code, _ = s.do(t, http.MethodDelete, base, token, nil); code != http.StatusOK {
		t.Fatalf("delete: %d", code)
	}
	if code, _ = s.do(t, http.MethodGet, base, token, nil); code != http.StatusNotFound {
		t.Fatalf("get after delete: %d", code)
	}
}

func TestSessionsAreOwnerOnly(t *testing.T) {
	s := newTestServer(t)
	owner, _ := s.signup(t, "owner@example.com")
	stranger, _ := s.signup(t, "stranger@example.com")
	workoutID := s.seedWorkout(t, owner)

	_, env := s.do(t, http.MethodPost, "/api/v1/workout-sessions/start", owner, StartSessionRequest{WorkoutID: workoutID})
	var ws domain.WorkoutSession
	decode(t, env, &ws)

	if code, _ := s.do(t, http.MethodGet, "/api/v1/workout-sessions/"+ws.ID.Hex(), stranger, nil); code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}
	if code, _ := s.do(t, http.MethodPost, "/api/v1/workout-sessions/start", stranger, StartSessionRequest{WorkoutID: workoutID}); code != http.StatusForbidden {
		t.Fatalf("private workout must not be startable by others, got %d", code)
	}
	if code, _ := s.do(t, http.MethodGet, "/api/v1/workout-sessions/not-an-id", owner, nil); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", code)
	}
}

func TestExerciseApprovalIsAdminOnly(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.signup(t, "ana@example.com")

	code, env := s.do(t, http.MethodPost, "/api/v1/exercises", token, ExerciseRequest{Name: "Bear crawl"})
	if code != http.StatusCreated {
		t.Fatalf("submit: %d %+v", code, env)
	}
	var submitted domain.Exercise
	decode(t, env, &submitted)

	code, env = s.do(t, http.MethodGet, "/api/v1/exercises", token, nil)
	var page domain.ExercisePage
	decode(t, env, &page)
	if code != http.StatusOK || page.Pagination.Total != 0 {
		t.Fatalf("unapproved exercise must be hidden from users, got %d %+v", code, page.Pagination)
	}

	approve := "/api/v1/exercises/" + submitted.ID.Hex() + "/approve"
	if code, _ = s.do(t, http.MethodPut, approve, token, nil); code != http.StatusForbidden {
		t.Fatalf("user approve: %d", code)
	}
	if code, _ = s.do(t, http.MethodPut, approve, adminToken(t), nil); code != http.StatusOK {
		t.Fatalf("admin approve: %d", code)
	}

	_, env = s.do(t, http.MethodGet, "/api/v1/exercises?search=bear&sortBy=name&sortOrder=asc", token, nil)
	decode(t, env, &page)
	if page.Pagination.Total != 1 || page.Sort.Field != "name" || page.Sort.Order != domain.SortAsc {
		t.Fatalf("unexpected listing %+v", page)
	}
	if code, _ = s.do(t, http.MethodGet, "/api/v1/exercises?page=abc", token, nil); code != http.StatusBadRequest {
		t.Fatalf("bad page: %d", code)
	}
}

func TestPublishesSessionEvents(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.signup(t, "ana@example.com")
	workoutID := s.seedWorkout(t, token)

	_, env := s.do(t, http.MethodPost, "/api/v1/workout-sessions/start", token, StartSessionRequest{WorkoutID: workoutID})
	var ws domain.WorkoutSession
	decode(t, env, &ws)

	sub := s.hub.Register(ws.ID.Hex())
	defer s.hub.Unregister(sub)
	s.do(t, http.MethodPut, "/api/v1/workout-sessions/"+ws.ID.Hex()+"/pause", token, nil)

	select {
	case msg := <-sub.Send:
		var event stream.SessionEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if event.Type != stream.EventSessionUpdated || event.Session.Status != domain.SessionPaused {
			t.Fatalf("unexpected event %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatalf("no event published")
	}
}
