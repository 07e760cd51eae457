package client_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/api"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/cache"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/client"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/domain"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/repository/memory"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/service"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/session"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestClientAgainstServer drives a full session through the real router.
func TestClientAgainstServer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	users := memory.NewUserRepository()
	exercises := memory.NewExerciseRepository()
	workouts := memory.NewWorkoutRepository()
	router := gin.New()
	api.SetupRoutes(router, "e2e-secret",
		service.NewAuthService(users, cache.NewMemoryTokenStore(nil), "e2e-secret", time.Hour, time.Hour),
		service.NewProfileService(users, nil, nil),
		service.NewExerciseService(exercises, session.DefaultPaging),
		service.NewWorkoutService(workouts, exercises, session.DefaultPaging),
		service.NewWorkoutSessionService(memory.NewWorkoutSessionRepository(), workouts, nil, session.DefaultPaging, nil),
		nil,
	)
	srv := httptest.NewServer(router)
	defer srv.Close()

	c := client.New(srv.URL+"/api/v1", client.WithRetries(1, time.Millisecond))
	if _, err := c.Register(ctx, "Ana", "ana@example.com", "password123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	user, err := c.Login(ctx, "ana@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	ex := &domain.Exercise{Name: "Plank", IsApproved: true}
	exercises.Create(ctx, ex)
	owner, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		t.Fatalf("user id %q: %v", user.ID, err)
	}
	workout := &domain.Workout{CreatedBy: owner, Name: "Core", Exercises: []domain.WorkoutExercise{{ExerciseID: ex.ID, Sets: 1}}}
	workouts.Create(ctx, workout)

	active, err := c.ActiveSession(ctx)
	if err != nil || active != nil {
		t.Fatalf("expected no active session, got %v, %v", active, err)
	}

	ws, err := c.StartSession(ctx, workout.ID.Hex())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := c.LogSet(ctx, ws.ID.Hex(), client.SetInput{ExerciseIndex: 0, SetIndex: 0, Duration: 60}); err != nil {
		t.Fatalf("log set: %v", err)
	}
	if _, err := c.CompleteExercise(ctx, ws.ID.Hex(), 0, 5); err != nil {
		t.Fatalf("complete exercise: %v", err)
	}
	ws, err = c.CompleteSession(ctx, ws.ID.Hex(), client.Annotation{})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if ws.Status != domain.SessionCompleted || ws.CompletionPercentage != 100 {
		t.Fatalf("unexpected session %+v", ws)
	}

	_, err = c.PauseSession(ctx, ws.ID.Hex())
	if !errors.Is(err, client.ErrInvalidStateTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	page, err := c.ListSessions(ctx, domain.SessionFilter{Statuses: []domain.SessionStatus{domain.SessionCompleted}}, domain.PageRequest{})
	if err != nil || page.Total != 1 {
		t.Fatalf("history: %+v, %v", page, err)
	}

	if _, err := c.GetSession(ctx, "64b7f0c2a1b2c3d4e5f60718"); !errors.Is(err, client.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := c.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := c.SessionStats(ctx); !errors.Is(err, client.ErrUnauthorized) {
		t.Fatalf("expected unauthorized after logout, got %v", err)
	}
}
