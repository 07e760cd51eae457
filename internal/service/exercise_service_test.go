package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/domain"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/repository/memory"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/session"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserSubmissionsNeedApproval(t *testing.T) {
	svc := NewExerciseService(memory.NewExerciseRepository(), session.DefaultPaging)
	ctx := context.Background()
	user, admin := primitive.NewObjectID(), primitive.NewObjectID()

	submitted, err := svc.CreateExercise(ctx, user, domain.RoleUser, ExerciseInput{Name: "Goblet squat", Category: "strength"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if submitted.IsApproved {
		t.Fatalf("user submissions must start unapproved")
	}
	official, _ := svc.CreateExercise(ctx, admin, domain.RoleAdmin, ExerciseInput{Name: "Push-up", Category: "strength"})
	if !official.IsApproved {
		t.Fatalf("admin submissions are approved on creation")
	}

	page, err := svc.ListExercises(ctx, domain.RoleUser, domain.ExerciseQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Pagination.Total != 1 || page.Data[0].ID != official.ID {
		t.Fatalf("users must only see approved exercises, got %+v", page.Data)
	}
	if page.Pagination.Limit != session.DefaultPageSize || page.Sort.Field != domain.DefaultExerciseSortField || page.Sort.Order != domain.SortDesc {
		t.Fatalf("defaults not applied: %+v %+v", page.Pagination, page.Sort)
	}

	if page, _ = svc.ListExercises(ctx, domain.RoleAdmin, domain.ExerciseQuery{}); page.Pagination.Total != 2 {
		t.Fatalf("admins see every exercise, got %d", page.Pagination.Total)
	}

	if _, err := svc.ApproveExercise(ctx, submitted.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if page, _ = svc.ListExercises(ctx, domain.RoleUser, domain.ExerciseQuery{}); page.Pagination.Total != 2 {
		t.Fatalf("approved exercise must become visible, got %d", page.Pagination.Total)
	}
}

func TestExerciseValidationAndNotFound(t *testing.T) {
	svc := NewExerciseService(memory.NewExerciseRepository(), session.DefaultPaging)
	ctx := context.Background()

	if _, err := svc.CreateExercise(ctx, primitive.NewObjectID(), domain.RoleUser, ExerciseInput{Name: " "}); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.CreateExercise(ctx, primitive.NewObjectID(), domain.RoleUser, ExerciseInput{Name: "Row", CaloriesPerMinute: -1}); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.ApproveExercise(ctx, primitive.NewObjectID()); !errors.Is(err, ErrExerciseNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := svc.DeleteExercise(ctx, primitive.NewObjectID()); !errors.Is(err, ErrExerciseNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestWorkoutOwnershipAndValidation(t *testing.T) {
	exercises := memory.NewExerciseRepository()
	svc := NewWorkoutService(memory.NewWorkoutRepository(), exercises, session.DefaultPaging)
	ctx := context.Background()
	owner, stranger := primitive.NewObjectID(), primitive.NewObjectID()

	squat := &domain.Exercise{Name: "Squat", IsApproved: true}
	exercises.Create(ctx, squat)

	invalid := []WorkoutInput{
		{Name: "", Exercises: []domain.WorkoutExercise{{ExerciseID: squat.ID, Sets: 3}}},
		{Name: "Legs"},
		{Name: "Legs", Exercises: []domain.WorkoutExercise{{ExerciseID: squat.ID, Sets: 0}}},
		{Name: "Legs", Exercises: []domain.WorkoutExercise{{ExerciseID: squat.ID, Sets: 3, Reps: -1}}},
		{Name: "Legs", Exercises: []domain.WorkoutExercise{{ExerciseID: primitive.NewObjectID(), Sets: 3}}},
	}
	for i, in := range invalid {
		if _, err := svc.CreateWorkout(ctx, owner, in); !errors.Is(err, ErrValidationFailed) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}

	in := WorkoutInput{Name: "Legs", Exercises: []domain.WorkoutExercise{{ExerciseID: squat.ID, Sets: 3, Reps: 8}}}
	workout, err := svc.CreateWorkout(ctx, owner, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.GetWorkout(ctx, stranger, workout.ID); !errors.Is(err, ErrWorkoutAccessDenied) {
		t.Fatalf("private workout must be hidden, got %v", err)
	}
	in.IsPublic = true
	if _, err := svc.UpdateWorkout(ctx, owner, workout.ID, in); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := svc.GetWorkout(ctx, stranger, workout.ID); err != nil {
		t.Fatalf("public workout must be readable: %v", err)
	}
	if _, err := svc.UpdateWorkout(ctx, stranger, workout.ID, in); !errors.Is(err, ErrWorkoutAccessDenied) {
		t.Fatalf("only the owner may edit, got %v", err)
	}
	if err := svc.DeleteWorkout(ctx, stranger, workout.ID); !errors.Is(err, ErrWorkoutAccessDenied) {
		t.Fatalf("only the owner may delete, got %v", err)
	}

	page, err := svc.ListWorkouts(ctx, stranger, domain.PageRequest{})
	if err != nil || page.Pagination.Total != 1 {
		t.Fatalf("stranger should see the public workout, got %+v, %v", page, err)
	}

	if err := svc.DeleteWorkout(ctx, owner, workout.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetWorkout(ctx, owner, workout.ID); !errors.Is(err, ErrWorkoutNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
