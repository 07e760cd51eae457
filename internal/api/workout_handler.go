package api

import (
	"fmt"
	"net/http"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/domain"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WorkoutHandler struct {
	workoutService service.WorkoutService
}

func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// WorkoutExerciseRequest is one entry of the ordered exercise list.
type WorkoutExerciseRequest struct {
	ExerciseID      string  `json:"exerciseId" binding:"required"`
	Sets            int     `json:"sets" binding:"required,min=1"`
	Reps            int     `json:"reps" binding:"min=0"`
	WeightKg        float64 `json:"weightKg" binding:"min=0"`
	DurationSeconds int     `json:"durationSeconds" binding:"min=0"`
	RestSeconds     int     `json:"restSeconds" binding:"min=0"`
	Notes           string  `json:"notes"`
}

type WorkoutRequest struct {
	Name              string                   `json:"name" binding:"required"`
	Description       string                   `json:"description"`
	Difficulty        string                   `json:"difficulty"`
	EstimatedDuration int                      `json:"estimatedDuration" binding:"min=0"` // Minutes
	Exercises         []WorkoutExerciseRequest `json:"exercises" binding:"required,min=1,dive"`
	IsPublic          bool                     `json:"isPublic"`
}

func (r WorkoutRequest) input() (service.WorkoutInput, error) {
	in := service.WorkoutInput{
		Name:              r.Name,
		Description:       r.Description,
		Difficulty:        r.Difficulty,
		EstimatedDuration: r.EstimatedDuration,
		IsPublic:          r.IsPublic,
		Exercises:         make([]domain.WorkoutExercise, len(r.Exercises)),
	}
	for i, ex := range r.Exercises {
		exerciseID, err := primitive.ObjectIDFromHex(ex.ExerciseID)
		if err != nil {
			return in, fmt.Errorf("invalid exercises[%d].exerciseId", i)
		}
		in.Exercises[i] = domain.WorkoutExercise{
			ExerciseID:      exerciseID,
			Sets:            ex.Sets,
			Reps:            ex.Reps,
			WeightKg:        ex.WeightKg,
			DurationSeconds: ex.DurationSeconds,
			RestSeconds:     ex.RestSeconds,
			Notes:           ex.Notes,
		}
	}
	return in, nil
}

func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	in, ok := bindWorkout(c)
	if !ok {
		return
	}

	workout, err := h.workoutService.CreateWorkout(c.Request.Context(), userID, in)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, workout)
}

// ListWorkouts returns the caller's workouts and public ones, newest first.
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, err := optionalInt(c, "page")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := optionalInt(c, "limit")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	workouts, err := h.workoutService.ListWorkouts(c.Request.Context(), userID, domain.PageRequest{Page: page, Limit: limit})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, workouts)
}

func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	workout, err := h.workoutService.GetWorkout(c.Request.Context(), userID, workoutID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, workout)
}

func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	in, ok := bindWorkout(c)
	if !ok {
		return
	}

	workout, err := h.workoutService.UpdateWorkout(c.Request.Context(), userID, workoutID, in)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, workout)
}

func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	if err := h.workoutService.DeleteWorkout(c.Request.Context(), userID, workoutID); err != nil {
		abortWithServiceError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, nil, "workout deleted")
}

func bindWorkout(c *gin.Context) (service.WorkoutInput, bool) {
	var req WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return service.WorkoutInput{}, false
	}
	in, err := req.input()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return service.WorkoutInput{}, false
	}
	return in, true
}
