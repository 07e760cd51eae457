package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/domain"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- DTOs for API (Data Transfer Objects) ---

// ExerciseRequest defines the expected JSON for creating or editing an exercise.
type ExerciseRequest struct {
	Name                string   `json:"name" binding:"required"`
	Description         string   `json:"description"`
	Category            string   `json:"category"`   // e.g., "strength", "cardio"
	Difficulty          string   `json:"difficulty"` // e.g., "beginner", "advanced"
	PrimaryMuscleGroups []string `json:"primaryMuscleGroups"`
	Equipment           []string `json:"equipment"`
	Instructions        []string `json:"instructions"`
	VideoURL            string   `json:"videoUrl" binding:"omitempty,url"`
	CaloriesPerMinute   float64  `json:"caloriesPerMinute" binding:"min=0"`
}

func (r ExerciseRequest) input() service.ExerciseInput {
	return service.ExerciseInput{
		Name:                r.Name,
		Description:         r.Description,
		Category:            r.Category,
		Difficulty:          r.Difficulty,
		PrimaryMuscleGroups: r.PrimaryMuscleGroups,
		Equipment:           r.Equipment,
		Instructions:        r.Instructions,
		VideoURL:            r.VideoURL,
		CaloriesPerMinute:   r.CaloriesPerMinute,
	}
}

// --- Handler Methods ---

// ListExercises godoc
// @Summary List the exercise library
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (1-based)"
// @Param limit query int false "Page size"
// @Param search query string false "Name or description contains"
// @Param primaryMuscleGroups query string false "Comma separated"
// @Param sortBy query string false "name, category, difficulty, caloriesPerMinute or createdAt"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} domain.ExercisePage
// @Router /exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	query, err := parseExerciseQuery(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.exerciseService.ListExercises(c.Request.Context(), role, query)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, page)
}

func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	exercise, err := h.exerciseService.GetExerciseByID(c.Request.Context(), exerciseID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, exercise)
}

// CreateExercise godoc
// @Summary Submit a new exercise
// @Description Admin submissions are approved immediately, user submissions wait for review.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body ExerciseRequest true "Exercise details"
// @Success 201 {object} domain.Exercise "Exercise created successfully"
// @Failure 400 {object} Response "Invalid input (validation error)"
// @Router /exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	role, _ := getUserRoleFromContext(c)

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), userID, role, req.input())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, exercise)
}

func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	exercise, err := h.exerciseService.UpdateExercise(c.Request.Context(), exerciseID, req.input())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, exercise)
}

func (h *ExerciseHandler) ApproveExercise(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	exercise, err := h.exerciseService.ApproveExercise(c.Request.Context(), exerciseID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, exercise, "exercise approved")
}

func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	if err := h.exerciseService.DeleteExercise(c.Request.Context(), exerciseID); err != nil {
		abortWithServiceError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, nil, "exercise deleted")
}

// parseExerciseQuery reads the list parameters. List values may be repeated or comma separated.
func parseExerciseQuery(c *gin.Context) (domain.ExerciseQuery, error) {
	var q domain.ExerciseQuery
	var err error
	if q.Page, err = optionalInt(c, "page"); err != nil {
		return q, err
	}
	if q.Limit, err = optionalInt(c, "limit"); err != nil {
		return q, err
	}

	q.Filters = domain.ExerciseFilters{
		Search:              strings.TrimSpace(c.Query("search")),
		Category:            c.Query("category"),
		Difficulty:          c.Query("difficulty"),
		PrimaryMuscleGroups: queryList(c, "primaryMuscleGroups"),
		Equipment:           queryList(c, "equipment"),
	}
	if raw := c.Query("isApproved"); raw != "" {
		approved, err := strconv.ParseBool(raw)
		if err != nil {
			return q, fmt.Errorf("invalid isApproved %q", raw)
		}
		q.Filters.IsApproved = &approved
	}

	q.Sort = domain.SortSpec{Field: c.Query("sortBy"), Order: strings.ToLower(c.Query("sortOrder"))}
	return q, nil
}

func optionalInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return n, nil
}

func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
