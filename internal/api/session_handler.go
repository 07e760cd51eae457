package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/domain"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/service"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/session"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/stream"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionHandler serves /workout-sessions. Every route acts on the caller's own sessions.
type SessionHandler struct {
	sessionService service.WorkoutSessionService
	hub            *stream.Hub
}

func NewSessionHandler(sessionService service.WorkoutSessionService, hub *stream.Hub) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, hub: hub}
}

// --- Request Structs ---

type StartSessionRequest struct {
	WorkoutID string `json:"workoutId" binding:"required"`
}

type ExerciseProgressRequest struct {
	ExerciseIndex *int    `json:"exerciseIndex" binding:"required"`
	ExerciseID    string  `json:"exerciseId"` // Optional, resolved from the workout
	SetIndex      *int    `json:"setIndex" binding:"required"`
	Reps          int     `json:"reps"`
	Weight        float64 `json:"weight"`
	Duration      int64   `json:"duration"` // Seconds
	RestTime      int64   `json:"restTime"` // Seconds
	Notes         string  `json:"notes"`
}

type CompleteExerciseRequest struct {
	ExerciseIndex  *int    `json:"exerciseIndex" binding:"required"`
	ExerciseID     string  `json:"exerciseId"`
	CaloriesBurned float64 `json:"caloriesBurned"`
}

// AnnotationRequest is the body of complete and PATCH. Every field is optional.
type AnnotationRequest struct {
	Notes     *string                `json:"notes"`
	Rating    *int                   `json:"rating"`
	Mood      *domain.Mood           `json:"mood"`
	HeartRate *domain.HeartRateStats `json:"heartRate"`
}

func (r AnnotationRequest) annotation() session.Annotation {
	return session.Annotation{Notes: r.Notes, Rating: r.Rating, Mood: r.Mood, HeartRate: r.HeartRate}
}

// --- Handler Methods ---

// StartSession godoc
// @Summary Start a workout session
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body StartSessionRequest true "Workout to perform"
// @Success 201 {object} domain.WorkoutSession
// @Failure 404 {object} Response "Workout not found"
// @Failure 409 {object} Response "An unfinished session already exists"
// @Router /workout-sessions/start [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	workoutID, err := primitive.ObjectIDFromHex(req.WorkoutID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workoutId format.")
		return
	}

	ws, err := h.sessionService.StartSession(c.Request.Context(), userID, workoutID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, ws, "session started")
}

// GetActiveSession answers data: null when the caller has no unfinished session.
func (h *SessionHandler) GetActiveSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	ws, err := h.sessionService.GetActiveSession(c.Request.Context(), userID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	if ws == nil {
		respond(c, http.StatusOK, nil)
		return
	}
	respond(c, http.StatusOK, ws)
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	userID, sessionID, ok := h.ids(c)
	if !ok {
		return
	}
	ws, err := h.sessionService.GetSession(c.Request.Context(), userID, sessionID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, ws)
}

func (h *SessionHandler) LogExerciseProgress(c *gin.Context) {
	userID, sessionID, ok := h.ids(c)
	if !ok {
		return
	}
	var req ExerciseProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	exerciseID, ok := optionalObjectID(c, "exerciseId", req.ExerciseID)
	if !ok {
		return
	}

	ws, err := h.sessionService.LogSetProgress(c.Request.Context(), userID, sessionID, *req.ExerciseIndex, exerciseID, domain.SetPerformance{
		SetIndex: *req.SetIndex,
		Reps:     req.Reps,
		WeightKg: req.Weight,
		Duration: req.Duration,
		RestTime: req.RestTime,
		Notes:    req.Notes,
	})
	h.reply(c, ws, err)
}

func (h *SessionHandler) CompleteExercise(c *gin.Context) {
	userID, sessionID, ok := h.ids(c)
	if !ok {
		return
	}
	var req CompleteExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	exerciseID, ok := optionalObjectID(c, "exerciseId", req.ExerciseID)
	if !ok {
		return
	}

	ws, err := h.sessionService.CompleteExercise(c.Request.Context(), userID, sessionID, *req.ExerciseIndex, exerciseID, req.CaloriesBurned)
	h.reply(c, ws, err)
}

func (h *SessionHandler) PauseSession(c *gin.Context) {
	userID, sessionID, ok := h.ids(c)
	if !ok {
		return
	}
	ws, err := h.sessionService.PauseSession(c.Request.Context(), userID, sessionID)
	h.reply(c, ws, err)
}

func (h *SessionHandler) ResumeSession(c *gin.Context) {
	userID, sessionID, ok := h.ids(c)
	if !ok {
		return
	}
	ws, err := h.sessionService.ResumeSession(c.Request.Context(), userID, sessionID)
	h.reply(c, ws, err)
}

func (h *SessionHandler) CompleteSession(c *gin.Context) {
	userID, sessionID, ok := h.ids(c)
	if !ok {
		return
	}
	req, ok := bindAnnotation(c)
	if !ok {
		return
	}
	ws, err := h.sessionService.CompleteSession(c.Request.Context(), userID, sessionID, req.annotation())
	h.reply(c, ws, err)
}

func (h *SessionHandler) StopSession(c *gin.Context) {
	userID, sessionID, ok := h.ids(c)
	if !ok {
		return
	}
	ws, err := h.sessionService.StopSession(c.Request.Context(), userID, sessionID)
	h.reply(c, ws, err)
}

// AnnotateSession edits notes, rating, mood or heart rate of a finished session.
func (h *SessionHandler) AnnotateSession(c *gin.Context) {
	userID, sessionID, ok := h.ids(c)
	if !ok {
		return
	}
	req, ok := bindAnnotation(c)
	if !ok {
		return
	}
	ws, err := h.sessionService.AnnotateSession(c.Request.Context(), userID, sessionID, req.annotation())
	h.reply(c, ws, err)
}

func (h *SessionHandler) DeleteSession(c *gin.Context) {
	userID, sessionID, ok := h.ids(c)
	if !ok {
		return
	}
	if err := h.sessionService.DeleteSession(c.Request.Context(), userID, sessionID); err != nil {
		abortWithServiceError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, nil, "session deleted")
}

// ListSessions godoc
// @Summary Session history
// @Description Filters: status, startDate, endDate, minDuration, maxDuration, minCalories, maxCalories, rating, mood.
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.SessionPage
// @Failure 400 {object} Response "Malformed filter"
// @Router /workout-sessions [get]
func (h *SessionHandler) ListSessions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	filter, page, err := session.ParseQuery(c.Request.URL.Query())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	result, err := h.sessionService.ListSessions(c.Request.Context(), userID, filter, page)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, result)
}

func (h *SessionHandler) GetStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	stats, err := h.sessionService.GetStats(c.Request.Context(), userID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, stats)
}

// StreamSession upgrades to a websocket that receives every change to the session.
func (h *SessionHandler) StreamSession(c *gin.Context) {
	userID, sessionID, ok := h.ids(c)
	if !ok {
		return
	}
	if _, err := h.sessionService.GetSession(c.Request.Context(), userID, sessionID); err != nil {
		abortWithServiceError(c, err)
		return
	}
	if h.hub == nil {
		abortWithError(c, http.StatusServiceUnavailable, "Session streaming is not available.")
		return
	}
	stream.Serve(h.hub, c, sessionID.Hex())
}

func (h *SessionHandler) ids(c *gin.Context) (primitive.ObjectID, primitive.ObjectID, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	sessionID, ok := pathObjectID(c, "id")
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return userID, sessionID, true
}

func (h *SessionHandler) reply(c *gin.Context, ws *domain.WorkoutSession, err error) {
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, ws)
}

// bindAnnotation accepts an empty body as "no annotation".
func bindAnnotation(c *gin.Context) (AnnotationRequest, bool) {
	var req AnnotationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return req, false
	}
	return req, true
}

func optionalObjectID(c *gin.Context, field, raw string) (primitive.ObjectID, bool) {
	if raw == "" {
		return primitive.NilObjectID, true
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s format.", field))
		return primitive.NilObjectID, false
	}
	return id, true
}
