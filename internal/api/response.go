package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/service"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/session"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every endpoint answers with.
// Data is always present so an absent result reads as null.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// TransitionDetails is the data of a 409 caused by an illegal lifecycle operation.
type TransitionDetails struct {
	CurrentStatus string `json:"currentStatus"`
	Operation     string `json:"operation"`
}

func respond(c *gin.Context, code int, data interface{}) {
	c.JSON(code, Response{Success: true, Data: data})
}

func respondMessage(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, Response{Success: true, Data: data, Message: message})
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Response{Success: false, Error: message})
}

// abortWithServiceError maps a service or lifecycle error to its HTTP status.
func abortWithServiceError(c *gin.Context, err error) {
	var transition *session.TransitionError
	if errors.As(err, &transition) {
		c.AbortWithStatusJSON(http.StatusConflict, Response{
			Success: false,
			Data: TransitionDetails{
				CurrentStatus: string(transition.From),
				Operation:     string(transition.Op),
			},
			Error:   err.Error(),
			Message: "invalid state transition",
		})
		return
	}

	code := statusForError(err)
	if code == http.StatusInternalServerError {
		log.Printf("ERROR: %s %s: %v", c.Request.Method, c.FullPath(), err)
		abortWithError(c, code, "An unexpected error occurred.")
		return
	}
	abortWithError(c, code, err.Error())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, session.ErrValidation),
		errors.Is(err, session.ErrOutOfRangeIndex),
		errors.Is(err, service.ErrValidationFailed),
		errors.Is(err, service.ErrUnsupportedAvatarFormat):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrAuthenticationFailed),
		errors.Is(err, service.ErrInvalidRefreshToken):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrSessionAccessDenied),
		errors.Is(err, service.ErrWorkoutAccessDenied),
		errors.Is(err, service.ErrExerciseAccessDenied):
		return http.StatusForbidden

	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrWorkoutNotFound),
		errors.Is(err, service.ErrExerciseNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrAvatarUploadNotFound):
		return http.StatusNotFound

	case errors.Is(err, session.ErrInvalidStateTransition),
		errors.Is(err, service.ErrActiveSessionExists),
		errors.Is(err, service.ErrSessionConflict),
		errors.Is(err, service.ErrUserAlreadyExists):
		return http.StatusConflict

	case errors.Is(err, service.ErrAvatarStorageDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
