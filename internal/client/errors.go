package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels matched with errors.Is against any error returned by Client.
var (
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("conflict")
	ErrValidation             = errors.New("validation failed")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrTransient              = errors.New("transient network error")
)

// APIError is a non-success envelope. CurrentStatus and Operation are set on illegal transitions.
type APIError struct {
	StatusCode    int
	Message       string
	CurrentStatus string
	Operation     string
}

func (e *APIError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("api error %d: %s (status %s, operation %s)", e.StatusCode, e.Message, e.CurrentStatus, e.Operation)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	case ErrInvalidStateTransition:
		return e.StatusCode == http.StatusConflict && e.Operation != ""
	case ErrValidation:
		return e.StatusCode == http.StatusBadRequest
	case ErrTransient:
		return retryableStatus(e.StatusCode)
	}
	return false
}

func retryableStatus(code int) bool {
	return code >= http.StatusInternalServerError || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
}
