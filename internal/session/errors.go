package session

import (
	"errors"
	"fmt"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/domain"
)

// Sentinels matched with errors.Is. The concrete types below carry the context.
var (
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrOutOfRangeIndex        = errors.New("exercise index out of range")
	ErrValidation             = errors.New("validation failed")
)

// Operation names a lifecycle operation in errors and events.
type Operation string

const (
	OpStart            Operation = "start"
	OpPause            Operation = "pause"
	OpResume           Operation = "resume"
	OpLogSetProgress   Operation = "logSetProgress"
	OpCompleteExercise Operation = "completeExercise"
	OpCompleteSession  Operation = "completeSession"
	OpStopSession      Operation = "stopSession"
	OpAnnotate         Operation = "annotate"
)

// TransitionError reports an operation that is not legal from the session's current status.
type TransitionError struct {
	From domain.SessionStatus
	Op   Operation
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a session that is %s", e.Op, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidStateTransition }

// IndexError reports an exercise index outside [0, Total).
type IndexError struct {
	Field string
	Index int
	Total int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s %d out of range [0, %d)", e.Field, e.Index, e.Total)
}

func (e *IndexError) Unwrap() error { return ErrOutOfRangeIndex }

// ValidationError reports malformed input to a lifecycle operation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
