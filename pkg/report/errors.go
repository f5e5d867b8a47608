package report

import (
	"errors"
	"fmt"
)

var (
	// ErrThreshold means a message reached the exception threshold.
	ErrThreshold = errors.New("exception threshold reached")
	// ErrInvalidSchema means a schema fragment failed syntax checking.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrValidationLoop means the same schema was re-entered at the same
	// instance node.
	ErrValidationLoop = errors.New("validation loop")
	// ErrRefResolving means a $ref could not be resolved.
	ErrRefResolving = errors.New("unresolvable reference")
	// ErrDepthExceeded means recursion went deeper than the configured limit.
	ErrDepthExceeded = errors.New("maximum depth exceeded")
)

// AbortError ends a validation call. It carries the message that caused it.
type AbortError struct {
	Message Message
	Err     error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Message.Text)
}

func (e *AbortError) Unwrap() error { return e.Err }
