package knowledge

import (
	"errors"
	"fmt"
)

// Predefined errors for common failure scenarios.
var (
	// ErrNotFound indicates an unknown item, session, or collection.
	// Recoverable: callers check the return value.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates a malformed query or parameter.
	ErrValidation = errors.New("invalid input")

	// ErrProvider indicates an embedding or reasoning provider failure.
	// The provider's message is surfaced; no automatic retry happens here.
	ErrProvider = errors.New("provider failure")

	// ErrInvalidConfig indicates that the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Error wraps errors with operation context, making failures attributable
// to the facade operation that produced them.
type Error struct {
	// Op is the name of the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error returns "knowbase: <Op>: <Err>".
func (e *Error) Error() string {
	return fmt.Sprintf("knowbase: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error so errors.Is and errors.As work
// through the wrapper.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error wrapping err, or nil if err is nil. The nil
// passthrough allows unconditional wrapping at return sites.
func NewError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
