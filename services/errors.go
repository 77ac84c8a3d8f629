package services

import (
	"errors"
	"fmt"
)

// ErrValidation indicates a user-facing validation error. Nothing has been
// written when it is returned.
var ErrValidation = errors.New("validation error")

func validationError(message string) error {
	return fmt.Errorf("%w: %s", ErrValidation, message)
}

// InternalError wraps non-user (server-side) failures with a short machine
// code so the controller layer can surface a stable error code while hiding
// internals.
type InternalError struct {
	Code string
	Err  error
}

func (e *InternalError) Error() string { return e.Err.Error() }
func (e *InternalError) Unwrap() error { return e.Err }
