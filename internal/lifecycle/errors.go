package lifecycle

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every ValidationError.
	ErrValidation = errors.New("lifecycle: validation failed")

	// ErrNotFound matches every NotFoundError.
	ErrNotFound = errors.New("lifecycle: preset not found")

	// ErrCanceled indicates the confirmer declined the operation.
	ErrCanceled = errors.New("lifecycle: canceled by user")
)

// ValidationError rejects a save or delete before anything is changed.
type ValidationError struct {
	Op     string
	Name   string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Op, e.Name, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a delete of a name the catalog does not hold.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("preset %q not found", e.Name)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
