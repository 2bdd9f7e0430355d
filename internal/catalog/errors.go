package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrReadOnly is returned when a form is mutated while loading or submitting.
	ErrReadOnly = errors.New("form is read-only while a request is in flight")

	// ErrClosed is returned by operations on a form or list that was closed.
	ErrClosed = errors.New("closed")

	// ErrNoIdentity is returned when loading a form that has no product id.
	ErrNoIdentity = errors.New("product has no identifier")
)

// ValidationError rejects a field value at the input boundary.
type ValidationError struct {
	Field  Field
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field.Label(), e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }
