package syncfolder

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is bad caller input, raised before any snapshot work
	ErrValidation = errors.New("validation error")

	// ErrNotFound means a destination path expected by a snapshot is missing
	ErrNotFound = errors.New("not found")

	// ErrIO means the host filesystem could not be read or walked
	ErrIO = errors.New("io error")
)

type ValidationError struct {
	Field string
	Msg   string
}

func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

type NotFoundError struct {
	Kind string // "folder" or "item"
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Path)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func (e *IOError) Is(target error) bool {
	return target == ErrIO
}
