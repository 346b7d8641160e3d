package service

import (
	"errors"
	"fmt"

	"github.com/voxo-cms/internal/repository"
	"github.com/voxo-cms/internal/validation"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique slug, email or key is taken.
	ErrConflict = errors.New("already exists")
	// ErrInvalidInput is returned when a request fails validation.
	ErrInvalidInput = errors.New("invalid input")
)

// InputError carries the field errors of a rejected request
type InputError struct {
	Errors validation.Errors
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidInput, e.Errors.Error())
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(errs validation.Errors) error {
	return &InputError{Errors: errs}
}

// conflict maps repository duplicates to ErrConflict and passes other errors through
func conflict(err error, what string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return fmt.Errorf("%s %w", what, ErrConflict)
	}
	return err
}
