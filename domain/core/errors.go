package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrDatasetNotFound = fmt.Errorf("%w: dataset", ErrNotFound)
	ErrColumnNotFound  = fmt.Errorf("%w: column", ErrNotFound)

	// Precondition errors
	ErrPrecondition               = errors.New("precondition violated")
	ErrEmptyDataset               = fmt.Errorf("%w: dataset has no rows", ErrPrecondition)
	ErrNotNumeric                 = fmt.Errorf("%w: column is not numeric", ErrPrecondition)
	ErrInsufficientNumericColumns = fmt.Errorf("%w: at least 2 numeric columns are required", ErrPrecondition)
)

// Error constructors with context
func NewColumnNotFoundError(column string) error {
	return fmt.Errorf("%w %q", ErrColumnNotFound, column)
}

func NewNotNumericError(column string) error {
	return fmt.Errorf("%w: %q", ErrNotNumeric, column)
}

func NewDatasetNotFoundError(id ID) error {
	return fmt.Errorf("%w with id %s", ErrDatasetNotFound, id)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsPreconditionError(err error) bool {
	return errors.Is(err, ErrPrecondition)
}
