// Package apperrors defines the error classes shared by repositories, services and handlers
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed input. It is returned before any transaction is opened.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a missing account or session.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists marks an insert that collided with an existing primary key.
	ErrAlreadyExists = errors.New("already exists")
	// ErrStorage marks a failed transaction, lock timeout or driver error. Callers may retry.
	ErrStorage = errors.New("storage error")
	// ErrInvariantViolation marks a programming fault. It is used as a panic value.
	ErrInvariantViolation = errors.New("invariant violation")
)

// Validation returns an error wrapping ErrValidation with the provided message
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound returns an error wrapping ErrNotFound for the named entity
func NotFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// StorageError wraps a driver error together with the operation that produced it
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is reports StorageError as ErrStorage so callers can match with errors.Is
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// Storage wraps err as a StorageError. A nil err yields nil.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// Invariant builds the panic value used when an invariant check fails
func Invariant(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(format, args...))
}
