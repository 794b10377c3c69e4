package reminder

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("reminder not found")
	ErrDuplicateID = errors.New("reminder id already exists")
	// ErrImmutable is returned when an update touches a field fixed at creation.
	ErrImmutable = errors.New("reminder field is immutable")
	// ErrReactivate is returned when an update would re-activate a cancelled reminder.
	ErrReactivate = errors.New("cancelled reminder cannot be re-activated")
)

// ValidationError reports bad caller input. It is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StorageError wraps a failed or timed-out persistence operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
