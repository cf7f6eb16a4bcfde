package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no version matches.
var ErrNotFound = errors.New("rules version not found")

// ErrUnknownDriver is returned for drivers other than "sqlite" and "sqlite3".
var ErrUnknownDriver = errors.New("unknown sqlite driver")

// StorageError wraps a database failure with the operation that caused it.
type StorageError struct {
	Driver    string
	Operation string
	Cause     error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("rules store error [driver=%s, operation=%s]: %v", e.Driver, e.Operation, e.Cause)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

func newStorageError(driver, op string, cause error) *StorageError {
	return &StorageError{Driver: driver, Operation: op, Cause: cause}
}
