// Package apperrors holds the error taxonomy shared by the services and the
// HTTP layer. Services wrap these sentinels with context using fmt.Errorf("%w: ...")
// and the transport maps them to status codes with errors.Is.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput covers missing or malformed request fields (400).
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when a unique value is already taken (409).
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized covers bad credentials and missing, invalid or expired
	// tokens (401).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned for unknown users and files (404).
	ErrNotFound = errors.New("not found")

	// ErrTooManyAttempts is returned while a username is locked out after
	// repeated failed logins (429).
	ErrTooManyAttempts = errors.New("too many attempts")

	// ErrStorage is matched by every StorageError (500).
	ErrStorage = errors.New("storage error")
)

// StorageError wraps an I/O failure of a store or file backend together with
// the operation that produced it.
type StorageError struct {
	Op  string
	Err error
}

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}
