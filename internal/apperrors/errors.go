package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrAccountNotFound indicates that a referenced account does not exist.
var ErrAccountNotFound = fmt.Errorf("account: %w", ErrNotFound)

// ErrCategoryNotFound indicates that a referenced category does not exist.
var ErrCategoryNotFound = fmt.Errorf("category: %w", ErrNotFound)

// ErrAccountInactive indicates a write was attempted against a deactivated account.
var ErrAccountInactive = errors.New("account is inactive")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates a concurrency conflict detected by the storage layer
// (serialization failure, deadlock, or a row that changed between read and write).
// Mutations hitting this are retried up to a fixed bound before it is surfaced.
var ErrConflict = errors.New("concurrency conflict")

// AppError carries a status code alongside a message and the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError wrapping an underlying cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that unwraps to ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
