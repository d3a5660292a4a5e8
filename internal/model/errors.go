package model

import (
	"errors"
	"fmt"
)

// Error kinds for use with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrStorage    = errors.New("storage failure")
	ErrNotFound   = errors.New("record not found")
	ErrFormat     = errors.New("invalid document format")
)

// ValidationError reports a missing or malformed input field. The operation
// it guards is never attempted.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StorageError reports a failure of the underlying store, including an
// update or delete that addressed a nonexistent record.
type StorageError struct {
	Op     string // "add", "update", "delete", "query", ...
	Entity string // "student", "lesson", "settings", ...
	ID     int64  // zero when the operation is not addressed by id
	Err    error
}

// NewStorageError wraps err with the operation context.
func NewStorageError(op, entity string, id int64, err error) *StorageError {
	return &StorageError{Op: op, Entity: entity, ID: id, Err: err}
}

// NotFound returns a StorageError for a missing record.
func NotFound(op, entity string, id int64) *StorageError {
	return &StorageError{Op: op, Entity: entity, ID: id, Err: ErrNotFound}
}

func (e *StorageError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s %s %d: %v", e.Op, e.Entity, e.ID, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is matches ErrStorage in addition to whatever the wrapped error matches.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// FormatError reports a malformed backup or calendar document. Import aborts before
// touching stored data.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid document: %s: %v", e.Reason, e.Err)
	}
	return "invalid document: " + e.Reason
}

func (e *FormatError) Unwrap() error { return e.Err }

// Is matches ErrFormat.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}
