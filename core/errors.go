package core

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrKeyNotFound        = errors.New("key not found")
	ErrStorageUnavailable = errors.New("storage is not available")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	if len(err.Fields) > 0 {
		return fmt.Sprintf("%s: %s", err.Fields[0].Field, err.Fields[0].Error)
	}
	return "validation failed"
}

func (err ValidationError) Unwrap() error { return err.Err }

// IsValidationError reports whether err (or any error it wraps) is a *ValidationError.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// StorageError reports a failed write/read on the persistence medium.
// The in-memory state that triggered the write is kept.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func NewStorageError(op, key string, err error) error {
	return &StorageError{Op: op, Key: key, Err: err}
}

func (err StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", err.Op, err.Key, err.Err)
}

func (err StorageError) Unwrap() error { return err.Err }

// IsStorageError reports whether err is a storage failure, including ErrStorageUnavailable.
func IsStorageError(err error) bool {
	var sErr *StorageError
	return errors.As(err, &sErr) || errors.Is(err, ErrStorageUnavailable)
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
