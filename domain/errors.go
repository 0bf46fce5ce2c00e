package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "VALIDATION_ERROR"
	ErrCodeMalformedID  ErrorCode = "MALFORMED_ID"
	ErrCodeUnavailable  ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
	// Fields holds per-field messages for validation failures.
	Fields map[string]string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
		}
		return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewValidationError builds a validation failure carrying per-field messages.
func NewValidationError(fields map[string]string) *Error {
	return &Error{
		Code:    ErrCodeInvalid,
		Message: "Validation failed",
		Fields:  fields,
	}
}

// Unavailable marks a persistence failure as StoreUnavailable.
func Unavailable(err error) *Error {
	return WrapError(ErrCodeUnavailable, "task store unavailable", err)
}

// Common domain errors.
var (
	ErrTaskNotFound    = NewError(ErrCodeNotFound, "Task not found")
	ErrMalformedTaskID = NewError(ErrCodeMalformedID, "Invalid task ID format")
	ErrUnauthorized    = NewError(ErrCodeUnauthorized, "Missing or invalid bearer token")
	ErrInvalidPayload  = NewError(ErrCodeInvalid, "invalid payload")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// FieldErrors returns the per-field messages carried by err, if any.
func FieldErrors(err error) map[string]string {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Fields
	}
	return nil
}
