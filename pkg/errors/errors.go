// Package errors provides typed errors for the application
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType int

const (
	ErrorTypeValidation ErrorType = iota
	ErrorTypeNotFound
	ErrorTypeConflict
	ErrorTypeUnauthorized
	ErrorTypePermission
	ErrorTypeInternal
)

// String returns a short label usable as a metric or log value
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeValidation:
		return "validation"
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypeConflict:
		return "conflict"
	case ErrorTypeUnauthorized:
		return "unauthorized"
	case ErrorTypePermission:
		return "permission"
	default:
		return "internal"
	}
}

// Error is a classified error with an optional cause
type Error struct {
	kind  ErrorType
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %v", e.msg, e.cause)
}

// Unwrap exposes the cause to errors.Is / errors.As
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches another *Error of the same kind and message, so wrapped
// sentinels still compare equal to the bare sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.kind == e.kind && t.msg == e.msg
}

// Type returns the error classification
func (e *Error) Type() ErrorType {
	return e.kind
}

// Wrap returns a copy of e carrying cause
func (e *Error) Wrap(cause error) *Error {
	return &Error{kind: e.kind, msg: e.msg, cause: cause}
}

func newError(kind ErrorType, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// NewValidationError creates a new validation error
func NewValidationError(msg string) *Error {
	return newError(ErrorTypeValidation, msg)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(msg string) *Error {
	return newError(ErrorTypeNotFound, msg)
}

// NewConflictError creates a new conflict error
func NewConflictError(msg string) *Error {
	return newError(ErrorTypeConflict, msg)
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(msg string) *Error {
	return newError(ErrorTypeUnauthorized, msg)
}

// NewPermissionError creates a new permission error
func NewPermissionError(msg string) *Error {
	return newError(ErrorTypePermission, msg)
}

// NewInternalError creates a new internal error
func NewInternalError(msg string) *Error {
	return newError(ErrorTypeInternal, msg)
}

// TypeOf returns the classification of the first *Error in err's chain.
// Unclassified errors are reported as internal.
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.kind
	}
	return ErrorTypeInternal
}

func isType(err error, kind ErrorType) bool {
	var e *Error
	return stderrors.As(err, &e) && e.kind == kind
}

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	return isType(err, ErrorTypeValidation)
}

// IsNotFoundError checks if error is a not found error
func IsNotFoundError(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// IsConflictError checks if error is a conflict error
func IsConflictError(err error) bool {
	return isType(err, ErrorTypeConflict)
}

// IsUnauthorizedError checks if error is an unauthorized error
func IsUnauthorizedError(err error) bool {
	return isType(err, ErrorTypeUnauthorized)
}

// IsPermissionError checks if error is a permission error
func IsPermissionError(err error) bool {
	return isType(err, ErrorTypePermission)
}

// IsInternalError checks if error is an internal error
func IsInternalError(err error) bool {
	return isType(err, ErrorTypeInternal)
}
