// Package apperror defines the typed failures that cross layer boundaries.
//
// Every failure a client can cause has its own sentinel, so handlers can map
// each one to a distinct response category with errors.Is. Anything that is
// not an *AppError is treated as a server fault.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("Validation Error")
	ErrConflict      = errors.New("conflict")
	ErrForbidden     = errors.New("forbidden")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrDuplicateLike = errors.New("duplicate like")
	ErrHashing       = errors.New("hashing failure")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Cause   error  // Optional: lower-level error, kept for logs only
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is/As.
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, field, value string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s with %s %s already exists", resource, field, value),
		Field:   field,
	}
}

// Forbidden returns an AppError indicating the caller lacks the required role.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized covers both "no principal where one is required" and
// "principal is not the owner". The message must not describe the resource.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// DuplicateLike reports a uniqueness violation on the (user, post) pair.
func DuplicateLike(userID, postID int64) *AppError {
	return &AppError{
		Err:     ErrDuplicateLike,
		Message: fmt.Sprintf("user %d already liked post %d", userID, postID),
	}
}

// Hashing wraps an internal password-hashing failure. It is a server fault:
// handlers never show the cause to the client.
func Hashing(cause error) *AppError {
	return &AppError{
		Err:     ErrHashing,
		Message: "password hashing failed",
		Cause:   cause,
	}
}
