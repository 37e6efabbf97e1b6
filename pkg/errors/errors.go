package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies an application error. The HTTP layer maps kinds to status codes.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation_error"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal_error"
	}
}

// AppError represents an application error
type AppError struct {
	Kind    Kind                `json:"code"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`
	Err     error               `json:"-"`
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

// Error constructors
func NotFound(message string, err error) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Message: message,
		Err:     err,
	}
}

// Validation reports rejected input keyed by the request field name
func Validation(fields map[string][]string, err error) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Message: "invalid request",
		Fields:  fields,
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Kind:    KindInternal,
		Message: "internal server error",
		Err:     err,
	}
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Kind:    KindUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

// KindOf returns the kind of the first AppError in err's chain.
// Errors that are not AppErrors are internal.
func KindOf(err error) Kind {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// As converts any error into an AppError, wrapping unknown errors as internal
func As(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
