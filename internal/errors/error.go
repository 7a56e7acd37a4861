package errors

import (
	"errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig   Category = "config"
	CategoryNetwork  Category = "network"
	CategoryProtocol Category = "protocol"
	CategoryStorage  Category = "storage"
	CategoryCLI      Category = "cli"
)

// DuelError is a structured error with an explanation and a hint.
type DuelError struct {
	// Code is a unique error identifier (e.g., "E110").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *DuelError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *DuelError) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a fix suggestion to the error.
func (e *DuelError) WithSuggestion(s string) *DuelError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *DuelError) WithDetail(d string) *DuelError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *DuelError) Wrap(err error) *DuelError {
	e.Wrapped = err
	return e
}

// New creates a DuelError from a registered error code.
func New(code string) *DuelError {
	template, ok := registry[code]
	if !ok {
		return &DuelError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &DuelError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new DuelError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *DuelError {
	return &DuelError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a DuelError. An error that already
// is (or wraps) a DuelError is returned as that DuelError.
func FromError(err error, code string) *DuelError {
	if err == nil {
		return nil
	}
	var de *DuelError
	if errors.As(err, &de) {
		return de
	}
	return New(code).Wrap(err)
}
