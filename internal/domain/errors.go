package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies failures surfaced to tool callers.
type ErrorCode string

const (
	CodeBackend    ErrorCode = "backend_error"
	CodeResolution ErrorCode = "resolution_error"
	CodeValidation ErrorCode = "validation_error"
	CodeNotFound   ErrorCode = "not_found"
	CodeStorage    ErrorCode = "storage_error"
	CodeInternal   ErrorCode = "internal_error"
)

// Error is the tagged error carried between layers. Status is the backend
// HTTP status when one is known.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Status  int       `json:"status,omitempty"`
	Err     error     `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds an *Error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap tags err with code and a message prefix.
func Wrap(code ErrorCode, err error, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// IsNotFound reports whether err carries CodeNotFound.
func IsNotFound(err error) bool { return CodeOf(err) == CodeNotFound }
