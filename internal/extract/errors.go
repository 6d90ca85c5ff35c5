package extract

import (
	"errors"
	"fmt"
)

// ErrorCode classifies why a strategy produced no value or why a scrape failed
type ErrorCode string

const (
	CodeStructuredDataAbsent        ErrorCode = "STRUCTURED_DATA_ABSENT"
	CodeStructuredDataShapeMismatch ErrorCode = "STRUCTURED_DATA_SHAPE_MISMATCH"
	CodeSelectorNotFound            ErrorCode = "SELECTOR_NOT_FOUND"
	CodeAuxAPIUnavailable           ErrorCode = "AUX_API_UNAVAILABLE"
	CodeSanityRejected              ErrorCode = "SANITY_REJECTED"
	CodeUnsupportedSite             ErrorCode = "UNSUPPORTED_SITE"
	CodeNavigationFailure           ErrorCode = "NAVIGATION_FAILURE"
	CodeTimeout                     ErrorCode = "TIMEOUT"
	CodeInternal                    ErrorCode = "INTERNAL"
)

// Sentinels for errors.Is. Matching is by code.
var (
	ErrUnsupportedSite = &Error{Code: CodeUnsupportedSite}
	ErrNavigation      = &Error{Code: CodeNavigationFailure}
	ErrTimeout         = &Error{Code: CodeTimeout}
)

// Error wraps a failure with its taxonomy code
type Error struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Details    map[string]interface{}
}

// Error implements the error interface
func (e *Error) Error() string {
	switch {
	case e.Message == "" && e.Underlying == nil:
		return string(e.Code)
	case e.Underlying != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Underlying
}

// Is checks if the error matches the target
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// NewError creates a new Error
func NewError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Underlying: err,
		Details:    make(map[string]interface{}),
	}
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// CodeOf returns the taxonomy code carried by err, or CodeInternal
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

func absent(code ErrorCode, format string, args ...interface{}) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...interface{}) error {
	return absent(CodeSelectorNotFound, format, args...)
}

func rejected(format string, args ...interface{}) error {
	return absent(CodeSanityRejected, format, args...)
}
