// Package apperrors defines the engine's error taxonomy and its HTTP mapping.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindBusinessRule
	KindNotFound
	KindConflict
	KindIntegrity
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation marks malformed or out-of-range input, caught before any write.
func Validation(format string, args ...interface{}) *Error {
	return newf(KindValidation, format, args...)
}

// BusinessRule marks input that is well-formed but violates a domain rule.
func BusinessRule(format string, args ...interface{}) *Error {
	return newf(KindBusinessRule, format, args...)
}

// NotFound marks a referenced entity absent in tenant scope.
func NotFound(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

// Conflict marks duplicate links and primary-link contention.
func Conflict(format string, args ...interface{}) *Error {
	return newf(KindConflict, format, args...)
}

// Integrity marks a partially failed cascade or propagation. Fatal, never
// silently swallowed.
func Integrity(message string, err error) *Error {
	return &Error{Kind: KindIntegrity, Message: message, Err: err}
}

// KindOf extracts the taxonomy kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// HTTPStatus maps an error to the status code its category conveys.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindBusinessRule:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
