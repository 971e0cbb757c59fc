package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUserAborted is returned when the user declines a confirmation or cancels a prompt.
// It is not an error for the user: hosts return silently.
var ErrUserAborted = errors.New("aborted by user")

// FieldError is used to indicate an error with a specific form field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return fmt.Sprintf("%s: %s", err.Fields[0].Field, err.Fields[0].Error)
		}
		return "validation failed"
	}
	return err.Err.Error()
}

// FieldMap returns the field errors keyed by field name. The first error of a field wins.
func (err ValidationError) FieldMap() map[string]string {
	m := make(map[string]string, len(err.Fields))
	for _, f := range err.Fields {
		if _, ok := m[f.Field]; !ok {
			m[f.Field] = f.Error
		}
	}
	return m
}

// DomainError is a global error reported by the server, e.g. "record not found".
type DomainError struct {
	Message string
}

func NewDomainError(msg string) error {
	return &DomainError{Message: msg}
}

func (err DomainError) Error() string {
	return err.Message
}

// TransportError describes a request that did not produce a well-formed response envelope:
// network failure, timeout, HTTP error status, non-JSON body or a malformed payload.
type TransportError struct {
	Endpoint   string
	RequestID  string
	StatusCode int // 0 when no response was received
	Body       string
	Err        error
}

func NewTransportError(endpoint string, err error) *TransportError {
	return &TransportError{Endpoint: endpoint, Err: err}
}

func (err TransportError) Error() string {
	msg := "request to " + err.Endpoint + " failed"
	if err.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", err.StatusCode)
	}
	if err.Err != nil {
		msg += ": " + err.Err.Error()
	}
	return msg
}

// Unwrap exposes the raw failure without making it the errors.Cause of a wrapped TransportError.
func (err TransportError) Unwrap() error { return err.Err }

// IsTransport reports whether the cause of err is a *TransportError.
func IsTransport(err error) bool {
	_, ok := errors.Cause(err).(*TransportError)
	return ok
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
