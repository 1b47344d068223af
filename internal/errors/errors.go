// Package errors provides shared error types for the registry search service.
package errors

import (
	"errors"
	"fmt"
)

// NotFoundError indicates an entity was not found in the registry.
type NotFoundError struct {
	EntityType string // "company", "roles"
	Identifier string // org number or request path
}

func (e *NotFoundError) Error() string {
	if e.EntityType != "" {
		return fmt.Sprintf("%s not found in registry: %s", e.EntityType, e.Identifier)
	}
	return fmt.Sprintf("not found in registry: %s", e.Identifier)
}

// NewNotFoundError creates a NotFoundError for a company lookup.
func NewNotFoundError(identifier string) *NotFoundError {
	return &NotFoundError{
		EntityType: "company",
		Identifier: identifier,
	}
}

// ValidationError indicates invalid input parameters.
type ValidationError struct {
	Field   string // field name that failed validation
	Value   string // the invalid value (may be empty)
	Message string // human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("validation failed for %s=%q: %s", e.Field, e.Value, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// UpstreamError is a failure at the registry HTTP boundary. StatusCode is
// zero when no response was received.
type UpstreamError struct {
	StatusCode int
	Path       string
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error %d: %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("API request failed: %s", msg)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError creates an UpstreamError for a non-success response.
func NewUpstreamError(statusCode int, path, message string) *UpstreamError {
	return &UpstreamError{
		StatusCode: statusCode,
		Path:       path,
		Message:    message,
	}
}

// IsNotFound returns true if err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation returns true if err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsUpstream returns true if err is or wraps an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// StatusCode returns the upstream HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.StatusCode
	}
	return 0
}
