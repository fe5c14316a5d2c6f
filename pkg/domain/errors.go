package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	// Fields maps offending input fields to a short reason (validation only)
	Fields map[string]string
	Err    error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeMalformedFilter  = "MALFORMED_FILTER"
	ErrCodeNotAuthenticated = "NOT_AUTHENTICATED"
	ErrCodeSessionExpired   = "SESSION_EXPIRED"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// Error constructors

// NewValidationError creates a new validation error
func NewValidationError(msg string) error {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: msg,
	}
}

// NewFieldValidationError creates a validation error listing the offending fields
func NewFieldValidationError(msg string, fields map[string]string) error {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: msg,
		Fields:  fields,
	}
}

// NewMalformedFilterError creates an error for filter input that could not be parsed
func NewMalformedFilterError(err error) error {
	return &DomainError{
		Code:    ErrCodeMalformedFilter,
		Message: "filters must be a JSON object of field -> {operator: value}",
		Err:     err,
	}
}

// NewNotAuthenticatedError creates a new not authenticated error
func NewNotAuthenticatedError(err error) error {
	return &DomainError{
		Code:    ErrCodeNotAuthenticated,
		Message: "Not authenticated",
		Err:     err,
	}
}

// NewSessionExpiredError creates a new session expired error
func NewSessionExpiredError(err error) error {
	return &DomainError{
		Code:    ErrCodeSessionExpired,
		Message: "Session expired, please log in again",
		Err:     err,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) error {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(msg string) error {
	return &DomainError{
		Code:    ErrCodeConflict,
		Message: msg,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(err error) error {
	return &DomainError{
		Code:    ErrCodeInternal,
		Message: "An internal error occurred",
		Err:     err,
	}
}

// Helper functions to check error types

// CodeOf returns the domain code carried by err, or "" for foreign errors
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool {
	return CodeOf(err) == ErrCodeValidation
}

// IsMalformedFilter checks if the error is a malformed filter error
func IsMalformedFilter(err error) bool {
	return CodeOf(err) == ErrCodeMalformedFilter
}

// IsNotAuthenticated checks if the error is a not authenticated error
func IsNotAuthenticated(err error) bool {
	return CodeOf(err) == ErrCodeNotAuthenticated
}

// IsSessionExpired checks if the error is a session expired error
func IsSessionExpired(err error) bool {
	return CodeOf(err) == ErrCodeSessionExpired
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

// IsConflict checks if the error is a conflict error
func IsConflict(err error) bool {
	return CodeOf(err) == ErrCodeConflict
}

// IsInternal checks if the error is an internal error
func IsInternal(err error) bool {
	return CodeOf(err) == ErrCodeInternal
}
