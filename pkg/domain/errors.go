package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a DomainError for transport mapping.
type ErrorCode string

const (
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeValidation   ErrorCode = "VALIDATION"
	CodeUnknownState ErrorCode = "UNKNOWN_STATE"
	CodeConflict     ErrorCode = "CONFLICT"
	CodeInternal     ErrorCode = "INTERNAL"
)

// DomainError is the error type raised by services for expected failures.
type DomainError struct {
	Code    ErrorCode
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewNotFoundError reports a missing entity. Visibility violations use it too.
func NewNotFoundError(entity string, id any) *DomainError {
	return &DomainError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with id %v not found", entity, id),
	}
}

// NewValidationError reports invalid input or a disallowed transition.
func NewValidationError(message string) *DomainError {
	return &DomainError{Code: CodeValidation, Message: message}
}

// NewUnknownStateError reports a state filter token outside the known set.
func NewUnknownStateError(token string) *DomainError {
	return &DomainError{Code: CodeUnknownState, Message: "Unknown state: " + token}
}

// NewConflictError reports a concurrent modification.
func NewConflictError(message string) *DomainError {
	return &DomainError{Code: CodeConflict, Message: message}
}

// CodeOf returns the code of the first DomainError in err's chain, or CodeInternal.
func CodeOf(err error) ErrorCode {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

func IsNotFound(err error) bool     { return CodeOf(err) == CodeNotFound }
func IsValidation(err error) bool   { return CodeOf(err) == CodeValidation }
func IsUnknownState(err error) bool { return CodeOf(err) == CodeUnknownState }
func IsConflict(err error) bool     { return CodeOf(err) == CodeConflict }
