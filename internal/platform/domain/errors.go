package domain

import (
	"errors"
	"fmt"
)

// Error codes carried by DomainError.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeValidation        = "VALIDATION_ERROR"
	CodeIllegalArgument   = "ILLEGAL_ARGUMENT"
	CodeIllegalState      = "ILLEGAL_STATE"
	CodeObjectUnavailable = "OBJECT_UNAVAILABLE"
	CodeForbidden         = "FORBIDDEN"
	CodeConflict          = "CONFLICT"
)

// DomainError is a typed business error that the transport layer maps to a status code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewNotFoundError reports a missing entity. Also used to hide entities the caller may not see.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: fmt.Sprintf("%s with id %s not found", entity, id)}
}

// NewNotFoundMessage reports a missing entity with a custom message.
func NewNotFoundMessage(msg string) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: msg}
}

func NewValidationError(msg string) *DomainError {
	return &DomainError{Code: CodeValidation, Message: msg}
}

func NewIllegalArgumentError(msg string) *DomainError {
	return &DomainError{Code: CodeIllegalArgument, Message: msg}
}

func NewIllegalStateError(msg string) *DomainError {
	return &DomainError{Code: CodeIllegalState, Message: msg}
}

// NewUnavailableError reports an item that cannot currently be booked.
func NewUnavailableError(msg string) *DomainError {
	return &DomainError{Code: CodeObjectUnavailable, Message: msg}
}

func NewForbiddenError(msg string) *DomainError {
	return &DomainError{Code: CodeForbidden, Message: msg}
}

func NewConflictError(msg string) *DomainError {
	return &DomainError{Code: CodeConflict, Message: msg}
}

// CodeOf returns the code of the first DomainError in err's chain, or "" if none.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsNotFound reports whether err is a NOT_FOUND domain error.
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}
