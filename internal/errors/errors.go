// Package errors defines the domain error taxonomy shared by services
// and handlers. Handlers map DomainError values onto HTTP responses.
package errors

import "fmt"

type DomainError struct {
	Code    string
	Message string
	Status  int
}

func (e *DomainError) Error() string { return e.Message }

var (
	ErrUnauthenticated = &DomainError{
		Code:    "UNAUTHENTICATED",
		Message: "missing or invalid credentials",
		Status:  401,
	}
	ErrForbidden = &DomainError{
		Code:    "FORBIDDEN",
		Message: "operation not permitted",
		Status:  403,
	}
	ErrNotFound = &DomainError{
		Code:    "NOT_FOUND",
		Message: "resource not found",
		Status:  404,
	}
	ErrInvalidTransition = &DomainError{
		Code:    "INVALID_TRANSITION",
		Message: "status transition not allowed",
		Status:  409,
	}
	ErrInternal = &DomainError{
		Code:    "INTERNAL",
		Message: "internal server error",
		Status:  500,
	}
)

// Validation builds a 400 error carrying a caller-facing message.
func Validation(format string, args ...interface{}) *DomainError {
	return &DomainError{
		Code:    "VALIDATION",
		Message: fmt.Sprintf(format, args...),
		Status:  400,
	}
}
