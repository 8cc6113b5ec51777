// internal/domain/models/errors.go
package models

import (
	"errors"
	"fmt"
)

// AuthorizationError is returned when the acting user lacks the role an
// operation requires (a non-owner attempting an owner-only change).
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

// InvariantViolation is returned when an operation would leave a group
// without any owner.
type InvariantViolation struct {
	Message string
}

func (e *InvariantViolation) Error() string { return e.Message }

// DomainError is returned when a user account operation breaks the
// supervisor/self-deletion rule.
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string { return e.Message }

func errAuthorization(format string, args ...any) *AuthorizationError {
	return &AuthorizationError{Message: fmt.Sprintf(format, args...)}
}

func errInvariant(format string, args ...any) *InvariantViolation {
	return &InvariantViolation{Message: fmt.Sprintf(format, args...)}
}

func errDomain(format string, args ...any) *DomainError {
	return &DomainError{Message: fmt.Sprintf(format, args...)}
}

// IsAuthorization reports whether err is (or wraps) an AuthorizationError.
func IsAuthorization(err error) bool {
	var e *AuthorizationError
	return errors.As(err, &e)
}

// IsInvariant reports whether err is (or wraps) an InvariantViolation.
func IsInvariant(err error) bool {
	var e *InvariantViolation
	return errors.As(err, &e)
}

// IsDomain reports whether err is (or wraps) a DomainError.
func IsDomain(err error) bool {
	var e *DomainError
	return errors.As(err, &e)
}
