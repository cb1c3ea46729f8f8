package core

import (
	"errors"

	"stockx-backend-go/internal/packages"
)

// Errors shared by the core services.
var (
	ErrProfileNotFound   = errors.New("user profile not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("action not permitted")
	ErrPackageRequired   = errors.New("please select a package for this user")
	ErrUnknownPackage    = packages.ErrUnknownPackage
	ErrNotApproved       = errors.New("account is not approved")
	ErrValidation        = errors.New("validation failed")
)

// ValidationError carries a user-facing message for rejected input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Unwrap lets callers match with errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error { return ErrValidation }

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotApprovedError explains why sign-in was refused for an existing account.
type NotApprovedError struct {
	Status  string
	Message string
}

func (e *NotApprovedError) Error() string { return e.Message }

func (e *NotApprovedError) Unwrap() error { return ErrNotApproved }

// ForbiddenError names the rule that blocked an admin action.
type ForbiddenError struct {
	Reason string
	Err    error
}

func (e *ForbiddenError) Error() string { return e.Reason }

// Unwrap matches both ErrForbidden and the underlying access rule.
func (e *ForbiddenError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrForbidden}
	}
	return []error{ErrForbidden, e.Err}
}

func forbidden(cause error) error {
	return &ForbiddenError{Reason: cause.Error(), Err: cause}
}
