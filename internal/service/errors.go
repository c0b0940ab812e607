// Package service holds the business rules of the administration API:
// validation, authorization policy and the transactional write paths.
// Handlers translate the *Error values returned here into HTTP responses.
package service

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure.  Each kind maps to one HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindInUse
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInUse:
		return "in_use"
	}
	return "internal"
}

// Error is a failure with a message safe to show to the client.  Err keeps
// the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err, KindInternal for anything that is not an *Error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func validationErr(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }
func forbiddenErr(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }
func notFoundErr(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }
func conflictErr(msg string) *Error { return &Error{Kind: KindConflict, Message: msg} }
func unauthenticatedErr(msg string) *Error { return &Error{Kind: KindUnauthenticated, Message: msg} }

// internalErr wraps an unexpected failure; the message never reaches clients.
func internalErr(op string, err error) *Error {
	return &Error{Kind: KindInternal, Message: op, Err: err}
}

// Messages shared by several operations.
const (
	MsgMissingFields          = "firstName, lastName, email, phone and role are required"
	MsgInvalidEmail           = "invalid email"
	MsgSpecializationRequired = "at least one specialization (sport) is required for a coach"
	MsgQualificationRequired  = "at least one qualification is required for a coach"
	MsgEmailExists            = "email already exists"
	MsgUserNotFound           = "user not found"
	MsgLastSuperAdmin         = "cannot remove the last active SUPER_ADMIN"
	MsgInvalidCredentials     = "invalid credentials"
	MsgAccountDisabled        = "account is disabled"
	MsgInvalidResetToken      = "invalid or expired token"
	MsgForgotPasswordGeneric  = "if an account exists for that email, a reset link has been sent"
	MsgPasswordTooShort       = "password must be at least 8 characters"
)

// MinPasswordLength applies to every password a user chooses.
const MinPasswordLength = 8
