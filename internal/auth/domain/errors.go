package domain

import (
	"errors"
	"fmt"
)

// Kind classifies every error the auth service reports to callers.
type Kind string

const (
	KindValidation          Kind = "validation_error"
	KindDuplicateIdentity   Kind = "duplicate_identity"
	KindAuthentication      Kind = "authentication_error"
	KindUnauthenticated     Kind = "unauthenticated"
	KindForbidden           Kind = "forbidden"
	KindMFAInvalidCode      Kind = "mfa_invalid_code"
	KindMFAExpired          Kind = "mfa_expired"
	KindMFAAttemptsExceeded Kind = "mfa_attempts_exceeded"
	KindTokenInvalid        Kind = "token_invalid"
	KindTokenExpired        Kind = "token_expired"
	KindNotFound            Kind = "not_found"
	KindServer              Kind = "server_error"
)

// Error is a classified failure. Message is safe to show to the caller, Err
// is the internal cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Field != "" {
		msg += " (" + e.Field + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrForbidden)
// holds regardless of message or field.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrAuthentication      = &Error{Kind: KindAuthentication, Message: "invalid credentials"}
	ErrUnauthenticated     = &Error{Kind: KindUnauthenticated, Message: "authentication required"}
	ErrForbidden           = &Error{Kind: KindForbidden, Message: "insufficient role"}
	ErrMFAInvalidCode      = &Error{Kind: KindMFAInvalidCode, Message: "invalid verification code"}
	ErrMFAExpired          = &Error{Kind: KindMFAExpired, Message: "verification code expired or not requested"}
	ErrMFAAttemptsExceeded = &Error{Kind: KindMFAAttemptsExceeded, Message: "too many attempts, log in again"}
	ErrTokenInvalid        = &Error{Kind: KindTokenInvalid, Message: "invalid token"}
	ErrTokenExpired        = &Error{Kind: KindTokenExpired, Message: "token expired"}
	ErrNotFound            = &Error{Kind: KindNotFound, Message: "not found"}
)

func NewValidationError(field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

func NewDuplicateIdentityError(field string, cause error) *Error {
	return &Error{Kind: KindDuplicateIdentity, Field: field, Message: field + " already registered", Err: cause}
}

// Internal wraps a store or crypto fault. The cause never reaches the caller.
func Internal(cause error) *Error {
	return &Error{Kind: KindServer, Message: "internal server error", Err: cause}
}

// Wrap returns a copy of sentinel carrying cause.
func Wrap(sentinel *Error, cause error) *Error {
	e := *sentinel
	e.Err = cause
	return &e
}

// KindOf classifies err; unclassified errors are server faults.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServer
}
