package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine-readable classification of a failed action.
// Handlers map kinds to HTTP status codes; clients key off the kind.
type ErrorKind string

const (
	KindNotFound             ErrorKind = "not_found"
	KindForbidden            ErrorKind = "forbidden"
	KindInsufficientResource ErrorKind = "insufficient_resource"
	KindInsufficientFunds    ErrorKind = "insufficient_funds"
	KindInvalidInput         ErrorKind = "invalid_input"
	KindRateLimited          ErrorKind = "rate_limited"
	KindAlreadyClaimed       ErrorKind = "already_claimed"
	KindConflict             ErrorKind = "conflict"
	KindUnavailable          ErrorKind = "unavailable"
)

// Error is the domain error type carried through the economy engine.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is makes errors.Is match any two domain errors of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

func ErrNotFound(msg string) *Error  { return &Error{Kind: KindNotFound, Message: msg} }
func ErrForbidden(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }

func ErrInsufficientResource(msg string) *Error {
	return &Error{Kind: KindInsufficientResource, Message: msg}
}

func ErrInsufficientFunds(msg string) *Error {
	return &Error{Kind: KindInsufficientFunds, Message: msg}
}

func ErrInvalidInput(msg string) *Error   { return &Error{Kind: KindInvalidInput, Message: msg} }
func ErrRateLimited(msg string) *Error    { return &Error{Kind: KindRateLimited, Message: msg} }
func ErrAlreadyClaimed(msg string) *Error { return &Error{Kind: KindAlreadyClaimed, Message: msg} }
func ErrConflict(msg string) *Error       { return &Error{Kind: KindConflict, Message: msg} }

func ErrUnavailable(msg string, cause error) *Error {
	return &Error{Kind: KindUnavailable, Message: msg, Cause: cause}
}

// KindOf extracts the kind from an error chain, or "" for non-domain errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
