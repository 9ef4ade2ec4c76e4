package services

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure for the request boundary.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindForbidden    Kind = "forbidden"
	KindValidation   Kind = "validation"
	KindExternal     Kind = "external_service"
	KindUnauthorized Kind = "unauthorized"
)

// Sentinels for errors.Is matching on kind alone.
var (
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrValidation   = &Error{Kind: KindValidation}
	ErrExternal     = &Error{Kind: KindExternal}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
)

// Error is a user-visible failure. Message is safe to show; Err keeps the
// cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrConflict)
// works for every conflict.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

func notFound(msg string) error { return newError(KindNotFound, msg, nil) }

func conflict(msg string) error { return newError(KindConflict, msg, nil) }

func forbidden(msg string) error { return newError(KindForbidden, msg, nil) }

func invalid(msg string) error { return newError(KindValidation, msg, nil) }

func unauthorized(msg string) error { return newError(KindUnauthorized, msg, nil) }

// KindOf returns the kind of err, or "" when it is not a service error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// MessageOf returns the user-facing message carried by err.
func MessageOf(err error) string {
	var se *Error
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return ""
}
