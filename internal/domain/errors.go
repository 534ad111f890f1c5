package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure
type Kind string

const (
	KindNotAuthenticated   Kind = "not_authenticated"   // No acting user
	KindInvalidInput       Kind = "invalid_input"       // Malformed or out-of-range field
	KindNotFound           Kind = "not_found"           // Missing or not owned by the acting user
	KindDuplicateEmail     Kind = "duplicate_email"     // Email already registered
	KindInvalidCredentials Kind = "invalid_credentials" // Login mismatch
)

// Error is a domain failure with a human-readable message
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is
var (
	ErrNotAuthenticated   = &Error{Kind: KindNotAuthenticated, Message: "user not logged in"}
	ErrInvalidInput       = &Error{Kind: KindInvalidInput, Message: "invalid input"}
	ErrNotFound           = &Error{Kind: KindNotFound, Message: "not found"}
	ErrDuplicateEmail     = &Error{Kind: KindDuplicateEmail, Message: "email already registered"}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Message: "invalid email or password"}
)

// Invalid builds an InvalidInput error
func Invalid(format string, args ...any) error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a NotFound error
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a domain error, or "" for anything else
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
