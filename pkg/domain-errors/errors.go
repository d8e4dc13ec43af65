// Package domainerrors provides coded errors for the auth core. Components
// return these instead of raising ad hoc errors; the orchestrator maps codes
// onto the public AuthResult error kinds and the transport layer maps them
// onto HTTP statuses.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies the class of a domain error. Codes are stable API: the
// mobile/UI caller switches on them for display, so renaming one is a
// breaking change.
type Code string

const (
	CodeValidation            Code = "validation"
	CodeInvalidCredentials    Code = "invalid_credentials"
	CodeUserNotConfirmed      Code = "user_not_confirmed"
	CodeProviderUnreachable   Code = "provider_unreachable"
	CodeProviderMisconfigured Code = "provider_misconfigured"
	CodeServerUnreachable     Code = "server_unreachable"
	CodeAmbiguousMatch        Code = "ambiguous_match"
	CodeStorageCorrupt        Code = "storage_corrupt"
	CodeAlreadyInProgress     Code = "already_in_progress"
	CodeInternal              Code = "internal"
)

// Error is a coded domain error. It optionally wraps a cause so callers can
// still reach sentinel errors with errors.Is.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error without a cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. A nil err returns
// nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// HasCode is an alias of Is kept for call-site readability in conditionals.
func HasCode(err error, code Code) bool {
	return Is(err, code)
}

// CodeOf extracts the code from err, walking the wrap chain. Uncoded errors
// report CodeInternal; nil reports the zero Code.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
