package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers that map failures to protocol responses.
type Kind string

const (
	KindNotFound          Kind = "NOT_FOUND"
	KindForbidden         Kind = "FORBIDDEN"
	KindInvalidState      Kind = "INVALID_STATE"
	KindInsufficientSeats Kind = "INSUFFICIENT_SEATS"
	KindDuplicate         Kind = "DUPLICATE"
	KindEditWindowExpired Kind = "EDIT_WINDOW_EXPIRED"
	KindBelowBookedSeats  Kind = "BELOW_BOOKED_SEATS"
	KindInvalidInput      Kind = "INVALID_INPUT"
	KindInternal          Kind = "INTERNAL"
)

// String returns the string representation of the Kind.
func (kind Kind) String() string {
	return string(kind)
}

// Error is a tagged domain error. Two errors match under errors.Is when their codes are equal,
// so a sentinel keeps matching after its message has been specialised with WithMsg or wrapped.
type Error struct {
	Kind Kind
	Code string
	Msg  string
	Err  error
}

// New constructs a sentinel error.
func New(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMsg returns a copy of e with a more specific message.
func (e *Error) WithMsg(format string, args ...any) *Error {
	cp := *e
	cp.Msg = fmt.Sprintf(format, args...)
	return &cp
}

// Wrap returns a copy of e that carries cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

var (
	ErrInvalidInput = New(KindInvalidInput, "INVALID_INPUT", "invalid input")
	ErrForbidden    = New(KindForbidden, "FORBIDDEN", "action not allowed for this actor")
	ErrInternal     = New(KindInternal, "INTERNAL", "internal error")
)

// Invalid builds an InvalidInput error with a specific message.
func Invalid(format string, args ...any) *Error {
	return ErrInvalidInput.WithMsg(format, args...)
}

// KindOf extracts the Kind of err; untagged errors are KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf extracts the code of err, or the internal code for untagged errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrInternal.Code
}
