// Package faults is the error taxonomy shared by Kanvas services.
//
// Module sentinels are built with New so that errors.Is matches both the
// module-specific sentinel and its kind.
package faults

import "errors"

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrExpired         = errors.New("expired")
	ErrInvalid         = errors.New("invalid request")
	ErrUnavailable     = errors.New("dependency unavailable")
)

type Error struct {
	kind error
	msg  string
}

// New returns a sentinel carrying msg that also matches kind.
func New(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.kind
}

// Kind returns the taxonomy sentinel err belongs to, or nil.
func Kind(err error) error {
	for _, kind := range []error{
		ErrUnauthenticated,
		ErrForbidden,
		ErrNotFound,
		ErrConflict,
		ErrExpired,
		ErrInvalid,
		ErrUnavailable,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
