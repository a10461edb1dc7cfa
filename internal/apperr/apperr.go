// Package apperr defines the error taxonomy shared by all services.
// Handlers map each Kind to a stable HTTP status; the code is a short
// snake_case identifier surfaced verbatim in JSON error bodies.
package apperr

import "errors"

// Kind classifies a business error.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindForbidden
	KindInvalidState
	KindInvalidArgument
	KindConflict
)

type Error struct {
	Kind    Kind
	Code    string // snake_case, e.g. "mission_introuvable"
	Details any
}

func (e *Error) Error() string { return e.Code }

func NotFound(code string) *Error        { return &Error{Kind: KindNotFound, Code: code} }
func Forbidden(code string) *Error       { return &Error{Kind: KindForbidden, Code: code} }
func InvalidState(code string) *Error    { return &Error{Kind: KindInvalidState, Code: code} }
func InvalidArgument(code string) *Error { return &Error{Kind: KindInvalidArgument, Code: code} }
func Conflict(code string) *Error        { return &Error{Kind: KindConflict, Code: code} }

// WithDetails attaches structured details (e.g. validation violations).
func (e *Error) WithDetails(d any) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Details: d}
}

// KindOf returns the Kind of err if it is (or wraps) an *Error,
// KindUnknown otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool { return KindOf(err) == k }
