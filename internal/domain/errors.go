package domain

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindDuplicateRating
	KindAccessDenied
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicateRating:
		return "duplicate_rating"
	case KindAccessDenied:
		return "access_denied"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error carries one of the expected failure kinds. Err holds the underlying cause, if any,
// and is never shown to callers for KindInternal.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrDuplicateRating = &Error{Kind: KindDuplicateRating, Msg: "you have already rated this store"}
	ErrAccessDenied    = &Error{Kind: KindAccessDenied, Msg: "access denied"}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrInternal        = &Error{Kind: KindInternal}
)

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(what string) error {
	return &Error{Kind: KindNotFound, Msg: what + " not found"}
}

func DuplicateRating(cause error) error {
	return &Error{Kind: KindDuplicateRating, Msg: ErrDuplicateRating.Msg, Err: cause}
}

func AccessDenied() error { return &Error{Kind: KindAccessDenied, Msg: ErrAccessDenied.Msg} }

// Internal wraps an unexpected collaborator failure. Already-classified errors pass through.
func Internal(op string, err error) error {
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Kind: KindInternal, Msg: op, Err: err}
}

// KindOf classifies err; anything that is not a *Error is internal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
