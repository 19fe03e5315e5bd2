package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error. Transport adapters map kinds to status codes.
type Kind string

const (
	KindValidation    Kind = "VALIDATION"
	KindAuthorization Kind = "AUTHORIZATION"
	KindState         Kind = "STATE"
	KindConflict      Kind = "CONFLICT"
	KindNotFound      Kind = "NOT_FOUND"
	KindSettlement    Kind = "SETTLEMENT"
)

// Error is a rejected operation with a machine-readable kind and a
// human-readable reason.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a domain error of the same kind, so callers can
// write errors.Is(err, domain.ErrConflict).
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

var (
	ErrValidation    = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrAuthorization = &Error{Kind: KindAuthorization, Message: "not authorized"}
	ErrState         = &Error{Kind: KindState, Message: "operation not allowed in current state"}
	ErrConflict      = &Error{Kind: KindConflict, Message: "conflict"}
	ErrNotFound      = &Error{Kind: KindNotFound, Message: "not found"}
	ErrSettlement    = &Error{Kind: KindSettlement, Message: "settlement failed"}
)

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) *Error {
	return newf(KindValidation, format, args...)
}

func Authorizationf(format string, args ...any) *Error {
	return newf(KindAuthorization, format, args...)
}

func Statef(format string, args ...any) *Error {
	return newf(KindState, format, args...)
}

func Conflictf(format string, args ...any) *Error {
	return newf(KindConflict, format, args...)
}

func NotFoundf(format string, args ...any) *Error {
	return newf(KindNotFound, format, args...)
}

// SettlementFailed wraps a collaborator failure that exhausted its retry budget.
func SettlementFailed(key string, cause error) *Error {
	return &Error{Kind: KindSettlement, Message: fmt.Sprintf("settlement %s failed", key), Cause: cause}
}

// KindOf returns the kind of the first domain error in err's chain, or the
// empty kind for infrastructure errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
