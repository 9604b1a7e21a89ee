// Package apperr defines the error taxonomy shared by services, repositories
// and handlers. Callers classify failures with errors.Is against the
// sentinels; the message carried by the wrapping error is safe to surface.
package apperr

import "errors"

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
)

type appError struct {
	kind error
	msg  string
}

func (e *appError) Error() string { return e.msg }
func (e *appError) Unwrap() error { return e.kind }

// Validation reports malformed input. Recoverable; no state change occurred.
func Validation(msg string) error { return &appError{kind: ErrValidation, msg: msg} }

// NotFound reports a missing shift, transaction or account.
func NotFound(msg string) error { return &appError{kind: ErrNotFound, msg: msg} }

// Conflict reports a violation of the single-open-shift invariant. The
// caller should re-fetch state before retrying.
func Conflict(msg string) error { return &appError{kind: ErrConflict, msg: msg} }

// Forbidden reports a caller without the required role.
func Forbidden(msg string) error { return &appError{kind: ErrForbidden, msg: msg} }
