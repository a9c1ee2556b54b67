package domain

import (
	"errors"
	"fmt"
)

// Error codes. Handlers map them to HTTP statuses; the backend client maps
// backend statuses onto them.
const (
	EINVALID      = "invalid"      // malformed input
	EUNAUTHORIZED = "unauthorized" // no session, or the backend rejected its token
	EFORBIDDEN    = "forbidden"
	ENOTFOUND     = "not_found"
	ECONFLICT     = "conflict" // e.g. duplicate email
	ERATELIMIT    = "rate_limit"
	EUNAVAILABLE  = "unavailable" // backend unreachable or failing
	EBUSY         = "busy"        // refused while another action is in flight
	EINTERNAL     = "internal"
)

// Error is an application error. Message is safe to show to a user unless
// Code is EINTERNAL.
type Error struct {
	Code    string
	Op      string // e.g. "client.create"
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code, op, message string, err error) *Error {
	return &Error{Code: code, Op: op, Message: message, Err: err}
}

// NotFound reports a missing record.
func NotFound(op, resource, id string) *Error {
	return newError(ENOTFOUND, op, fmt.Sprintf("%s %q não encontrado", resource, id), nil)
}

func Invalid(op, message string) *Error {
	return newError(EINVALID, op, message, nil)
}

func Unauthorized(op, message string) *Error {
	return newError(EUNAUTHORIZED, op, message, nil)
}

func Conflict(op, message string) *Error {
	return newError(ECONFLICT, op, message, nil)
}

// Unavailable reports a failing upstream. An empty message lets callers
// fall back to their own wording.
func Unavailable(err error, op, message string) *Error {
	return newError(EUNAVAILABLE, op, message, err)
}

// Internal wraps an unexpected failure. Its message is never shown.
func Internal(err error, op, message string) *Error {
	return newError(EINTERNAL, op, message, err)
}

// ErrorCode returns the code of err. Validation errors are EINVALID and
// foreign errors EINTERNAL.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return EINVALID
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// UserMessage returns the text to show for err, or fallback when err
// carries nothing presentable.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) || e.Code == EINTERNAL || e.Message == "" {
		return fallback
	}
	return e.Message
}

// ErrorOp returns the operation recorded on err, if any.
func ErrorOp(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}

// ValidationError carries one message per invalid field, keyed by the
// field's form name.
type ValidationError struct {
	Op     string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: validation failed on %d field(s)", e.Op, len(e.Fields))
}

// NewValidationError creates a validation error for a single field.
func NewValidationError(op, field, message string) *ValidationError {
	return &ValidationError{Op: op, Fields: map[string]string{field: message}}
}

// FieldErrors returns the per-field messages carried by err, or nil.
func FieldErrors(err error) map[string]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}
