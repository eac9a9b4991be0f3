package core

import "errors"

// Error kinds. Every failure leaving the service layer is an *Error whose
// Kind is one of these.
var (
	ErrValidation       = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrUpstream         = errors.New("upstream failure")
)

// ErrDuplicate is returned by stores on a unique constraint violation.
var ErrDuplicate = errors.New("duplicate")

// Error is a typed failure with a message safe to show to clients.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func WrapError(kind error, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error { return NewError(ErrValidation, message) }

func Unauthorized(message string) *Error { return NewError(ErrUnauthorized, message) }

func Forbidden(message string) *Error { return NewError(ErrForbidden, message) }

func NotFound(message string) *Error { return NewError(ErrNotFound, message) }

func Conflict(message string) *Error { return NewError(ErrConflict, message) }

func InvalidOperation(message string) *Error { return NewError(ErrInvalidOperation, message) }

func Upstream(message string, err error) *Error { return WrapError(ErrUpstream, message, err) }

// Lookup converts a store failure into NotFound when the document is missing
// and into Upstream otherwise. Typed errors pass through unchanged.
func Lookup(err error, notFound, failed string) error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return err
	}
	if errors.Is(err, ErrNotFound) {
		return WrapError(ErrNotFound, notFound, err)
	}
	return Upstream(failed, err)
}
