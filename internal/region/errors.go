package region

import (
	"errors"
	"fmt"
)

// Kind classifies store errors
type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindNotFound
	KindStorageUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not found"
	case KindStorageUnavailable:
		return "storage unavailable"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks against an *Error of the matching kind.
var (
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Error is returned by every store operation that fails.
// Subject names the offending representative or region code, if any.
type Error struct {
	Kind    Kind
	Subject string
	Message string
	Cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if e.Subject != "" {
		msg = fmt.Sprintf("%s: %q", msg, e.Subject)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel for the error's kind
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrConflict:
		return e.Kind == KindConflict
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrStorageUnavailable:
		return e.Kind == KindStorageUnavailable
	}
	return false
}

// KindOf returns the kind of a store error, or 0 for foreign errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func validationError(message, subject string) error {
	return &Error{Kind: KindValidation, Subject: subject, Message: message}
}

func conflictError(message, subject string, cause error) error {
	return &Error{Kind: KindConflict, Subject: subject, Message: message, Cause: cause}
}

func notFoundError(message, subject string) error {
	return &Error{Kind: KindNotFound, Subject: subject, Message: message}
}

func storageError(op string, cause error) error {
	var e *Error
	if errors.As(cause, &e) {
		return cause
	}
	return &Error{Kind: KindStorageUnavailable, Message: op, Cause: cause}
}
