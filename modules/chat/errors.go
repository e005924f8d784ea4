package chat

import (
	"errors"
	"fmt"
)

// Kind classifies a chat error for the transport layer.
type Kind string

// Error kinds.
const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindInternal   Kind = "internal"
)

// Error is a classified chat error. Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same kind and client message, so errors rebuilt
// from a service reply still match the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// Client-facing errors.
var (
	ErrUsernameRequired = &Error{Kind: KindValidation, Message: "Username is required"}
	ErrUsernameLength   = &Error{Kind: KindValidation, Message: "Username must be between 2 and 30 characters"}
	ErrUsernameTaken    = &Error{Kind: KindConflict, Message: "Username already taken"}
	ErrFieldsRequired   = &Error{Kind: KindValidation, Message: "Username and message are required"}
	ErrMessageEmpty     = &Error{Kind: KindValidation, Message: "Message cannot be empty"}
	ErrMessageTooLong   = &Error{Kind: KindValidation, Message: "Message too long"}
)

// InternalMessage is the only detail clients see for internal failures.
const InternalMessage = "Internal server error"

// internal wraps a store or encoding failure.
func internal(op string, err error) error {
	return &Error{Kind: KindInternal, Message: InternalMessage, Err: fmt.Errorf("%s: %w", op, err)}
}

// KindOf returns the kind of err. Unclassified errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// PublicMessage returns the message that may be shown to clients for err.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return InternalMessage
}
