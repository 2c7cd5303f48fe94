package application

import (
	"errors"
)

// Kind classifies expected failures so the transport layer can map them to statuses.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindUnauthenticated
	KindForbidden
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is an expected, client-facing failure. Message is safe to show to callers.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error with the same kind and message, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func newError(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func validationError(msg string) *Error { return newError(KindValidation, msg) }

var (
	ErrMissingFields      = validationError("All fields are required")
	ErrPasswordTooShort   = validationError("Password must be at least 6 characters")
	ErrPasswordTooLong    = validationError("Password must be at most 72 bytes")
	ErrUsernameTooShort   = validationError("Username must be at least 3 characters")
	ErrEmailInUse         = newError(KindConflict, "Email already in use")
	ErrUsernameInUse      = newError(KindConflict, "Username already in use")
	ErrInvalidCredentials = newError(KindAuth, "Invalid credentials")
	ErrUnauthenticated    = newError(KindUnauthenticated, "Not authorized")

	ErrMissingBookFields = validationError("Please provide title, caption, rating, and image")
	ErrInvalidRating     = validationError("Rating must be between 1 and 5")
	ErrInvalidImage      = validationError("Invalid image")
	ErrImageTooLarge     = validationError("Image is too large")
	ErrBookNotFound      = newError(KindNotFound, "Book not found")
	ErrNotBookOwnerEdit  = newError(KindForbidden, "You are not authorized to update this book")
	ErrNotBookOwnerDel   = newError(KindForbidden, "You are not authorized to delete this book")
)

// KindOf returns the Kind of err, or KindInternal for unexpected errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}
