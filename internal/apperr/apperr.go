package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error so the HTTP layer can pick a status code.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindNotFound
	KindConflict
)

// String returns the lower case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is an application error with a kind, a machine readable code and a
// client safe message.
//
// code example: PRODUCT_NOT_FOUND
type Error struct {
	parent error
	kind   Kind
	code   string
	msg    string
}

// New returns an Error of the given kind.
func New(kind Kind, code, msg string) Error {
	return Error{kind: kind, code: code, msg: msg}
}

// Error formats the code, the message and the parent.
func (e Error) Error() string {
	if e.parent != nil {
		return fmt.Sprintf("%s: %s (%v)", e.code, e.msg, e.parent)
	}
	return fmt.Sprintf("%s: %s", e.code, e.msg)
}

// Is matches on kind and code so wrapped copies of a sentinel still compare equal.
func (e Error) Is(target error) bool {
	var t Error
	if !errors.As(target, &t) {
		return false
	}
	return e.kind == t.kind && e.code == t.code
}

// WrapParent attaches an underlying error to a copy of e.
func (e Error) WrapParent(parent error) Error {
	e.parent = parent
	return e
}

// Unwrap returns the wrapped parent, if any.
func (e Error) Unwrap() error { return e.parent }

// Kind returns the error classification.
func (e Error) Kind() Kind { return e.kind }

// Code returns the machine readable code.
func (e Error) Code() string { return e.code }

// Msg returns the client safe message.
func (e Error) Msg() string { return e.msg }

// NewValidation returns a KindValidation error.
func NewValidation(code, msg string) Error { return New(KindValidation, code, msg) }

// NewUnauthorized returns a KindUnauthorized error.
func NewUnauthorized(code, msg string) Error { return New(KindUnauthorized, code, msg) }

// NewNotFound returns a KindNotFound error.
func NewNotFound(code, msg string) Error { return New(KindNotFound, code, msg) }

// NewConflict returns a KindConflict error.
func NewConflict(code, msg string) Error { return New(KindConflict, code, msg) }

// KindOf reports the kind of the first Error in err's chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var e Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindInternal
}

// Errors returned by the services.
var (
	ErrInvalidCredentials   = NewUnauthorized("INVALID_CREDENTIALS", "invalid credentials")
	ErrInvalidToken         = NewUnauthorized("INVALID_TOKEN", "invalid or expired token")
	ErrEmailTaken           = NewConflict("EMAIL_TAKEN", "email already registered")
	ErrDuplicateProductName = NewConflict("DUPLICATE_NAME", "product with this name already exists")
	ErrProductNotFound      = NewNotFound("PRODUCT_NOT_FOUND", "product not found")
	ErrUserNotFound         = NewNotFound("USER_NOT_FOUND", "user not found")
)
