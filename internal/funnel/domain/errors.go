package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable, machine-checkable class of a funnel failure
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindEmptyCart  ErrorKind = "empty_cart"
	KindConflict   ErrorKind = "conflict"
	KindInternal   ErrorKind = "internal"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrEmptyCart = errors.New("cart is empty")
	// ErrConflict is reserved for duplicate-submission detection; nothing raises it yet.
	ErrConflict = errors.New("conflict")
)

// Error carries a kind plus a message that is safe to show to callers
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found", Err: ErrNotFound}
}

func EmptyCart() *Error {
	return &Error{Kind: KindEmptyCart, Message: "cart is empty", Err: ErrEmptyCart}
}

// KindOf classifies any error. Unclassified errors are internal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrEmptyCart):
		return KindEmptyCart
	case errors.Is(err, ErrConflict):
		return KindConflict
	}
	return KindInternal
}

// PublicMessage returns text that is safe to send across the boundary
func PublicMessage(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Kind != KindInternal {
		return de.Message
	}
	switch KindOf(err) {
	case KindNotFound:
		return "resource not found"
	case KindEmptyCart:
		return "cart is empty"
	case KindConflict:
		return "conflict"
	}
	return "internal error"
}
