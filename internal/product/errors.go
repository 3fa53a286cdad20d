package product

import (
	"errors"
	"fmt"
)

// Kind classifies store failures for the HTTP boundary
type Kind int

const (
	KindValidation Kind = iota + 1 // missing or malformed input -> 400
	KindNotFound                   // no matching row or item -> 404
	KindUpstream                   // users-api unreachable or faulted -> 502
	KindStorage                    // driver or container failure -> 500
)

// Error carries a failure kind plus the operator-facing message.
// The wrapped cause is kept for logs only and never serialized.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Cause.Error())
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Errorf builds a kinded error with a formatted message
func Errorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapErr attaches a kind and message to an underlying failure
func WrapErr(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the failure kind; unclassified errors report KindStorage
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// MessageOf extracts the operator-facing message of a store failure
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
