// Package errors provides coded domain errors. Services wrap infrastructure
// failures with a code so transport layers can map them to responses without
// inspecting error strings.
package errors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// CodeInvalidInput marks validation failures on caller-supplied data.
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest marks structurally malformed requests.
	CodeBadRequest Code = "bad_request"
	// CodeNotFound marks references to absent entities.
	CodeNotFound Code = "not_found"
	// CodeConflict marks writes that lost to a concurrent or terminal state.
	CodeConflict Code = "conflict"
	// CodeUnavailable marks transient infrastructure failures.
	CodeUnavailable Code = "unavailable"
	// CodeInternal marks unexpected failures; details stay server-side.
	CodeInternal Code = "internal_error"
)

// Error is a domain error with a classification code.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a domain error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf builds a domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. A nil err yields nil.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// CodeOf returns the code of the outermost domain error in err's chain,
// defaulting to CodeInternal for unclassified errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether any error in err's chain carries the given code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.cause
	}
	return false
}

// MessageOf returns the domain message of err, or err.Error() for
// unclassified errors.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
