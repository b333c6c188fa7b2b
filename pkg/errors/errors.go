// Package errors provides coded errors for depman.
//
// Every failure that reaches the CLI carries a [Code]. The code decides the
// process exit status ([ExitCode]) and the recovery hint ([Hint]); the message
// is what the user reads. Library callers branch with [Is] instead of matching
// strings.
//
// Codes fall into four families:
//   - INVALID_*: the user or the manifest supplied something unusable
//   - NOT_FOUND, FILE_NOT_FOUND, NO_PROJECT: something is missing
//   - NETWORK_ERROR, TIMEOUT, RATE_LIMITED: the registry failed us
//   - INTERNAL_ERROR, UNSUPPORTED: the rest
//
// Errors from other packages take part as long as they expose a
// Code() Code method, which is how [RateLimitedError] is recognised.
//
//	if err := b.Install(group, name, req, dir); errors.Is(err, errors.ErrCodeInvalidManifest) {
//	    // leave the file for the user to fix
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error category.
type Code string

const (
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidPackage  Code = "INVALID_PACKAGE"
	ErrCodeInvalidVersion  Code = "INVALID_VERSION"
	ErrCodeInvalidGroup    Code = "INVALID_GROUP"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"
	ErrCodeNoProject    Code = "NO_PROJECT"

	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// coder is implemented by every error that carries a code.
type coder interface {
	error
	Code() Code
}

// Error is a coded error with an optional cause.
type Error struct {
	code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.code, e.Message, e.Cause)
}

// Code returns the error's category.
func (e *Error) Code() Code { return e.code }

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is New with a cause. The cause stays reachable through errors.Is
// and errors.As.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// GetCode returns the code of the outermost coded error in err's chain,
// or "" when there is none.
func GetCode(err error) Code {
	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return ""
}

// Is reports whether the outermost coded error in err's chain has code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// UserMessage renders err without code prefixes: the message chain of
// every wrapped *Error, ending in the root cause's text.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + UserMessage(e.Cause)
}

// RateLimitedError reports a 429 from a registry.
type RateLimitedError struct {
	RetryAfter int // seconds, 0 when the registry gave no Retry-After
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter <= 0 {
		return "rate limited"
	}
	return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
}

// Code returns [ErrCodeRateLimited].
func (e *RateLimitedError) Code() Code { return ErrCodeRateLimited }
