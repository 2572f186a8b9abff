// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package errors defines the typed error taxonomy shared by every pipeline
// stage. Callers branch on the Code via the Is* predicates rather than on
// message text; errors.Is and errors.As work across the whole chain.
package errors

import (
	"errors"
	"fmt"
)

// Code identifies a failure category.
type Code string

const (
	// CodeNotFound: the identifier has no upstream record. User-correctable.
	CodeNotFound Code = "not_found"

	// CodeParse: the upstream response does not match the expected schema.
	// Retrying will not help.
	CodeParse Code = "parse"

	// CodeTransient: a network or timeout condition. Eligible for retry.
	CodeTransient Code = "transient"

	// CodeBlocked: the retrieval surface detected automation. Distinct from
	// an empty result set.
	CodeBlocked Code = "blocked"

	// CodeUpstream: the text-generation service is unreachable or returned
	// an unusable response.
	CodeUpstream Code = "upstream"

	// CodeInvalidInventor: the inventor name is empty or a collective
	// placeholder and cannot be analyzed.
	CodeInvalidInventor Code = "invalid_inventor"
)

// Error carries a Code, a human-readable message, and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is / errors.As traversal.
func (e *Error) Unwrap() error { return e.Cause }

// New constructs an Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an existing error. A nil cause
// yields a plain New.
func Wrap(cause error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Factory constructors, one per taxonomy entry.

func NotFound(format string, args ...any) *Error  { return New(CodeNotFound, format, args...) }
func Parse(format string, args ...any) *Error     { return New(CodeParse, format, args...) }
func Transient(format string, args ...any) *Error { return New(CodeTransient, format, args...) }
func Blocked(format string, args ...any) *Error   { return New(CodeBlocked, format, args...) }
func Upstream(format string, args ...any) *Error  { return New(CodeUpstream, format, args...) }
func InvalidInventor(format string, args ...any) *Error {
	return New(CodeInvalidInventor, format, args...)
}

// CodeOf extracts the Code from err, or "" if err carries none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func is(err error, code Code) bool { return CodeOf(err) == code }

func IsNotFound(err error) bool        { return is(err, CodeNotFound) }
func IsParse(err error) bool           { return is(err, CodeParse) }
func IsTransient(err error) bool       { return is(err, CodeTransient) }
func IsBlocked(err error) bool         { return is(err, CodeBlocked) }
func IsUpstream(err error) bool        { return is(err, CodeUpstream) }
func IsInvalidInventor(err error) bool { return is(err, CodeInvalidInventor) }
