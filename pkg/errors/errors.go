// Package errors gives every overlaysmith failure a machine-readable [Code].
//
// Library packages return *[Error] values built with [New] or [Wrap], or
// their own types implementing [Coded]. Callers branch on the code rather
// than on message text:
//
//	if errors.Is(err, errors.ErrCodeAmbiguousPackage) {
//	    // ask the user to pick
//	}
//
// The outermost coded error in a chain decides the code, so wrapping a
// database error as SYNC_FAILED reports SYNC_FAILED.
package errors

import (
	"errors"
	"fmt"
)

// Code identifies a class of failure.
type Code string

// Malformed input: names, versions, atoms, configuration, archive members.
const (
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidPackage    Code = "INVALID_PACKAGE"
	ErrCodeInvalidVersion    Code = "INVALID_VERSION"
	ErrCodeInvalidDependency Code = "INVALID_DEPENDENCY"
	ErrCodeInvalidKey        Code = "INVALID_KEY"
	ErrCodeInvalidPath       Code = "INVALID_PATH"
	ErrCodeInvalidConfig     Code = "INVALID_CONFIG"
)

// Lookups and resolution.
const (
	ErrCodeNotFound           Code = "NOT_FOUND"
	ErrCodePackageNotFound    Code = "PACKAGE_NOT_FOUND"
	ErrCodeAmbiguousPackage   Code = "AMBIGUOUS_PACKAGE"
	ErrCodeCircularDependency Code = "CIRCULAR_DEPENDENCY"
)

// Overlay tree passes.
const (
	ErrCodeMissingMaster     Code = "MISSING_MASTER"
	ErrCodeMissingDescriptor Code = "MISSING_DESCRIPTOR"
	ErrCodeDigest            Code = "DIGEST_FAILED"
)

const (
	ErrCodeDatabase    Code = "DATABASE_ERROR"
	ErrCodeSync        Code = "SYNC_FAILED"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Coded is implemented by errors that carry a [Code].
type Coded interface {
	error
	ErrorCode() Code
}

// Error is a coded message with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	s := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

func (e *Error) Unwrap() error   { return e.Cause }
func (e *Error) ErrorCode() Code { return e.Code }

func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap returns an Error with the formatted message and cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost coded error in err's chain has code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode returns the code of the outermost coded error in err's chain, or
// "" when there is none.
func GetCode(err error) Code {
	var c Coded
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return ""
}
