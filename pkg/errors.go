package versync

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a class of failure in a synchronization run.
type ErrorCode string

const (
	// Fatal: the run aborts before any file is touched.
	CodeInvalidVersionFormat  ErrorCode = "INVALID_VERSION_FORMAT"
	CodeInvalidRuleDefinition ErrorCode = "INVALID_RULE_DEFINITION"

	// Per-rule: recorded on a Failed outcome, the run continues.
	CodeFileNotFound     ErrorCode = "FILE_NOT_FOUND"
	CodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	CodeReadFailed       ErrorCode = "READ_FAILED"
	CodeReplaceFailed    ErrorCode = "REPLACE_FAILED"
)

// Sentinels for use with errors.Is.
var (
	ErrInvalidVersionFormat  = &Error{Code: CodeInvalidVersionFormat}
	ErrInvalidRuleDefinition = &Error{Code: CodeInvalidRuleDefinition}
	ErrFileNotFound          = &Error{Code: CodeFileNotFound}
	ErrPermissionDenied      = &Error{Code: CodePermissionDenied}
	ErrReadFailed            = &Error{Code: CodeReadFailed}
	ErrReplaceFailed         = &Error{Code: CodeReplaceFailed}
)

// Error is a coded error. Two Errors compare equal under errors.Is when
// their codes match.
type Error struct {
	Code    ErrorCode
	Message string
	Path    string // target file, when the error concerns one
	Wrapped error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, msg)
	}
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, msg, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func newError(code ErrorCode, path string, wrapped error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Path:    path,
		Wrapped: wrapped,
	}
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
