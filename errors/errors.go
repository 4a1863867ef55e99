package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// PlatformError is an error carrying a code, a human readable message, optional
// key/value context and the underlying cause.
type PlatformError struct {
	// Code classifies the failure.
	Code ErrorCode

	// Message describes what was being attempted.
	Message string

	// Context holds structured details such as paths.
	Context map[string]any

	// Cause is the wrapped error, if any.
	Cause error
}

// Error implements the error interface.
//
// The format is "<message> [k=v ...]: <cause>" with context keys sorted so the
// output is stable.
func (e *PlatformError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)

	if len(e.Context) > 0 {
		keys := slices.Sorted(maps.Keys(e.Context))
		b.WriteString(" [")
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Context[k])
		}
		b.WriteByte(']')
	}

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error for error chaining support.
func (e *PlatformError) Unwrap() error {
	return e.Cause
}

// New creates a PlatformError without a cause.
func New(code ErrorCode, message string) *PlatformError {
	return &PlatformError{
		Code:    code,
		Message: message,
	}
}

// NewWithContext creates a PlatformError without a cause but with
// structured context.
func NewWithContext(code ErrorCode, message string, ctx map[string]any) *PlatformError {
	return &PlatformError{
		Code:    code,
		Message: message,
		Context: ctx,
	}
}

// Wrap annotates err with a code and message. It returns nil when err is nil.
func Wrap(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	return &PlatformError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapWithContext is Wrap with additional structured context.
func WrapWithContext(err error, code ErrorCode, message string, ctx map[string]any) error {
	if err == nil {
		return nil
	}
	return &PlatformError{
		Code:    code,
		Message: message,
		Context: ctx,
		Cause:   err,
	}
}

// GetCode returns the code of the outermost PlatformError in err's chain, or
// CodeUnknown when there is none.
func GetCode(err error) ErrorCode {
	var pe *PlatformError
	if stderrors.As(err, &pe) {
		return pe.Code
	}
	return CodeUnknown
}

// HasCode reports whether any PlatformError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var pe *PlatformError
		if !stderrors.As(err, &pe) {
			return false
		}
		if pe.Code == code {
			return true
		}
		err = pe.Cause
	}
	return false
}

// Is is the standard library's errors.Is.
var Is = stderrors.Is

// ErrUnsupported is the standard library's errors.ErrUnsupported.
var ErrUnsupported = stderrors.ErrUnsupported
