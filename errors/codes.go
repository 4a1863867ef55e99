// Package errors provides the structured error handling used across the data
// synchronizer. It extends Go's standard error handling with string error
// codes and key/value context while keeping errors.Is and errors.As working
// through the wrapped cause.
package errors

// ErrorCode represents a specific error condition.
// Error codes are string-based for debuggability and natural log output.
type ErrorCode string

const (
	// Resource errors.

	// CodeNotFound indicates a requested path does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeConflict indicates an existing entry has the wrong shape for the
	// operation, e.g. a file where a directory is required.
	CodeConflict ErrorCode = "CONFLICT"

	// Permission errors.

	// CodeForbidden indicates the process lacks permission for the operation.
	CodeForbidden ErrorCode = "FORBIDDEN"

	// Validation errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error prevents the operation.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// CodeConfigLoadFailed indicates a configuration file could not be read or parsed.
	CodeConfigLoadFailed ErrorCode = "CONFIG_LOAD_FAILED"

	// Execution errors.

	// CodeExecutionFailed indicates a general execution failure.
	CodeExecutionFailed ErrorCode = "EXECUTION_FAILED"

	// CodeCanceled indicates the operation was canceled through its context.
	CodeCanceled ErrorCode = "CANCELED"

	// System errors.

	// CodeInternal indicates an internal system error occurred.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// Generic errors.

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)
