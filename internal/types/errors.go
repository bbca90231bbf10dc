package types

import (
	"errors"
	"fmt"
)

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Complete error code constants.
// All components MUST use these constants instead of hardcoded strings.
const (
	// A single remote tile could not be downloaded or decoded. Recovered
	// locally by substituting a blank tile.
	ErrCodeFetchFailed ErrorCode = "fetch_failed"

	// The clock or status tile could not be rendered (e.g. the status
	// source is unreachable). Recovered locally by a blank tile.
	ErrCodeRenderFailed ErrorCode = "render_failed"

	// The composite image or frame could not be persisted. Surfaced to the
	// caller; the tick logs it and continues.
	ErrCodeWriteFailed ErrorCode = "write_failed"

	// The external encoder returned a non-zero exit status or could not be
	// started. Recorded via the marker file; not retried within the night.
	ErrCodeEncodeFailed ErrorCode = "encode_failed"

	// A filename in a frame sequence directory does not carry the expected
	// fixed-width numeric index. The sequence is externally corrupted and
	// is not auto-repaired.
	ErrCodeSequenceCorrupt ErrorCode = "sequence_corrupt"

	// A directory could not be created or listed.
	ErrCodeStorageFailed ErrorCode = "storage_failed"

	// Configuration failed to load or validate.
	ErrCodeConfigInvalid ErrorCode = "config_invalid"
)

// AppError is the standard application error type used throughout skyview.
// All domain errors should be expressed as AppError to enable consistent
// error formatting, code-based branching, and error chain support.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError with the given code, message, and
// optional underlying error. This is the standard constructor for domain
// errors.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the ErrorCode carried anywhere in err's chain, or the
// empty string when no AppError is present.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
