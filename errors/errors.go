package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode classifies application failures
type ErrorCode int

const (
	ErrorCode_INTERNAL ErrorCode = iota
	ErrorCode_INVALID_ARGUMENT
	ErrorCode_NOT_FOUND
	ErrorCode_ALREADY_EXISTS
	ErrorCode_CONNECTIVITY
	ErrorCode_SERVER
	ErrorCode_DECODE
	ErrorCode_EMPTY_RESULT
	ErrorCode_INVALID_PAYLOAD
	ErrorCode_MISSING_RECORDING_PATH
)

// String returns the string representation of the error code
func (c ErrorCode) String() string {
	switch c {
	case ErrorCode_INTERNAL:
		return "INTERNAL"
	case ErrorCode_INVALID_ARGUMENT:
		return "INVALID_ARGUMENT"
	case ErrorCode_NOT_FOUND:
		return "NOT_FOUND"
	case ErrorCode_ALREADY_EXISTS:
		return "ALREADY_EXISTS"
	case ErrorCode_CONNECTIVITY:
		return "CONNECTIVITY"
	case ErrorCode_SERVER:
		return "SERVER"
	case ErrorCode_DECODE:
		return "DECODE"
	case ErrorCode_EMPTY_RESULT:
		return "EMPTY_RESULT"
	case ErrorCode_INVALID_PAYLOAD:
		return "INVALID_PAYLOAD"
	case ErrorCode_MISSING_RECORDING_PATH:
		return "MISSING_RECORDING_PATH"
	default:
		return "UNKNOWN"
	}
}

// AppError là custom error type cho application
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the underlying error for errors.Is/As chains
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrAlreadyExists(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_ALREADY_EXISTS,
		Message:  fmt.Sprintf("%s already exists", resource),
	}
}

// Engine (transcription/LLM backend) errors

// ErrConnectivity marks the engine as unreachable or timed out. This is
// the only classification that triggers the on-device transcription
// fallback; everything else surfaces as-is.
func ErrConnectivity(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusServiceUnavailable,
		Code:     ErrorCode_CONNECTIVITY,
		Message:  "Engine unreachable",
	}
}

// ErrServer wraps a non-2xx engine response. The message is the engine's
// own error string, surfaced verbatim.
func ErrServer(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_SERVER,
		Message:  message,
	}
}

// ErrDecode marks a malformed engine response. Treated like a server
// error for retry purposes.
func ErrDecode(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_DECODE,
		Message:  "Failed to parse engine response",
	}
}

// ErrEmptyResult marks a transcription that produced no text. Terminal,
// never retried automatically.
func ErrEmptyResult() AppError {
	return AppError{
		HTTPCode: http.StatusUnprocessableEntity,
		Code:     ErrorCode_EMPTY_RESULT,
		Message:  "No speech detected",
	}
}

func ErrRecordingNotFound(identity string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  "Recording not found",
	}.WithDetail("recording", identity)
}

// Custom Errors
func ErrInvalidPayload() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_PAYLOAD,
		Message:  "Invalid payload",
	}
}

func ErrMissingRecordingPath() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_MISSING_RECORDING_PATH,
		Message:  "Missing recording path",
	}
}

// CodeOf extracts the ErrorCode from any error, defaulting to INTERNAL
func CodeOf(err error) ErrorCode {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrorCode_INTERNAL
}

// IsConnectivity reports whether err is classified as a connectivity
// failure (engine unreachable or timed out)
func IsConnectivity(err error) bool {
	return CodeOf(err) == ErrorCode_CONNECTIVITY
}

// IsNotFound reports whether err is classified as a missing resource
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrorCode_NOT_FOUND
}

// IsEmptyResult reports whether err marks a no-speech transcription
func IsEmptyResult(err error) bool {
	return CodeOf(err) == ErrorCode_EMPTY_RESULT
}
