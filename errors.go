package uatypes

import (
	"errors"
	"fmt"
)

// Error codes (exported consts so callers can branch without string literals)
const (
	CodeEndOfStream          = "end_of_stream"
	CodeLimitExceeded        = "limit_exceeded"
	CodeInvalidDiscriminant  = "invalid_discriminant"
	CodeInvalidLength        = "invalid_length"
	CodeInvalidValue         = "invalid_value"
	CodeUnresolvedType       = "unresolved_type"
	CodeUnsupportedConstruct = "unsupported_construct"
	CodeEncodingFailed       = "encoding_failed"
	// Construction-time failure of the type loader registry.
	CodeDuplicateType = "duplicate_type"
)

// Sentinels for errors.Is. Matching is by Code only, so
// errors.Is(err, ErrLimitExceeded) holds for every limit violation.
var (
	ErrEndOfStream          = &Error{Code: CodeEndOfStream}
	ErrLimitExceeded        = &Error{Code: CodeLimitExceeded}
	ErrInvalidDiscriminant  = &Error{Code: CodeInvalidDiscriminant}
	ErrInvalidLength        = &Error{Code: CodeInvalidLength}
	ErrInvalidValue         = &Error{Code: CodeInvalidValue}
	ErrUnresolvedType       = &Error{Code: CodeUnresolvedType}
	ErrUnsupportedConstruct = &Error{Code: CodeUnsupportedConstruct}
	ErrEncodingFailed       = &Error{Code: CodeEncodingFailed}
	ErrDuplicateType        = &Error{Code: CodeDuplicateType}
)

// Error is the single error type returned by every encode/decode entry point.
type Error struct {
	Code    string // One of the codes listed above.
	Message string
	// Offset is the number of bytes consumed from the stream when the error
	// was detected (-1 when unknown, e.g. on the encode side).
	Offset int64
	// Path locates the failure inside JSON/XML documents (JSON Pointer or
	// element path). Empty for binary streams.
	Path  string
	Cause error
}

func (e *Error) Error() string {
	msg := e.Code
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Offset >= 0 && e.Path == "" {
		msg += fmt.Sprintf(" (offset %d)", e.Offset)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// StatusCode maps the error onto the OPC-UA status code a server would
// report for it.
func (e *Error) StatusCode() StatusCode {
	switch e.Code {
	case CodeLimitExceeded:
		return StatusBadEncodingLimitsExceeded
	case CodeEncodingFailed:
		return StatusBadEncodingError
	case CodeUnresolvedType:
		return StatusBadDataTypeIDUnknown
	case CodeUnsupportedConstruct:
		return StatusBadNotSupported
	default:
		return StatusBadDecodingError
	}
}

// AsError extracts an *Error from err using errors.As internally.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func newError(code string, offset int64, format string, args ...any) *Error {
	return &Error{Code: code, Offset: offset, Message: fmt.Sprintf(format, args...)}
}

func encodeError(format string, args ...any) *Error {
	return newError(CodeEncodingFailed, -1, format, args...)
}
