package domain

import "fmt"

// ErrorCode classifies domain errors for the CLI exit-code mapping
type ErrorCode string

const (
	ErrCodeFileNotFound      ErrorCode = "FILE_NOT_FOUND"
	ErrCodeParseError        ErrorCode = "PARSE_ERROR"
	ErrCodeAnalysisError     ErrorCode = "ANALYSIS_ERROR"
	ErrCodeConfigError       ErrorCode = "CONFIG_ERROR"
	ErrCodeOutputError       ErrorCode = "OUTPUT_ERROR"
	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	ErrCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrCodeBenchError        ErrorCode = "BENCH_ERROR"
)

// DomainError carries a code, a human-readable message and an optional cause
type DomainError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface
func (e DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e DomainError) Unwrap() error {
	return e.Cause
}

// NewFileNotFoundError creates a file-not-found error
func NewFileNotFoundError(path string) error {
	return DomainError{
		Code:    ErrCodeFileNotFound,
		Message: fmt.Sprintf("file not found: %s", path),
	}
}

// NewParseError creates a parse error for the given file
func NewParseError(path string, cause error) error {
	return DomainError{
		Code:    ErrCodeParseError,
		Message: fmt.Sprintf("failed to parse: %s", path),
		Cause:   cause,
	}
}

// NewAnalysisError creates a generic analysis error
func NewAnalysisError(message string, cause error) error {
	return DomainError{
		Code:    ErrCodeAnalysisError,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) error {
	return DomainError{
		Code:    ErrCodeConfigError,
		Message: message,
		Cause:   cause,
	}
}

// NewOutputError creates an output/rendering error
func NewOutputError(message string, cause error) error {
	return DomainError{
		Code:    ErrCodeOutputError,
		Message: message,
		Cause:   cause,
	}
}

// NewUnsupportedFormatError creates an error for an unknown output format
func NewUnsupportedFormatError(format string) error {
	return DomainError{
		Code:    ErrCodeUnsupportedFormat,
		Message: fmt.Sprintf("unsupported format: %s", format),
	}
}

// NewValidationError creates an invalid-input error
func NewValidationError(message string) error {
	return DomainError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}

// NewBenchError creates a benchmark-phase error. Benchmark failures are
// fatal to the benchmark phase only; analysis phases still complete.
func NewBenchError(message string, cause error) error {
	return DomainError{
		Code:    ErrCodeBenchError,
		Message: message,
		Cause:   cause,
	}
}
