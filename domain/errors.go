package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies domain errors
type ErrorCode string

const (
	ErrCodeConfig       ErrorCode = "CONFIG_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrCodeAnalysis     ErrorCode = "ANALYSIS_ERROR"
	ErrCodeOutput       ErrorCode = "OUTPUT_ERROR"

	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
)

// DomainError is the error type returned by use cases and services
type DomainError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) error {
	return &DomainError{Code: ErrCodeConfig, Message: message, Cause: cause}
}

// NewInvalidInputError creates an invalid input error
func NewInvalidInputError(message string, cause error) error {
	return &DomainError{Code: ErrCodeInvalidInput, Message: message, Cause: cause}
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string, cause error) error {
	return &DomainError{Code: ErrCodeFileNotFound, Message: path, Cause: cause}
}

// NewAnalysisError creates an analysis error
func NewAnalysisError(message string, cause error) error {
	return &DomainError{Code: ErrCodeAnalysis, Message: message, Cause: cause}
}

// NewOutputError creates an output error
func NewOutputError(message string, cause error) error {
	return &DomainError{Code: ErrCodeOutput, Message: message, Cause: cause}
}

// NewUnsupportedFormatError creates an unsupported output format error
func NewUnsupportedFormatError(format string) error {
	return &DomainError{Code: ErrCodeUnsupportedFormat, Message: "unsupported format: " + format}
}

// HasCode reports whether err is a DomainError with the given code
func HasCode(err error, code ErrorCode) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
