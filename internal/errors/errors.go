package errors

import (
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid  = "CONFIG_INVALID"
	CodeSourceError    = "SOURCE_ERROR"
	CodeDatabaseError  = "DATABASE_ERROR"
	CodeFileError      = "FILE_ERROR"
	CodeSchemaError    = "SCHEMA_ERROR"
	CodeAnalysisFailed = "ANALYSIS_FAILED"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeInternalError  = "INTERNAL_ERROR"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func SourceError(message string, cause error) *AppError {
	return &AppError{Code: CodeSourceError, Message: message, Cause: cause}
}

func DatabaseError(message string, cause error) *AppError {
	return &AppError{Code: CodeDatabaseError, Message: message, Cause: cause}
}

func FileError(path string, cause error) *AppError {
	return &AppError{
		Code:    CodeFileError,
		Message: fmt.Sprintf("file %s", path),
		Cause:   cause,
	}
}

func SchemaError(message string) *AppError {
	return New(CodeSchemaError, message)
}

func AnalysisFailed(message string, cause error) *AppError {
	return &AppError{Code: CodeAnalysisFailed, Message: message, Cause: cause}
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}
