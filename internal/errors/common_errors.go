package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeRender     ErrorType = "RENDER"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeNetwork    ErrorType = "NETWORK"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// MissingColumnsError reports required columns absent from an input table
type MissingColumnsError struct {
	Table   string
	Missing []string
}

// Error implements the error interface
func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s is missing required columns: %s", e.Table, strings.Join(e.Missing, ", "))
}

// NewMissingColumnsError creates a missing columns error with the absent names sorted
func NewMissingColumnsError(table string, missing []string) *MissingColumnsError {
	sorted := append([]string(nil), missing...)
	sort.Strings(sorted)
	return &MissingColumnsError{Table: table, Missing: sorted}
}

// NewColumnsValidationError wraps a missing columns error as a VALIDATION AppError
// whose message is the documented requirement for that table.
func NewColumnsValidationError(message string, cause *MissingColumnsError) *AppError {
	if cause == nil {
		return NewAppError(ErrTypeValidation, message, nil)
	}
	return NewAppError(ErrTypeValidation, message, cause).
		WithContext("missing_columns", cause.Missing)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewRenderError creates a rendering error
func NewRenderError(message string, cause error) *AppError {
	return NewAppError(ErrTypeRender, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewNetworkError creates a network-related error
func NewNetworkError(message string, cause error) *AppError {
	return NewAppError(ErrTypeNetwork, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// IsType reports whether err is, or wraps, an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// IsNotFound reports whether err is a NOT_FOUND AppError
func IsNotFound(err error) bool {
	return IsType(err, ErrTypeNotFound)
}
