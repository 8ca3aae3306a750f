// Package errors provides structured error types for Groupcast.
// All errors include a category, code, message, and retryable flag for
// consistent error handling across components.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by system component.
type ErrorCategory string

const (
	ErrCategoryValidation ErrorCategory = "VALIDATION"
	ErrCategoryDataset    ErrorCategory = "DATASET"
	ErrCategoryTransform  ErrorCategory = "TRANSFORM"
	ErrCategoryStorage    ErrorCategory = "STORAGE"
	ErrCategoryExport     ErrorCategory = "EXPORT"
	ErrCategoryInternal   ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Validation codes
	CodeUnknownColumn    = "UNKNOWN_COLUMN"
	CodeColumnNotNumeric = "COLUMN_NOT_NUMERIC"
	CodeEmptyTable       = "EMPTY_TABLE"

	// Dataset codes
	CodeFileNotFound = "FILE_NOT_FOUND"
	CodeBadHeader    = "BAD_HEADER"
	CodeBadRecord    = "BAD_RECORD"

	// Transform codes
	CodeUnknownAggregate = "UNKNOWN_AGGREGATE"
	CodeReduceFailed     = "REDUCE_FAILED"

	// Storage codes
	CodeUploadFailed   = "UPLOAD_FAILED"
	CodeDownloadFailed = "DOWNLOAD_FAILED"
	CodeObjectNotFound = "OBJECT_NOT_FOUND"

	// Export codes
	CodeExportFailed = "EXPORT_FAILED"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// GroupcastError is the structured error type used throughout the system.
type GroupcastError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Details   map[string]interface{}
	Cause     error
	Retryable bool
}

// Error returns a formatted error string.
func (e *GroupcastError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *GroupcastError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *GroupcastError) Is(target error) bool {
	var t *GroupcastError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new GroupcastError.
func New(category ErrorCategory, code, message string) *GroupcastError {
	return &GroupcastError{
		Category:  category,
		Code:      code,
		Message:   message,
		Retryable: isRetryable(category, code),
	}
}

// Wrap creates a new GroupcastError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *GroupcastError {
	return &GroupcastError{
		Category:  category,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryable(category, code),
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *GroupcastError) WithDetails(details map[string]interface{}) *GroupcastError {
	cp := *e
	cp.Details = details
	return &cp
}

// IsRetryable checks whether an error (or its chain) is retryable.
func IsRetryable(err error) bool {
	var ge *GroupcastError
	if errors.As(err, &ge) {
		return ge.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a GroupcastError.
func GetCategory(err error) ErrorCategory {
	var ge *GroupcastError
	if errors.As(err, &ge) {
		return ge.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a GroupcastError.
func GetCode(err error) string {
	var ge *GroupcastError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}

// isRetryable determines if an error code is retryable. Only transient
// object storage failures qualify; the local pipeline is deterministic.
func isRetryable(category ErrorCategory, code string) bool {
	switch {
	case category == ErrCategoryStorage && code == CodeUploadFailed:
		return true
	case category == ErrCategoryStorage && code == CodeDownloadFailed:
		return true
	default:
		return false
	}
}

// Convenience constructors for common errors.

func NewValidationError(code, message string) *GroupcastError {
	return New(ErrCategoryValidation, code, message)
}

func NewDatasetError(code, message string, cause error) *GroupcastError {
	return Wrap(ErrCategoryDataset, code, message, cause)
}

func NewTransformError(code, message string) *GroupcastError {
	return New(ErrCategoryTransform, code, message)
}

func NewStorageError(code, message string, cause error) *GroupcastError {
	return Wrap(ErrCategoryStorage, code, message, cause)
}

func NewExportError(message string, cause error) *GroupcastError {
	return Wrap(ErrCategoryExport, CodeExportFailed, message, cause)
}

func NewInternalError(message string, cause error) *GroupcastError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
