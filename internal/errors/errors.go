package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType represents different types of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeDatabase   ErrorType = "database"
	ErrorTypeExternal   ErrorType = "external_api"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypePermission ErrorType = "permission"
)

// AppError represents an application error with additional context
type AppError struct {
	Type     ErrorType
	Message  string
	Code     string
	Internal error
	Source   string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the internal error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Is checks if the error matches the target
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return errors.Is(e.Internal, target)
}

// New creates a new AppError
func New(errorType ErrorType, code, message string) *AppError {
	_, file, line, _ := runtime.Caller(1)
	return &AppError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Source:  fmt.Sprintf("%s:%d", file, line),
	}
}

// Wrap wraps an existing error into AppError
func Wrap(err error, errorType ErrorType, code, message string) *AppError {
	_, file, line, _ := runtime.Caller(1)
	return &AppError{
		Type:     errorType,
		Code:     code,
		Message:  message,
		Internal: err,
		Source:   fmt.Sprintf("%s:%d", file, line),
	}
}

// IsNotFound reports whether err is a not-found style condition. These are
// surfaced to the user as warning text, never treated as failures.
func IsNotFound(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == ErrorTypeNotFound
	}
	return false
}

// AsAppError unwraps err into target, mirroring errors.As.
func AsAppError(err error, target **AppError) bool {
	return errors.As(err, target)
}

// Predefined errors
var (
	ErrNoPendingPlan   = New(ErrorTypeNotFound, "NO_PENDING_PLAN", "no pending plan to approve")
	ErrProjectNotFound = New(ErrorTypeNotFound, "PROJECT_NOT_FOUND", "project not found")
	ErrNoMatch         = New(ErrorTypeNotFound, "NO_MATCH", "no matching record found")
	ErrNoCurrentBlock  = New(ErrorTypeNotFound, "NO_CURRENT_BLOCK", "no active training block")
	ErrUnauthorized    = New(ErrorTypePermission, "UNAUTHORIZED", "unauthorized access")
)

// Convenience constructors for common error classes
func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, "VALIDATION", message)
}

func NewDatabaseError(err error) *AppError {
	return Wrap(err, ErrorTypeDatabase, "DB_ERROR", "database operation failed")
}

func NewExternalAPIError(err error, api string) *AppError {
	return Wrap(err, ErrorTypeExternal, "EXTERNAL_API", fmt.Sprintf("%s API error", api))
}
