package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Domain errors
	ErrorTypeValidation      ErrorType = "VALIDATION"
	ErrorTypeNotFound        ErrorType = "NOT_FOUND"
	ErrorTypeConflict        ErrorType = "CONFLICT"
	ErrorTypeUnauthorized    ErrorType = "UNAUTHORIZED"
	ErrorTypeUnknownNodeType ErrorType = "UNKNOWN_NODE_TYPE"
	ErrorTypeInvalidEndpoint ErrorType = "INVALID_ENDPOINT"
	ErrorTypeSchema          ErrorType = "SCHEMA"

	// Application errors
	ErrorTypeInternal ErrorType = "INTERNAL"
	ErrorTypeSave     ErrorType = "SAVE"

	// Infrastructure errors
	ErrorTypeDatabase ErrorType = "DATABASE"
	ErrorTypeExternal ErrorType = "EXTERNAL"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails adds error details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// Constructor functions for common error types

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewUnknownNodeTypeError signals that a node type is absent from the registry
func NewUnknownNodeTypeError(nodeType string) *AppError {
	return &AppError{
		Type:       ErrorTypeUnknownNodeType,
		Message:    fmt.Sprintf("unknown node type %q", nodeType),
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewInvalidEndpointError signals an edge referencing a non-existent node id
func NewInvalidEndpointError(nodeID string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidEndpoint,
		Message:    fmt.Sprintf("edge endpoint %q does not resolve to a node", nodeID),
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewSchemaError signals a malformed import payload
func NewSchemaError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeSchema,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewSaveError signals a failed persistence round-trip
func NewSaveError(boardID string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeSave,
		Message:    fmt.Sprintf("failed to save board %q", boardID),
		Cause:      err,
		HTTPStatus: http.StatusBadGateway,
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewDatabaseError creates a database error
func NewDatabaseError(operation string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeDatabase,
		Message:    fmt.Sprintf("database operation '%s' failed", operation),
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewExternalError creates an external service error
func NewExternalError(service string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Message:    fmt.Sprintf("external service '%s' error", service),
		Cause:      err,
		HTTPStatus: http.StatusBadGateway,
	}
}

// Helper functions

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsUnknownNodeType checks if an error rejects a node type
func IsUnknownNodeType(err error) bool {
	return IsType(err, ErrorTypeUnknownNodeType)
}

// IsInvalidEndpoint checks if an error rejects an edge endpoint
func IsInvalidEndpoint(err error) bool {
	return IsType(err, ErrorTypeInvalidEndpoint)
}

// IsSchema checks if an error is a schema error
func IsSchema(err error) bool {
	return IsType(err, ErrorTypeSchema)
}

// IsSave checks if an error is a save error
func IsSave(err error) bool {
	return IsType(err, ErrorTypeSave)
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	return IsType(err, ErrorTypeConflict)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	// If it's already an AppError, add context to message
	if appErr := GetAppError(err); appErr != nil {
		appErr.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		return appErr
	}

	// Otherwise create a new internal error
	return NewInternalError(message).WithCause(err)
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
