package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeConfiguration represents missing or invalid AI settings (400)
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeValidation represents malformed inbound requests (400)
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeAuthentication represents missing or invalid credentials (401)
	ErrorTypeAuthentication ErrorType = "authentication"
	// ErrorTypeAuthorization represents a caller lacking rights (403)
	ErrorTypeAuthorization ErrorType = "authorization"
	// ErrorTypeNotFound represents an unknown identifier (404)
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeTypeMismatch represents an identifier type that differs from the stored document type (400)
	ErrorTypeTypeMismatch ErrorType = "type_mismatch"
	// ErrorTypeRateLimit represents a throttled identity (429)
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeProvider represents provider transport failures: network, timeout, non-2xx, malformed body (502)
	ErrorTypeProvider ErrorType = "provider"
	// ErrorTypeEmptyOutput represents a successful provider call without usable text
	ErrorTypeEmptyOutput ErrorType = "empty_output"
	// ErrorTypeSchemaUnavailable represents a failing schema collaborator
	ErrorTypeSchemaUnavailable ErrorType = "schema_unavailable"
	// ErrorTypeInternal represents internal server errors (500)
	ErrorTypeInternal ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Code       string    `json:"code,omitzero"`
	StatusCode int       `json:"-"`
	Retryable  bool      `json:"retryable"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap allows error unwrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether the error is retryable
func (e *AppError) IsRetryable() bool {
	return e.Retryable
}

// GetStatusCode returns the HTTP status code for the error
func (e *AppError) GetStatusCode() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}

	switch e.Type {
	case ErrorTypeConfiguration, ErrorTypeValidation, ErrorTypeTypeMismatch:
		return http.StatusBadRequest
	case ErrorTypeAuthentication:
		return http.StatusUnauthorized
	case ErrorTypeAuthorization:
		return http.StatusForbidden
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	case ErrorTypeProvider:
		return http.StatusBadGateway
	case ErrorTypeEmptyOutput:
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

// IsErrorType reports whether err is an *AppError of the given type
func IsErrorType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// NewConfigurationError reports missing AI settings
func NewConfigurationError(missing []string) *AppError {
	return &AppError{
		Type:       ErrorTypeConfiguration,
		Message:    fmt.Sprintf("AI settings are incomplete: missing %v", missing),
		Code:       "CONFIGURATION_INCOMPLETE",
		StatusCode: http.StatusBadRequest,
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewNotFoundError reports an identifier that resolves to nothing
func NewNotFoundError(identifier string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("no document found for identifier %q", identifier),
		Code:       "DOCUMENT_NOT_FOUND",
		StatusCode: http.StatusNotFound,
	}
}

// NewTypeMismatchError reports an identifier whose type differs from the stored document
func NewTypeMismatchError(requested, actual string) *AppError {
	return &AppError{
		Type:       ErrorTypeTypeMismatch,
		Message:    fmt.Sprintf("identifier type %q does not match document type %q", requested, actual),
		Code:       "TYPE_MISMATCH",
		StatusCode: http.StatusBadRequest,
	}
}

// NewAccessDeniedError reports a caller lacking the rights for a resource
func NewAccessDeniedError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthorization,
		Message:    message,
		Code:       "ACCESS_DENIED",
		StatusCode: http.StatusForbidden,
	}
}

// NewAuthenticationError reports missing or invalid credentials
func NewAuthenticationError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthentication,
		Message:    message,
		Code:       "UNAUTHENTICATED",
		StatusCode: http.StatusUnauthorized,
		Cause:      cause,
	}
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError() *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimit,
		Message:    "rate limit exceeded",
		Code:       "RATE_LIMIT_EXCEEDED",
		StatusCode: http.StatusTooManyRequests,
		Retryable:  true,
	}
}

// NewProviderError creates a provider transport error
func NewProviderError(provider, message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeProvider,
		Message:    fmt.Sprintf("provider %s error: %s", provider, message),
		Code:       fmt.Sprintf("PROVIDER_%s_ERROR", provider),
		StatusCode: http.StatusBadGateway,
		Retryable:  true,
		Cause:      cause,
	}
}

// CodeProviderAuthRejected marks provider errors caused by a rejected API key.
const CodeProviderAuthRejected = "PROVIDER_AUTH_REJECTED"

// NewProviderAuthError creates a provider transport error for a 401 or 403 reply
func NewProviderAuthError(provider string, status int, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeProvider,
		Message:    fmt.Sprintf("provider %s rejected the credentials (status %d)", provider, status),
		Code:       CodeProviderAuthRejected,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

// IsProviderAuthRejected reports whether err is a rejected-credentials provider error.
func IsProviderAuthRejected(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == CodeProviderAuthRejected
}

// NewProviderTimeoutError creates a provider transport error for an expired deadline
func NewProviderTimeoutError(provider string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeProvider,
		Message:    fmt.Sprintf("provider %s did not respond in time", provider),
		Code:       "PROVIDER_TIMEOUT",
		StatusCode: http.StatusBadGateway,
		Retryable:  true,
		Cause:      cause,
	}
}

// NewEmptyOutputError reports a provider reply without visible text
func NewEmptyOutputError(provider string) *AppError {
	return &AppError{
		Type:      ErrorTypeEmptyOutput,
		Message:   fmt.Sprintf("provider %s returned no visible output", provider),
		Code:      "EMPTY_OUTPUT",
		Retryable: true,
	}
}

// NewSchemaUnavailableError wraps a failing schema collaborator
func NewSchemaUnavailableError(cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeSchemaUnavailable,
		Message: "schema snapshot unavailable",
		Code:    "SCHEMA_UNAVAILABLE",
		Cause:   cause,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    "internal server error",
		StatusCode: http.StatusInternalServerError,
		Cause:      fmt.Errorf("%s: %w", message, cause),
	}
}

// SanitizeError sanitizes an error for external consumption
func SanitizeError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		// Return a copy without internal details
		return &AppError{
			Type:       appErr.Type,
			Message:    appErr.Message,
			Code:       appErr.Code,
			StatusCode: appErr.GetStatusCode(),
			Retryable:  appErr.Retryable,
		}
	}

	return SanitizeError(NewInternalError("an unexpected error occurred", err))
}
