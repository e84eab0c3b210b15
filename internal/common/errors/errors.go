// Package errors provides standardized error handling for the API layer.
package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeEmbeddingProviderFailed ErrorCode = "EMBEDDING_PROVIDER_FAILED"
	ErrCodeListingSourceFailed     ErrorCode = "LISTING_SOURCE_FAILED"

	ErrCodeDatabaseOperationFailed ErrorCode = "DATABASE_OPERATION_FAILED"
	ErrCodeSearchQueryFailed       ErrorCode = "SEARCH_QUERY_FAILED"

	ErrCodeValidationFailed     ErrorCode = "VALIDATION_FAILED"
	ErrCodeAuthenticationFailed ErrorCode = "AUTHENTICATION_FAILED"
	ErrCodeNotFound             ErrorCode = "NOT_FOUND"
	ErrCodeDuplicateResource    ErrorCode = "DUPLICATE_RESOURCE"
	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewEmbeddingProviderError wraps an upstream embedding call failure. Not
// retried; the caller surfaces it as a 500.
func NewEmbeddingProviderError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmbeddingProviderFailed,
		Message:   "Embedding provider call failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewListingSourceError wraps a failure of the external job-listing fetch.
func NewListingSourceError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeListingSourceFailed,
		Message:   "External listing fetch failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStorageError wraps a database read or write failure. The code is
// distinct from generic failures so clients can tell the layers apart.
func NewStorageError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseOperationFailed,
		Message:   "Database operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryError wraps a listing-index query failure.
func NewSearchQueryError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Search query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationError builds a 400-level error with a human-readable message.
func NewValidationError(message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuthenticationError builds a 401-level error.
func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthenticationFailed,
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError builds a 404-level error.
func NewNotFoundError(resource string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", resource),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateError builds a 400-level error for uniqueness violations.
func NewDuplicateError(message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateResource,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps anything unexpected.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "An unexpected error occurred",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// HTTPStatus maps an error code to the response status the boundary writes.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed, ErrCodeDuplicateResource:
		return http.StatusBadRequest
	case ErrCodeAuthenticationFailed:
		return http.StatusUnauthorized
	case ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
