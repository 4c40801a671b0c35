package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeConfiguration     ErrorType = "configuration"
	ErrorTypeValidation        ErrorType = "validation"
	ErrorTypeDimensionMismatch ErrorType = "dimension_mismatch"
	ErrorTypeRateLimit         ErrorType = "rate_limit"
	ErrorTypeExternal          ErrorType = "external"
	ErrorTypeNotFound          ErrorType = "not_found"
	ErrorTypeInternal          ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Domain error variables

var (
	// Configuration Errors
	ErrInvalidChunkConfig = NewDomainError(ErrorTypeConfiguration, "chunk overlap must be smaller than chunk size", nil)
	ErrInvalidCacheConfig = NewDomainError(ErrorTypeConfiguration, "invalid cache configuration", nil)
	ErrInvalidRateConfig  = NewDomainError(ErrorTypeConfiguration, "invalid rate limit configuration", nil)

	// Validation Errors
	ErrInvalidQuery   = NewDomainError(ErrorTypeValidation, "query must not be empty and k must be positive", nil)
	ErrInvalidProfile = NewDomainError(ErrorTypeValidation, "invalid user profile", nil)
	ErrNoDocuments    = NewDomainError(ErrorTypeValidation, "no documents provided for ingestion", nil)

	// Index Errors
	ErrDimensionMismatch = NewDomainError(ErrorTypeDimensionMismatch, "vector dimension does not match index dimension", nil)
	ErrIndexNotReady     = NewDomainError(ErrorTypeNotFound, "no knowledge index has been published", nil)

	// External Errors
	ErrEmbeddingUnavailable = NewDomainError(ErrorTypeExternal, "embedding service unavailable", nil)
	ErrServiceUnavailable   = NewDomainError(ErrorTypeExternal, "external service unavailable", nil)

	// Rate Limit Errors
	ErrRateLimited = NewDomainError(ErrorTypeRateLimit, "rate budget exhausted for service", nil)
)

// IsConfigurationError checks if an error is a configuration error
func IsConfigurationError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeConfiguration
	}
	return false
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeValidation
	}
	return false
}

// IsDimensionMismatchError checks if an error is a dimension mismatch error
func IsDimensionMismatchError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeDimensionMismatch
	}
	return false
}

// IsRateLimitError checks if an error is a rate limit error
func IsRateLimitError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeRateLimit
	}
	return false
}

// IsExternalError checks if an error is an external provider error
func IsExternalError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeExternal
	}
	return false
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeNotFound
	}
	return false
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapError wraps an error with additional context
func WrapError(errType ErrorType, message string, err error) error {
	return NewDomainError(errType, message, err)
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}

// WrapExternal wraps an error as an external provider error
func WrapExternal(message string, err error) error {
	return NewDomainError(ErrorTypeExternal, message, err)
}
