package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUpstream      = "UPSTREAM_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrInvalidChunkConfig   = NewDomainError(ErrCodeValidation, "chunk overlap must be smaller than max size")
	ErrEmptyConversation    = NewDomainError(ErrCodeValidation, "conversation contains no user message")
	ErrInvalidThreshold     = NewDomainError(ErrCodeValidation, "match threshold must be within [0,1]")
	ErrInvalidMatchCount    = NewDomainError(ErrCodeValidation, "match count must be positive")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Upstream service errors
var (
	ErrEmbeddingFailed  = NewDomainError(ErrCodeUpstream, "embedding service call failed")
	ErrCompletionFailed = NewDomainError(ErrCodeUpstream, "completion service call failed")
	ErrFetchFailed      = NewDomainError(ErrCodeUpstream, "page fetch failed after retries")
)
