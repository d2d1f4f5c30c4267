package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes used across the accounting core. The HTTP layer maps these
// to status codes; the domain only guarantees a distinguishable kind and
// an actionable message.
const (
	CodeNotFound       = "NOT_FOUND"
	CodeValidation     = "VALIDATION_ERROR"
	CodeInvalidState   = "INVALID_STATE"
	CodeConflict       = "CONFLICT"
	CodeNotImplemented = "NOT_IMPLEMENTED"
	CodeOutOfBalance   = "OUT_OF_BALANCE"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError(CodeValidation, "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError(CodeConflict, "Resource was modified by another process")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrNotImplemented      = NewDomainError(CodeNotImplemented, "Operation is not implemented")
)

// NewNotFoundError creates a NOT_FOUND error with a custom message
func NewNotFoundError(message string) *DomainError {
	return NewDomainError(CodeNotFound, message)
}

// NewValidationError creates a VALIDATION_ERROR with a custom message
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewInvalidStateError creates an INVALID_STATE error with a custom message
func NewInvalidStateError(message string) *DomainError {
	return NewDomainError(CodeInvalidState, message)
}

// NewConflictError creates a CONFLICT error with a custom message
func NewConflictError(message string) *DomainError {
	return NewDomainError(CodeConflict, message)
}

// ErrorCode extracts the domain error code from err, unwrapping as needed.
// Returns empty string when err carries no DomainError.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsNotFound reports whether err is (or wraps) a NOT_FOUND domain error
func IsNotFound(err error) bool {
	return ErrorCode(err) == CodeNotFound
}

// IsConflict reports whether err is (or wraps) a CONFLICT domain error
func IsConflict(err error) bool {
	return ErrorCode(err) == CodeConflict
}
