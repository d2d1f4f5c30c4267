package dto

import (
	"net/http"

	"github.com/finbooks/backend/internal/domain/shared"
)

// HTTP-layer error codes for failures that never reach the domain
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeValidation is used when request fields fail validation
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeUnauthorized is used when authentication is required but missing
	ErrCodeUnauthorized = "UNAUTHORIZED"
)

// ErrorCodeHTTPStatus maps domain and HTTP-layer error codes to status
// codes. Business-rule rejections (unbalanced entries, bad state
// transitions) are 422: the request was well-formed but the operation
// is not allowed.
var ErrorCodeHTTPStatus = map[string]int{
	shared.CodeNotFound:       http.StatusNotFound,
	shared.CodeValidation:     http.StatusBadRequest,
	shared.CodeConflict:       http.StatusConflict,
	shared.CodeInvalidState:   http.StatusUnprocessableEntity,
	shared.CodeOutOfBalance:   http.StatusUnprocessableEntity,
	shared.CodeNotImplemented: http.StatusNotImplemented,

	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
