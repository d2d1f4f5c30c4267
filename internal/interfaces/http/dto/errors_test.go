package dto

import (
	"net/http"
	"testing"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{shared.CodeNotFound, http.StatusNotFound},
		{shared.CodeValidation, http.StatusBadRequest},
		{shared.CodeConflict, http.StatusConflict},
		{shared.CodeInvalidState, http.StatusUnprocessableEntity},
		{shared.CodeOutOfBalance, http.StatusUnprocessableEntity},
		{shared.CodeNotImplemented, http.StatusNotImplemented},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{"SOMETHING_UNMAPPED", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a", "b"}, 45, 2, 20)

	assert.True(t, resp.Success)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}
