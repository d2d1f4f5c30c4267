package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestGetTenantID(t *testing.T) {
	t.Run("parses header", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/", nil)

		want := uuid.New()
		c.Request.Header.Set("X-Tenant-ID", want.String())

		got, err := getTenantID(c)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("errors when header missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/", nil)

		_, err := getTenantID(c)
		assert.Error(t, err)
	})

	t.Run("errors on malformed header", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/", nil)
		c.Request.Header.Set("X-Tenant-ID", "not-a-uuid")

		_, err := getTenantID(c)
		assert.Error(t, err)
	})
}

func TestBaseHandlerSuccess(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.Success(c, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestBaseHandlerSuccessWithMeta(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.SuccessWithMeta(c, []string{"item1", "item2"}, 100, 1, 10)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(100), resp.Meta.Total)
	assert.Equal(t, 10, resp.Meta.TotalPages)
}

func TestHandleDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not found",
			err:        shared.NewNotFoundError("Account not found"),
			wantStatus: http.StatusNotFound,
			wantCode:   shared.CodeNotFound,
		},
		{
			name:       "validation",
			err:        shared.NewValidationError("Amount must be positive"),
			wantStatus: http.StatusBadRequest,
			wantCode:   shared.CodeValidation,
		},
		{
			name:       "conflict",
			err:        shared.NewConflictError("Account code already exists"),
			wantStatus: http.StatusConflict,
			wantCode:   shared.CodeConflict,
		},
		{
			name:       "invalid state",
			err:        shared.NewInvalidStateError("Only draft transactions can be posted"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   shared.CodeInvalidState,
		},
		{
			name:       "out of balance",
			err:        shared.NewDomainError(shared.CodeOutOfBalance, "Debits and credits do not balance"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   shared.CodeOutOfBalance,
		},
		{
			name:       "wrapped domain error",
			err:        fmt.Errorf("loading account: %w", shared.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   shared.CodeNotFound,
		},
		{
			name:       "unknown error",
			err:        fmt.Errorf("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   dto.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/", nil)

			h.HandleDomainError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}
