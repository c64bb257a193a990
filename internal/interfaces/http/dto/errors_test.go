package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainCodesMapToStatus(t *testing.T) {
	tests := []struct {
		domainCode string
		apiCode    string
		status     int
	}{
		{shared.CodeNotFound, ErrCodeNotFound, http.StatusNotFound},
		{shared.CodeAccessDenied, ErrCodeAccessDenied, http.StatusForbidden},
		{shared.CodeQuantityBelowMinimum, ErrCodeQuantityBelowMinimum, http.StatusUnprocessableEntity},
		{shared.CodeTotalMismatch, ErrCodeTotalMismatch, http.StatusConflict},
		{shared.CodeStockError, ErrCodeStock, http.StatusConflict},
		{shared.CodeValidationFailed, ErrCodeValidation, http.StatusBadRequest},
		{shared.CodeConcurrentModification, ErrCodeConcurrencyConflict, http.StatusConflict},
		{shared.CodeDuplicateRequest, ErrCodeDuplicateRequest, http.StatusConflict},
		{shared.CodeInternalError, ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.domainCode, func(t *testing.T) {
			code := NormalizeErrorCode(tt.domainCode)
			assert.Equal(t, tt.apiCode, code)
			assert.Equal(t, tt.status, GetHTTPStatus(code))
		})
	}
}

func TestNormalizeErrorCode_PassThrough(t *testing.T) {
	assert.Equal(t, ErrCodeTokenExpired, NormalizeErrorCode(ErrCodeTokenExpired))
	assert.Equal(t, "CUSTOM_ERROR", NormalizeErrorCode("CUSTOM_ERROR"))
}

func TestGetHTTPStatus_Unknown(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("UNKNOWN_CODE"))
}

func TestErrorResponseJSON(t *testing.T) {
	resp := NewErrorResponseWithDetails(ErrCodeStock, "Insufficient stock", "req-1", map[string]any{
		"product_id": "abc",
	})

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, false, decoded["success"])
	assert.NotContains(t, decoded, "data")

	errObj := decoded["error"].(map[string]any)
	assert.Equal(t, ErrCodeStock, errObj["code"])
	assert.Equal(t, "req-1", errObj["request_id"])
	assert.Equal(t, "abc", errObj["details"].(map[string]any)["product_id"])
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	tests := []struct {
		total    int64
		pageSize int
		pages    int
	}{
		{0, 20, 0},
		{20, 20, 1},
		{21, 20, 2},
		{5, 0, 0},
	}
	for _, tt := range tests {
		resp := NewSuccessResponseWithMeta([]int{}, tt.total, 1, tt.pageSize)
		assert.True(t, resp.Success)
		assert.Equal(t, tt.pages, resp.Meta.TotalPages)
	}
}
