package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validationPayload struct {
	Items []struct {
		Quantity int `json:"quantity" binding:"required,min=1"`
	} `json:"items" binding:"required,min=1,dive"`
	PaymentMethod string `json:"paymentMethod" binding:"required,payment_method"`
}

func bindPayload(t *testing.T, body string) dto.Response {
	t.Helper()
	SetupValidator()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var p validationPayload
	err := c.ShouldBindJSON(&p)
	require.Error(t, err)
	return ValidationErrorResponse(err, "req-1")
}

func TestValidationErrorResponse_FieldErrors(t *testing.T) {
	resp := bindPayload(t, `{"items":[{"quantity":0}],"paymentMethod":"barter"}`)

	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)

	fields := resp.Error.Details["fields"].(map[string]string)
	assert.Equal(t, "This field is required", fields["items[0].quantity"])
	assert.Equal(t, "Unsupported payment method", fields["paymentMethod"])
}

func TestValidationErrorResponse_EmptyItems(t *testing.T) {
	resp := bindPayload(t, `{"items":[],"paymentMethod":"upi"}`)

	fields := resp.Error.Details["fields"].(map[string]string)
	assert.Equal(t, "Must contain at least 1 entries", fields["items"])
	assert.NotContains(t, fields, "paymentMethod")
}

func TestValidationErrorResponse_MalformedJSON(t *testing.T) {
	resp := bindPayload(t, `{"items": [`)
	assert.Contains(t, []string{dto.ErrCodeInvalidJSON, dto.ErrCodeBadRequest}, resp.Error.Code)

	resp = bindPayload(t, `{"items":"nope","paymentMethod":"upi"}`)
	assert.Equal(t, dto.ErrCodeInvalidJSON, resp.Error.Code)
}

func TestHandleValidationError(t *testing.T) {
	SetupValidator()
	router := gin.New()
	router.Use(RequestID())
	router.POST("/checkout", func(c *gin.Context) {
		var p validationPayload
		if err := c.ShouldBindJSON(&p); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(`{"items":[{"quantity":1}],"paymentMethod":"cod"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(`{"paymentMethod":"cod"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_VALIDATION")
}
