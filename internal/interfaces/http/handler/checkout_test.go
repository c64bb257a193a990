package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// newTestEngine wires request ids and, when buyer is non-nil, an authenticated buyer
func newTestEngine(buyer *identity.Buyer) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	if buyer != nil {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.JWTBuyerKey, *buyer)
			c.Next()
		})
	}
	return r
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

const validCheckoutBody = `{
	"items": [{"productId": "6f1c1f3e-8a57-4c2a-9d3e-3b0d3f7a1a11", "quantity": 2}],
	"shippingAddress": {
		"recipient": "Asha Rao", "phone": "9876543210", "line1": "12 MG Road",
		"city": "Bengaluru", "state": "KA", "postalCode": "560001", "country": "IN"
	},
	"paymentMethod": "upi",
	"totalAmount": "240.00"
}`

func TestCheckoutHandler_PlaceOrder_Created(t *testing.T) {
	buyer := identity.NewBuyer(uuid.New(), identity.BuyerClassIndividual)
	svc := new(MockCheckoutService)
	h := NewCheckoutHandler(svc)

	orderID := uuid.New()
	svc.On("PlaceOrder", mock.Anything, buyer, mock.MatchedBy(func(req checkout.PlaceOrderRequest) bool {
		return req.IdempotencyKey == "key-1" &&
			len(req.Items) == 1 && req.Items[0].Quantity == 2 &&
			req.TotalAmount != nil && req.TotalAmount.Equal(decimal.NewFromInt(240))
	})).Return(&checkout.OrderResponse{ID: orderID, OrderNumber: "ORD-20261017-ABCDEF12"}, nil)

	r := newTestEngine(&buyer)
	r.POST("/checkout", h.PlaceOrder)

	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(validCheckoutBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderIdempotencyKey, "key-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, orderID.String(), resp.Data.(map[string]any)["id"])
	svc.AssertExpectations(t)
}

func TestCheckoutHandler_PlaceOrder_DomainErrors(t *testing.T) {
	buyer := identity.NewBuyer(uuid.New(), identity.BuyerClassCorporate)

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"stock", shared.NewDomainError(shared.CodeStockError, "Insufficient stock").WithDetails(map[string]any{"available": 3}), http.StatusConflict, dto.ErrCodeStock},
		{"total mismatch", shared.NewDomainError(shared.CodeTotalMismatch, "Order total changed"), http.StatusConflict, dto.ErrCodeTotalMismatch},
		{"below moq", shared.NewDomainError(shared.CodeQuantityBelowMinimum, "Below minimum"), http.StatusUnprocessableEntity, dto.ErrCodeQuantityBelowMinimum},
		{"access denied", shared.NewDomainError(shared.CodeAccessDenied, "Corporate only"), http.StatusForbidden, dto.ErrCodeAccessDenied},
		{"duplicate", shared.ErrDuplicateRequest, http.StatusConflict, dto.ErrCodeDuplicateRequest},
		{"concurrent", shared.ErrConcurrentModification, http.StatusConflict, dto.ErrCodeConcurrencyConflict},
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"infrastructure", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCheckoutService)
			svc.On("PlaceOrder", mock.Anything, buyer, mock.Anything).Return(nil, tt.err)

			r := newTestEngine(&buyer)
			r.POST("/checkout", NewCheckoutHandler(svc).PlaceOrder)

			req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(validCheckoutBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.RequestID)
			assert.NotContains(t, w.Body.String(), "connection reset")
		})
	}
}

func TestCheckoutHandler_PlaceOrder_StockDetails(t *testing.T) {
	buyer := identity.NewBuyer(uuid.New(), identity.BuyerClassIndividual)
	svc := new(MockCheckoutService)
	svc.On("PlaceOrder", mock.Anything, buyer, mock.Anything).Return(nil,
		shared.NewDomainError(shared.CodeStockError, "Insufficient stock").WithDetails(map[string]any{"available": 3}))

	r := newTestEngine(&buyer)
	r.POST("/checkout", NewCheckoutHandler(svc).PlaceOrder)

	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(validCheckoutBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	resp := decodeResponse(t, w)
	assert.Equal(t, float64(3), resp.Error.Details["available"])
}

func TestCheckoutHandler_PlaceOrder_BadRequests(t *testing.T) {
	buyer := identity.NewBuyer(uuid.New(), identity.BuyerClassIndividual)

	tests := []struct {
		name   string
		body   string
		header string
		code   string
	}{
		{"empty items", `{"items":[],"shippingAddress":{},"paymentMethod":"upi","totalAmount":"1"}`, "", dto.ErrCodeValidation},
		{"missing total", strings.Replace(validCheckoutBody, `"totalAmount": "240.00"`, `"totalAmount": null`, 1), "", dto.ErrCodeValidation},
		{"unknown payment method", strings.Replace(validCheckoutBody, `"upi"`, `"barter"`, 1), "", dto.ErrCodeValidation},
		{"malformed json", `{"items": [`, "", ""},
		{"oversized idempotency key", validCheckoutBody, strings.Repeat("k", 129), dto.ErrCodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCheckoutService)
			r := newTestEngine(&buyer)
			r.POST("/checkout", NewCheckoutHandler(svc).PlaceOrder)

			req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.header != "" {
				req.Header.Set(middleware.HeaderIdempotencyKey, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeResponse(t, w).Error.Code)
			}
			svc.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCheckoutHandler_RequiresBuyer(t *testing.T) {
	svc := new(MockCheckoutService)
	r := newTestEngine(nil)
	r.POST("/checkout", NewCheckoutHandler(svc).PlaceOrder)

	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(validCheckoutBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeUnauthorized, decodeResponse(t, w).Error.Code)
}

func TestCheckoutHandler_QuotePrice(t *testing.T) {
	buyer := identity.NewBuyer(uuid.New(), identity.BuyerClassCorporate)
	productID := uuid.New()

	svc := new(MockCheckoutService)
	svc.On("QuotePrice", mock.Anything, buyer, productID, 50).Return(&checkout.PriceQuoteResponse{
		ProductID: productID,
		Quantity:  50,
		UnitPrice: decimal.NewFromInt(90),
		LineTotal: decimal.NewFromInt(4500),
		Eligible:  true,
	}, nil)

	r := newTestEngine(&buyer)
	r.GET("/products/:id/quote", NewCheckoutHandler(svc).QuotePrice)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/"+productID.String()+"/quote?quantity=50", nil))

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "4500", data["lineTotal"])
	svc.AssertExpectations(t)
}

func TestCheckoutHandler_QuotePrice_DefaultsToOneUnit(t *testing.T) {
	buyer := identity.NewBuyer(uuid.New(), identity.BuyerClassIndividual)
	productID := uuid.New()

	svc := new(MockCheckoutService)
	svc.On("QuotePrice", mock.Anything, buyer, productID, 1).Return(&checkout.PriceQuoteResponse{Quantity: 1}, nil)

	r := newTestEngine(&buyer)
	r.GET("/products/:id/quote", NewCheckoutHandler(svc).QuotePrice)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/"+productID.String()+"/quote", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestCheckoutHandler_QuotePrice_BadInput(t *testing.T) {
	buyer := identity.NewBuyer(uuid.New(), identity.BuyerClassIndividual)
	r := newTestEngine(&buyer)
	r.GET("/products/:id/quote", NewCheckoutHandler(new(MockCheckoutService)).QuotePrice)

	for _, path := range []string{
		"/products/not-a-uuid/quote",
		"/products/" + uuid.NewString() + "/quote?quantity=0",
		"/products/" + uuid.NewString() + "/quote?quantity=abc",
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}
