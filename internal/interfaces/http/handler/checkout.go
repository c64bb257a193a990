package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// maxIdempotencyKeyLength matches the orders.idempotency_key column
const maxIdempotencyKeyLength = 128

// CheckoutService is the order placement use case
type CheckoutService interface {
	PlaceOrder(ctx context.Context, buyer identity.Buyer, req checkout.PlaceOrderRequest) (*checkout.OrderResponse, error)
	QuotePrice(ctx context.Context, buyer identity.Buyer, productID uuid.UUID, quantity int) (*checkout.PriceQuoteResponse, error)
}

// CheckoutHandler serves order placement and price quotes
type CheckoutHandler struct {
	BaseHandler
	service CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(service CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// PlaceOrder handles POST /checkout. An optional Idempotency-Key header makes
// retries of the same checkout safe.
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	buyer, ok := h.requireBuyer(c)
	if !ok {
		return
	}

	var req checkout.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	req.IdempotencyKey = c.GetHeader(middleware.HeaderIdempotencyKey)
	if len(req.IdempotencyKey) > maxIdempotencyKeyLength {
		h.BadRequest(c, "Idempotency-Key must be at most 128 characters")
		return
	}

	order, err := h.service.PlaceOrder(c.Request.Context(), buyer, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// QuotePrice handles GET /products/:id/quote?quantity=n
func (h *CheckoutHandler) QuotePrice(c *gin.Context) {
	buyer, ok := h.requireBuyer(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}
	quantity := 1
	if raw := c.Query("quantity"); raw != "" {
		quantity, err = strconv.Atoi(raw)
		if err != nil || quantity < 1 {
			h.BadRequest(c, "quantity must be a positive integer")
			return
		}
	}

	quote, err := h.service.QuotePrice(c.Request.Context(), buyer, productID, quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}
