package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// OrderQueries reads a buyer's orders
type OrderQueries interface {
	GetByID(ctx context.Context, buyerID, orderID uuid.UUID) (*checkout.OrderResponse, error)
	List(ctx context.Context, buyerID uuid.UUID, filter checkout.ListOrdersFilter) (shared.Paginated[checkout.OrderListItemResponse], error)
}

// OrderHandler serves the buyer's order history
type OrderHandler struct {
	BaseHandler
	queries OrderQueries
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(queries OrderQueries) *OrderHandler {
	return &OrderHandler{queries: queries}
}

// GetByID handles GET /orders/:id. Orders of other buyers answer 404.
func (h *OrderHandler) GetByID(c *gin.Context) {
	buyer, ok := h.requireBuyer(c)
	if !ok {
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.queries.GetByID(c.Request.Context(), buyer.ID, uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List handles GET /orders, newest first
func (h *OrderHandler) List(c *gin.Context) {
	buyer, ok := h.requireBuyer(c)
	if !ok {
		return
	}

	var filter checkout.ListOrdersFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	page, err := h.queries.List(c.Request.Context(), buyer.ID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
