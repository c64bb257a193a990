package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// PlaceOrderItemInput is one requested line of a checkout
type PlaceOrderItemInput struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// PlaceOrderRequest is the checkout payload
type PlaceOrderRequest struct {
	Items           []PlaceOrderItemInput  `json:"items" binding:"required,min=1,dive"`
	ShippingAddress valueobject.AddressDTO `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                 `json:"paymentMethod" binding:"required,payment_method"`
	// TotalAmount is the total the client displayed to the buyer
	TotalAmount *decimal.Decimal `json:"totalAmount" binding:"required"`
	// IdempotencyKey comes from the Idempotency-Key header, not the body
	IdempotencyKey string `json:"-"`
}

// OrderItemResponse is one line of an order response
type OrderItemResponse struct {
	ProductID           uuid.UUID           `json:"productId"`
	ProductName         string              `json:"productName"`
	ProductSKU          string              `json:"productSku"`
	Quantity            int                 `json:"quantity"`
	PriceAtTime         decimal.Decimal     `json:"priceAtTime"`
	ItemTotal           decimal.Decimal     `json:"itemTotal"`
	StockStatusAtTime   catalog.StockStatus `json:"stockStatusAtTime"`
	TierApplied         *catalog.PriceTier  `json:"tierApplied,omitempty"`
	RequiresCustomQuote bool                `json:"requiresCustomQuote"`
}

// OrderResponse represents a placed order in API responses
type OrderResponse struct {
	ID               uuid.UUID              `json:"id"`
	OrderNumber      string                 `json:"orderNumber"`
	BuyerID          uuid.UUID              `json:"buyerId"`
	BuyerClass       string                 `json:"buyerClass"`
	Items            []OrderItemResponse    `json:"items"`
	TotalAmount      decimal.Decimal        `json:"totalAmount"`
	Currency         string                 `json:"currency"`
	ShippingAddress  valueobject.AddressDTO `json:"shippingAddress"`
	PaymentMethod    string                 `json:"paymentMethod"`
	Status           string                 `json:"status"`
	Metadata         order.Metadata         `json:"metadata"`
	CustomQuoteItems []OrderItemResponse    `json:"customQuoteItems,omitempty"`
	CreatedAt        time.Time              `json:"createdAt"`
	Version          int                    `json:"version"`
}

// OrderListItemResponse is the summary row returned by order listings
type OrderListItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	OrderNumber string          `json:"orderNumber"`
	ItemCount   int             `json:"itemCount"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ListOrdersFilter carries paging parameters for order listings
type ListOrdersFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// PriceQuoteResponse is the price a buyer would pay for a quantity of one product
type PriceQuoteResponse struct {
	ProductID            uuid.UUID          `json:"productId"`
	Quantity             int                `json:"quantity"`
	UnitPrice            decimal.Decimal    `json:"unitPrice"`
	LineTotal            decimal.Decimal    `json:"lineTotal"`
	Currency             string             `json:"currency"`
	TierApplied          *catalog.PriceTier `json:"tierApplied,omitempty"`
	RequiresCustomQuote  bool               `json:"requiresCustomQuote"`
	MinimumOrderQuantity int                `json:"minimumOrderQuantity,omitempty"`
	Eligible             bool               `json:"eligible"`
	IneligibleReason     string             `json:"ineligibleReason,omitempty"`
}

// ToOrderItemResponse converts an order line to its response form
func ToOrderItemResponse(it order.Item) OrderItemResponse {
	return OrderItemResponse{
		ProductID:           it.ProductID,
		ProductName:         it.ProductName,
		ProductSKU:          it.ProductSKU,
		Quantity:            it.Quantity,
		PriceAtTime:         it.PriceAtTime,
		ItemTotal:           it.ItemTotal,
		StockStatusAtTime:   it.StockStatusAtTime,
		TierApplied:         it.TierApplied,
		RequiresCustomQuote: it.RequiresCustomQuote,
	}
}

// ToOrderResponse converts a domain order to a response DTO
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = ToOrderItemResponse(it)
	}
	var quoted []OrderItemResponse
	for _, it := range o.CustomQuoteItems() {
		quoted = append(quoted, ToOrderItemResponse(it))
	}
	return OrderResponse{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		BuyerID:          o.BuyerID,
		BuyerClass:       o.BuyerClass.String(),
		Items:            items,
		TotalAmount:      o.TotalAmount,
		Currency:         o.Currency.String(),
		ShippingAddress:  o.ShippingAddress.ToDTO(),
		PaymentMethod:    string(o.PaymentMethod),
		Status:           string(o.Status),
		Metadata:         o.Metadata,
		CustomQuoteItems: quoted,
		CreatedAt:        o.CreatedAt,
		Version:          o.Version,
	}
}

// ToOrderListItemResponse converts a domain order to its summary form
func ToOrderListItemResponse(o *order.Order) OrderListItemResponse {
	return OrderListItemResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		ItemCount:   len(o.Items),
		TotalAmount: o.TotalAmount,
		Currency:    o.Currency.String(),
		Status:      string(o.Status),
		CreatedAt:   o.CreatedAt,
	}
}
