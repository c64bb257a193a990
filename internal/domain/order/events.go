package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// AggregateTypeOrder is the aggregate type name used on events
const AggregateTypeOrder = "Order"

// EventTypeOrderPlaced is raised once an order has been committed
const EventTypeOrderPlaced = "OrderPlaced"

// PlacedItemInfo summarizes an order line for downstream consumers
type PlacedItemInfo struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductSKU  string          `json:"product_sku"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ItemTotal   decimal.Decimal `json:"item_total"`
	StockStatus string          `json:"stock_status"`
}

// OrderPlacedEvent is raised when a checkout commits
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderID             uuid.UUID        `json:"order_id"`
	OrderNumber         string           `json:"order_number"`
	BuyerID             uuid.UUID        `json:"buyer_id"`
	BuyerClass          string           `json:"buyer_class"`
	TotalAmount         decimal.Decimal  `json:"total_amount"`
	Currency            string           `json:"currency"`
	Items               []PlacedItemInfo `json:"items"`
	HasPreOrderItems    bool             `json:"has_pre_order_items"`
	HasBackOrderItems   bool             `json:"has_back_order_items"`
	RequiresCustomQuote bool             `json:"requires_custom_quote"`
}

// NewOrderPlacedEvent creates an OrderPlacedEvent for o
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	items := make([]PlacedItemInfo, len(o.Items))
	customQuote := false
	for i, it := range o.Items {
		items[i] = PlacedItemInfo{
			ProductID:   it.ProductID,
			ProductSKU:  it.ProductSKU,
			Quantity:    it.Quantity,
			UnitPrice:   it.PriceAtTime,
			ItemTotal:   it.ItemTotal,
			StockStatus: string(it.StockStatusAtTime),
		}
		customQuote = customQuote || it.RequiresCustomQuote
	}
	return &OrderPlacedEvent{
		BaseDomainEvent:     shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, o.ID),
		OrderID:             o.ID,
		OrderNumber:         o.OrderNumber,
		BuyerID:             o.BuyerID,
		BuyerClass:          o.BuyerClass.String(),
		TotalAmount:         o.TotalAmount,
		Currency:            o.Currency.String(),
		Items:               items,
		HasPreOrderItems:    o.Metadata.HasPreOrderItems,
		HasBackOrderItems:   o.Metadata.HasBackOrderItems,
		RequiresCustomQuote: customQuote,
	}
}
