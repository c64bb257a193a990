package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	OrderNumber         string                      `gorm:"type:varchar(32);not null;uniqueIndex"`
	BuyerID             uuid.UUID                   `gorm:"type:uuid;not null;index;uniqueIndex:idx_orders_buyer_idempotency,priority:1"`
	BuyerClass          identity.BuyerClass         `gorm:"type:varchar(20);not null"`
	TotalAmount         decimal.Decimal             `gorm:"type:numeric;not null"`
	Currency            valueobject.Currency        `gorm:"type:varchar(3);not null"`
	ShippingAddress     valueobject.ShippingAddress `gorm:"type:jsonb;not null"`
	PaymentMethod       order.PaymentMethod         `gorm:"type:varchar(20);not null"`
	Status              order.Status                `gorm:"type:varchar(20);not null;index"`
	HasCorporatePricing bool                        `gorm:"not null;default:false"`
	HasPreOrderItems    bool                        `gorm:"not null;default:false"`
	HasBackOrderItems   bool                        `gorm:"not null;default:false"`
	IdempotencyKey      *string                     `gorm:"type:varchar(128);uniqueIndex:idx_orders_buyer_idempotency,priority:2"`
	Items               []OrderItemModel            `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *order.Order {
	o := order.RestoreOrder(m.ID, m.Version, m.CreatedAt, m.UpdatedAt)
	o.OrderNumber = m.OrderNumber
	o.BuyerID = m.BuyerID
	o.BuyerClass = m.BuyerClass
	o.TotalAmount = m.TotalAmount
	o.Currency = m.Currency
	o.ShippingAddress = m.ShippingAddress
	o.PaymentMethod = m.PaymentMethod
	o.Status = m.Status
	o.Metadata = order.Metadata{
		HasCorporatePricing: m.HasCorporatePricing,
		HasPreOrderItems:    m.HasPreOrderItems,
		HasBackOrderItems:   m.HasBackOrderItems,
	}
	if m.IdempotencyKey != nil {
		o.IdempotencyKey = *m.IdempotencyKey
	}
	o.Items = make([]order.Item, len(m.Items))
	for i := range m.Items {
		o.Items[i] = m.Items[i].ToDomain()
	}
	return o
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.BuyerID = o.BuyerID
	m.BuyerClass = o.BuyerClass
	m.TotalAmount = o.TotalAmount
	m.Currency = o.Currency
	m.ShippingAddress = o.ShippingAddress
	m.PaymentMethod = o.PaymentMethod
	m.Status = o.Status
	m.HasCorporatePricing = o.Metadata.HasCorporatePricing
	m.HasPreOrderItems = o.Metadata.HasPreOrderItems
	m.HasBackOrderItems = o.Metadata.HasBackOrderItems
	m.IdempotencyKey = nil
	if o.IdempotencyKey != "" {
		key := o.IdempotencyKey
		m.IdempotencyKey = &key
	}
	m.Items = make([]OrderItemModel, len(o.Items))
	for i, it := range o.Items {
		m.Items[i] = OrderItemModelFromDomain(o.ID, i+1, it, o.CreatedAt)
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order entity.
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is one snapshotted line of a placed order.
type OrderItemModel struct {
	ID                  uuid.UUID           `gorm:"type:uuid;primary_key"`
	OrderID             uuid.UUID           `gorm:"type:uuid;not null;index;uniqueIndex:idx_order_items_line,priority:1"`
	LineNo              int                 `gorm:"not null;uniqueIndex:idx_order_items_line,priority:2"`
	ProductID           uuid.UUID           `gorm:"type:uuid;not null;index"`
	ProductName         string              `gorm:"type:varchar(200);not null"`
	ProductSKU          string              `gorm:"column:product_sku;type:varchar(64);not null"`
	Quantity            int                 `gorm:"not null"`
	PriceAtTime         decimal.Decimal     `gorm:"type:numeric;not null"`
	ItemTotal           decimal.Decimal     `gorm:"type:numeric;not null"`
	StockStatusAtTime   catalog.StockStatus `gorm:"type:varchar(20);not null"`
	TierAppliedJSON     *string             `gorm:"column:tier_applied;type:jsonb"`
	RequiresCustomQuote bool                `gorm:"not null;default:false"`
	CreatedAt           time.Time           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain order line.
func (m *OrderItemModel) ToDomain() order.Item {
	item := order.Item{
		ProductID:           m.ProductID,
		Quantity:            m.Quantity,
		PriceAtTime:         m.PriceAtTime,
		ItemTotal:           m.ItemTotal,
		ProductName:         m.ProductName,
		ProductSKU:          m.ProductSKU,
		StockStatusAtTime:   m.StockStatusAtTime,
		RequiresCustomQuote: m.RequiresCustomQuote,
	}
	if m.TierAppliedJSON != nil && *m.TierAppliedJSON != "" {
		var tier catalog.PriceTier
		if err := json.Unmarshal([]byte(*m.TierAppliedJSON), &tier); err != nil {
			modelLogger.Warn("failed to parse tier_applied JSON",
				zap.String("order_id", m.OrderID.String()),
				zap.Int("line_no", m.LineNo),
				zap.Error(err))
		} else {
			item.TierApplied = &tier
		}
	}
	return item
}

// OrderItemModelFromDomain creates the persistence model for line lineNo of an order.
func OrderItemModelFromDomain(orderID uuid.UUID, lineNo int, it order.Item, createdAt time.Time) OrderItemModel {
	m := OrderItemModel{
		ID:                  uuid.New(),
		OrderID:             orderID,
		LineNo:              lineNo,
		ProductID:           it.ProductID,
		ProductName:         it.ProductName,
		ProductSKU:          it.ProductSKU,
		Quantity:            it.Quantity,
		PriceAtTime:         it.PriceAtTime,
		ItemTotal:           it.ItemTotal,
		StockStatusAtTime:   it.StockStatusAtTime,
		RequiresCustomQuote: it.RequiresCustomQuote,
		CreatedAt:           createdAt,
	}
	if it.TierApplied != nil {
		if jsonBytes, err := json.Marshal(it.TierApplied); err == nil {
			tier := string(jsonBytes)
			m.TierAppliedJSON = &tier
		}
	}
	return m
}
