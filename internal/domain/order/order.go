// Package order holds the placed-order aggregate and the rules that keep its
// totals consistent with what the buyer was shown.
package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Status represents the lifecycle state of an order
type Status string

const (
	StatusPlaced Status = "placed"
)

// PaymentMethod is how the buyer intends to pay
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cod"
	PaymentCard           PaymentMethod = "card"
	PaymentUPI            PaymentMethod = "upi"
	PaymentNetBanking     PaymentMethod = "net_banking"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
)

// ParsePaymentMethod validates a raw payment method value
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	pm := PaymentMethod(strings.ToLower(strings.TrimSpace(raw)))
	switch pm {
	case PaymentCashOnDelivery, PaymentCard, PaymentUPI, PaymentNetBanking, PaymentBankTransfer:
		return pm, nil
	}
	return "", shared.NewDomainError(shared.CodeValidationFailed, fmt.Sprintf("Unsupported payment method: %s", raw))
}

// Item is one priced line of a placed order. Price, name and stock mode are
// snapshots taken at placement time.
type Item struct {
	ProductID           uuid.UUID           `json:"productId"`
	Quantity            int                 `json:"quantity"`
	PriceAtTime         decimal.Decimal     `json:"priceAtTime"`
	ItemTotal           decimal.Decimal     `json:"itemTotal"`
	ProductName         string              `json:"productName"`
	ProductSKU          string              `json:"productSku"`
	StockStatusAtTime   catalog.StockStatus `json:"stockStatusAtTime"`
	TierApplied         *catalog.PriceTier  `json:"tierApplied,omitempty"`
	RequiresCustomQuote bool                `json:"requiresCustomQuote,omitempty"`
}

// NewItem snapshots a product into an order line priced at unitPrice
func NewItem(p *catalog.Product, quantity int, unitPrice decimal.Decimal, tier *catalog.PriceTier, customQuote bool) Item {
	return Item{
		ProductID:           p.ID,
		Quantity:            quantity,
		PriceAtTime:         unitPrice,
		ItemTotal:           catalog.LineTotal(unitPrice, quantity),
		ProductName:         p.Name,
		ProductSKU:          p.SKU,
		StockStatusAtTime:   p.StockStatus,
		TierApplied:         tier,
		RequiresCustomQuote: customQuote,
	}
}

// Metadata holds flags derived from the order lines
type Metadata struct {
	HasCorporatePricing bool `json:"hasCorporatePricing"`
	HasPreOrderItems    bool `json:"hasPreOrderItems"`
	HasBackOrderItems   bool `json:"hasBackOrderItems"`
}

func deriveMetadata(items []Item) Metadata {
	var m Metadata
	for _, it := range items {
		if it.TierApplied != nil {
			m.HasCorporatePricing = true
		}
		switch it.StockStatusAtTime {
		case catalog.StockStatusPreOrder:
			m.HasPreOrderItems = true
		case catalog.StockStatusBackOrder:
			m.HasBackOrderItems = true
		}
	}
	return m
}

// Order is an accepted purchase. It is append-only once placed.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber     string
	BuyerID         uuid.UUID
	BuyerClass      identity.BuyerClass
	Items           []Item
	TotalAmount     decimal.Decimal
	Currency        valueobject.Currency
	ShippingAddress valueobject.ShippingAddress
	PaymentMethod   PaymentMethod
	Status          Status
	Metadata        Metadata
	IdempotencyKey  string
}

// NewOrder assembles a placed order. The total is always the exact sum of the
// line totals; callers cannot supply it.
func NewOrder(
	buyer identity.Buyer,
	items []Item,
	address valueobject.ShippingAddress,
	payment PaymentMethod,
	currency valueobject.Currency,
) (*Order, error) {
	if buyer.ID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationFailed, "Buyer ID cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError(shared.CodeValidationFailed, "Order must contain at least one item")
	}
	if address.IsEmpty() {
		return nil, shared.NewDomainError(shared.CodeValidationFailed, "Shipping address is required")
	}
	for i, it := range items {
		if it.Quantity <= 0 {
			return nil, shared.NewDomainError(shared.CodeValidationFailed,
				fmt.Sprintf("Quantity of item %d must be positive", i+1))
		}
	}

	lines := make([]Item, len(items))
	copy(lines, items)

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BuyerID:           buyer.ID,
		BuyerClass:        buyer.Class,
		Items:             lines,
		TotalAmount:       SumItems(lines),
		Currency:          currency,
		ShippingAddress:   address,
		PaymentMethod:     payment,
		Status:            StatusPlaced,
		Metadata:          deriveMetadata(lines),
	}
	o.OrderNumber = generateOrderNumber(o.ID, o.CreatedAt)
	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return o, nil
}

// SumItems returns the exact sum of the line totals
func SumItems(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.ItemTotal)
	}
	return total
}

// VerifyTotal checks that TotalAmount still equals the sum of the line totals
func (o *Order) VerifyTotal() error {
	sum := SumItems(o.Items)
	if !sum.Equal(o.TotalAmount) {
		return shared.NewDomainError(shared.CodeInternalError,
			fmt.Sprintf("Order %s total %s does not match line items %s", o.OrderNumber, o.TotalAmount, sum))
	}
	return nil
}

// CustomQuoteItems returns lines large enough to warrant a sales follow-up
func (o *Order) CustomQuoteItems() []Item {
	var out []Item
	for _, it := range o.Items {
		if it.RequiresCustomQuote {
			out = append(out, it)
		}
	}
	return out
}

// TotalQuantity returns the number of units across all lines
func (o *Order) TotalQuantity() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// SetIdempotencyKey records the client key the order was submitted with
func (o *Order) SetIdempotencyKey(key string) {
	o.IdempotencyKey = key
}

// IsOwnedBy reports whether the order belongs to the buyer
func (o *Order) IsOwnedBy(buyerID uuid.UUID) bool {
	return o.BuyerID == buyerID
}

func generateOrderNumber(id uuid.UUID, at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", at.Format("20060102"), suffix)
}

// RestoreOrder rebuilds an order from persisted state without raising events
func RestoreOrder(id uuid.UUID, version int, createdAt, updatedAt time.Time) *Order {
	return &Order{
		BaseAggregateRoot: shared.RestoreAggregateRoot(id, version, createdAt, updatedAt),
	}
}
