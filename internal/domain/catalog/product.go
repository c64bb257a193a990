package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// StockStatus governs whether an order consumes on-hand inventory
type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
	StockStatusPreOrder   StockStatus = "pre_order"
	StockStatusBackOrder  StockStatus = "back_order"
)

// IsValid returns true if s is a known stock status
func (s StockStatus) IsValid() bool {
	switch s {
	case StockStatusInStock, StockStatusOutOfStock, StockStatusPreOrder, StockStatusBackOrder:
		return true
	}
	return false
}

// TracksOnHand reports whether orders in this mode consume quantity on hand
func (s StockStatus) TracksOnHand() bool {
	return s == StockStatusInStock
}

// PriceTier maps a quantity range to a fixed per-unit corporate price.
// A nil MaxQuantity means the tier is unbounded above.
type PriceTier struct {
	MinQuantity  int             `json:"minQuantity"`
	MaxQuantity  *int            `json:"maxQuantity,omitempty"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
	Discount     decimal.Decimal `json:"discount"`
	Description  string          `json:"description,omitempty"`
}

// Contains reports whether quantity falls inside the tier, both bounds inclusive
func (t PriceTier) Contains(quantity int) bool {
	if quantity < t.MinQuantity {
		return false
	}
	return t.IsUnbounded() || quantity <= *t.MaxQuantity
}

// IsUnbounded returns true if the tier has no upper limit
func (t PriceTier) IsUnbounded() bool {
	return t.MaxQuantity == nil
}

// Clone returns a deep copy safe to snapshot onto an order line
func (t PriceTier) Clone() *PriceTier {
	c := t
	if t.MaxQuantity != nil {
		maxQty := *t.MaxQuantity
		c.MaxQuantity = &maxQty
	}
	return &c
}

// RetailPrice is the display pricing shown to individual buyers
type RetailPrice struct {
	MRP          *decimal.Decimal     `json:"mrp,omitempty"`
	SellingPrice *decimal.Decimal     `json:"sellingPrice,omitempty"`
	Discount     decimal.Decimal      `json:"discount"`
	Currency     valueobject.Currency `json:"currency"`
}

// CorporatePricing is the quantity-tiered schedule offered to corporate buyers
type CorporatePricing struct {
	Enabled              bool        `json:"enabled"`
	MinimumOrderQuantity int         `json:"minimumOrderQuantity"`
	PriceTiers           []PriceTier `json:"priceTiers"`
	CustomQuoteThreshold *int        `json:"customQuoteThreshold,omitempty"`
}

// Applies reports whether the corporate schedule is active with at least one tier
func (c CorporatePricing) Applies() bool {
	return c.Enabled && len(c.PriceTiers) > 0
}

// Product is the catalog aggregate root. Checkout only mutates stock and sales counters;
// everything else is authored by admin tooling.
type Product struct {
	shared.BaseAggregateRoot
	SKU              string
	Name             string
	Published        bool
	IsCorporateOnly  bool
	BasePrice        decimal.Decimal
	FinalPrice       *decimal.Decimal
	RetailPrice      RetailPrice
	CorporatePricing CorporatePricing
	StockStatus      StockStatus
	QuantityOnHand   int
	SalesCount       int
}

// NewProduct creates a published, in-stock product with a base price
func NewProduct(sku, name string, basePrice decimal.Decimal) (*Product, error) {
	sku = strings.TrimSpace(sku)
	name = strings.TrimSpace(name)
	if sku == "" {
		return nil, shared.NewDomainError(shared.CodeValidationFailed, "SKU cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeValidationFailed, "Product name cannot be empty")
	}
	if basePrice.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeValidationFailed, "Base price cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               strings.ToUpper(sku),
		Name:              name,
		Published:         true,
		BasePrice:         basePrice,
		RetailPrice:       RetailPrice{Currency: valueobject.DefaultCurrency},
		StockStatus:       StockStatusInStock,
	}, nil
}

// SetRetailPrice sets the individual-buyer display pricing
func (p *Product) SetRetailPrice(retail RetailPrice) {
	if retail.Currency == "" {
		retail.Currency = valueobject.DefaultCurrency
	}
	p.RetailPrice = retail
	p.Touch()
}

// SetFinalPrice sets or clears the storefront price override
func (p *Product) SetFinalPrice(price *decimal.Decimal) {
	p.FinalPrice = price
	p.Touch()
}

// SetCorporatePricing replaces the corporate schedule
func (p *Product) SetCorporatePricing(cp CorporatePricing) {
	p.CorporatePricing = cp
	p.Touch()
}

// SetStock sets the stock mode and quantity on hand
func (p *Product) SetStock(status StockStatus, quantityOnHand int) error {
	if !status.IsValid() {
		return shared.NewDomainError(shared.CodeValidationFailed, fmt.Sprintf("Invalid stock status: %s", status))
	}
	if quantityOnHand < 0 {
		return shared.NewDomainError(shared.CodeValidationFailed, "Quantity on hand cannot be negative")
	}
	p.StockStatus = status
	p.QuantityOnHand = quantityOnHand
	p.Touch()
	return nil
}

// SetCorporateOnly restricts the product to corporate buyers
func (p *Product) SetCorporateOnly(corporateOnly bool) {
	p.IsCorporateOnly = corporateOnly
	p.Touch()
}

// Currency returns the currency prices are expressed in
func (p *Product) Currency() valueobject.Currency {
	if p.RetailPrice.Currency == "" {
		return valueobject.DefaultCurrency
	}
	return p.RetailPrice.Currency
}

// FallbackPrice is the non-tiered unit price: the first set of the final price,
// the retail selling price, and the base price.
func (p *Product) FallbackPrice() decimal.Decimal {
	if p.FinalPrice != nil {
		return *p.FinalPrice
	}
	if p.RetailPrice.SellingPrice != nil {
		return *p.RetailPrice.SellingPrice
	}
	return p.BasePrice
}

// CheckPurchaseEligibility applies the access and minimum order rules for a buyer class
func (p *Product) CheckPurchaseEligibility(class identity.BuyerClass, quantity int) error {
	if p.IsCorporateOnly && !class.IsCorporate() {
		return shared.NewDomainError(shared.CodeAccessDenied,
			fmt.Sprintf("Product %s is available to corporate buyers only", p.Name)).
			WithDetails(map[string]any{"product_id": p.ID.String()})
	}
	cp := p.CorporatePricing
	if class.IsCorporate() && cp.Enabled && quantity < cp.MinimumOrderQuantity {
		return shared.NewDomainError(shared.CodeQuantityBelowMinimum,
			fmt.Sprintf("Minimum order quantity for %s is %d", p.Name, cp.MinimumOrderQuantity)).
			WithDetails(map[string]any{
				"product_id":             p.ID.String(),
				"minimum_order_quantity": cp.MinimumOrderQuantity,
				"requested":              quantity,
			})
	}
	return nil
}

// RestoreProduct rebuilds a product from persisted state without validation
func RestoreProduct(id uuid.UUID, version int, createdAt, updatedAt time.Time) *Product {
	return &Product{
		BaseAggregateRoot: shared.RestoreAggregateRoot(id, version, createdAt, updatedAt),
	}
}
