package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// ProductModel is the persistence model for the Product aggregate root.
type ProductModel struct {
	AggregateModel
	SKU                     string               `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name                    string               `gorm:"type:varchar(200);not null"`
	Published               bool                 `gorm:"not null;default:true"`
	IsCorporateOnly         bool                 `gorm:"not null;default:false"`
	BasePrice               decimal.Decimal      `gorm:"type:numeric;not null"`
	FinalPrice              *decimal.Decimal     `gorm:"type:numeric"`
	RetailMRP               *decimal.Decimal     `gorm:"column:retail_mrp;type:numeric"`
	RetailSellingPrice      *decimal.Decimal     `gorm:"type:numeric"`
	RetailDiscount          decimal.Decimal      `gorm:"type:numeric;not null;default:0"`
	Currency                valueobject.Currency `gorm:"type:varchar(3);not null;default:'INR'"`
	CorporatePricingEnabled bool                 `gorm:"not null;default:false"`
	MinimumOrderQuantity    int                  `gorm:"not null;default:0"`
	CustomQuoteThreshold    *int
	PriceTiersJSON          string              `gorm:"column:price_tiers;type:jsonb;default:'[]'"`
	StockStatus             catalog.StockStatus `gorm:"type:varchar(20);not null;default:'in_stock'"`
	QuantityOnHand          int                 `gorm:"not null;default:0"`
	SalesCount              int                 `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := catalog.RestoreProduct(m.ID, m.Version, m.CreatedAt, m.UpdatedAt)
	p.SKU = m.SKU
	p.Name = m.Name
	p.Published = m.Published
	p.IsCorporateOnly = m.IsCorporateOnly
	p.BasePrice = m.BasePrice
	p.FinalPrice = m.FinalPrice
	p.RetailPrice = catalog.RetailPrice{
		MRP:          m.RetailMRP,
		SellingPrice: m.RetailSellingPrice,
		Discount:     m.RetailDiscount,
		Currency:     m.currency(),
	}
	p.CorporatePricing = catalog.CorporatePricing{
		Enabled:              m.CorporatePricingEnabled,
		MinimumOrderQuantity: m.MinimumOrderQuantity,
		CustomQuoteThreshold: m.CustomQuoteThreshold,
	}
	if m.PriceTiersJSON != "" && m.PriceTiersJSON != "[]" {
		var tiers []catalog.PriceTier
		if err := json.Unmarshal([]byte(m.PriceTiersJSON), &tiers); err != nil {
			modelLogger.Warn("failed to parse price_tiers JSON",
				zap.String("sku", m.SKU),
				zap.String("raw_json", m.PriceTiersJSON),
				zap.Error(err))
		} else {
			p.CorporatePricing.PriceTiers = tiers
		}
	}
	p.StockStatus = m.StockStatus
	p.QuantityOnHand = m.QuantityOnHand
	p.SalesCount = m.SalesCount
	return p
}

// currency normalizes the stored code. Rows written by other tools may carry
// lowercase or padded codes.
func (m *ProductModel) currency() valueobject.Currency {
	c, err := valueobject.ParseCurrency(string(m.Currency))
	if err != nil {
		modelLogger.Warn("unsupported product currency, using default",
			zap.String("sku", m.SKU),
			zap.String("currency", string(m.Currency)))
		return valueobject.DefaultCurrency
	}
	return c
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.SKU = p.SKU
	m.Name = p.Name
	m.Published = p.Published
	m.IsCorporateOnly = p.IsCorporateOnly
	m.BasePrice = p.BasePrice
	m.FinalPrice = p.FinalPrice
	m.RetailMRP = p.RetailPrice.MRP
	m.RetailSellingPrice = p.RetailPrice.SellingPrice
	m.RetailDiscount = p.RetailPrice.Discount
	m.Currency = p.Currency()
	m.CorporatePricingEnabled = p.CorporatePricing.Enabled
	m.MinimumOrderQuantity = p.CorporatePricing.MinimumOrderQuantity
	m.CustomQuoteThreshold = p.CorporatePricing.CustomQuoteThreshold
	m.PriceTiersJSON = "[]"
	if len(p.CorporatePricing.PriceTiers) > 0 {
		if jsonBytes, err := json.Marshal(p.CorporatePricing.PriceTiers); err == nil {
			m.PriceTiersJSON = string(jsonBytes)
		}
	}
	m.StockStatus = p.StockStatus
	m.QuantityOnHand = p.QuantityOnHand
	m.SalesCount = p.SalesCount
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
