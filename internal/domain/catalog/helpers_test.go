package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(i int) *int {
	return &i
}

// newTieredProduct builds the reference catalogue item used across tests:
// tiers 50-99 @ 450, 100-499 @ 399, 500+ @ 349, retail selling price 499, base 520.
func newTieredProduct(t *testing.T) *Product {
	t.Helper()
	p, err := NewProduct("desk-01", "Standing Desk", dec("520"))
	require.NoError(t, err)
	p.SetRetailPrice(RetailPrice{MRP: decPtr("599"), SellingPrice: decPtr("499"), Discount: dec("16.69")})
	p.SetCorporatePricing(CorporatePricing{
		Enabled:              true,
		MinimumOrderQuantity: 50,
		PriceTiers: []PriceTier{
			{MinQuantity: 50, MaxQuantity: intPtr(99), PricePerUnit: dec("450")},
			{MinQuantity: 100, MaxQuantity: intPtr(499), PricePerUnit: dec("399")},
			{MinQuantity: 500, PricePerUnit: dec("349")},
		},
	})
	require.NoError(t, p.SetStock(StockStatusInStock, 1000))
	return p
}
