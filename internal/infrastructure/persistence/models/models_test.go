package models

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func newCorporateProduct(t *testing.T) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("desk-01", "Standing Desk", decimal.NewFromInt(500))
	require.NoError(t, err)
	maxQty := 99
	threshold := 1000
	p.SetCorporatePricing(catalog.CorporatePricing{
		Enabled:              true,
		MinimumOrderQuantity: 50,
		PriceTiers: []catalog.PriceTier{
			{MinQuantity: 50, MaxQuantity: &maxQty, PricePerUnit: decimal.NewFromInt(450)},
			{MinQuantity: 100, PricePerUnit: decimal.NewFromInt(399)},
		},
		CustomQuoteThreshold: &threshold,
	})
	require.NoError(t, p.SetStock(catalog.StockStatusInStock, 200))
	return p
}

func TestProductModel_RoundTrip(t *testing.T) {
	p := newCorporateProduct(t)
	selling := decimal.NewFromInt(499)
	p.SetRetailPrice(catalog.RetailPrice{SellingPrice: &selling, Currency: valueobject.USD})

	m := ProductModelFromDomain(p)
	assert.Equal(t, "products", m.TableName())
	assert.Equal(t, "DESK-01", m.SKU)
	assert.Equal(t, valueobject.USD, m.Currency)
	assert.Contains(t, m.PriceTiersJSON, `"minQuantity":50`)

	restored := m.ToDomain()
	assert.Equal(t, p.ID, restored.ID)
	assert.Equal(t, p.Version, restored.Version)
	assert.Equal(t, 200, restored.QuantityOnHand)
	require.Len(t, restored.CorporatePricing.PriceTiers, 2)
	assert.Equal(t, 99, *restored.CorporatePricing.PriceTiers[0].MaxQuantity)
	assert.True(t, restored.CorporatePricing.PriceTiers[1].IsUnbounded())
	assert.True(t, restored.RetailPrice.SellingPrice.Equal(selling))
	assert.Equal(t, 1000, *restored.CorporatePricing.CustomQuoteThreshold)
}

func TestProductModel_ToDomain_BadTierJSON(t *testing.T) {
	m := ProductModelFromDomain(newCorporateProduct(t))
	m.PriceTiersJSON = "{not json"

	restored := m.ToDomain()
	assert.Empty(t, restored.CorporatePricing.PriceTiers)
	assert.True(t, restored.CorporatePricing.Enabled)
}

func TestOrderModel_RoundTrip(t *testing.T) {
	p := newCorporateProduct(t)
	tier := p.CorporatePricing.PriceTiers[0].Clone()
	addr, err := valueobject.NewShippingAddress("Asha Rao", "12 MG Road", "Bengaluru", "KA", "560001")
	require.NoError(t, err)

	buyer := identity.NewBuyer(uuid.New(), identity.BuyerClassCorporate)
	items := []order.Item{order.NewItem(p, 60, decimal.NewFromInt(450), tier, false)}
	o, err := order.NewOrder(buyer, items, addr, order.PaymentBankTransfer, valueobject.INR)
	require.NoError(t, err)
	o.SetIdempotencyKey("abc-123")

	m := OrderModelFromDomain(o)
	require.Len(t, m.Items, 1)
	assert.Equal(t, 1, m.Items[0].LineNo)
	assert.Equal(t, o.ID, m.Items[0].OrderID)
	require.NotNil(t, m.Items[0].TierAppliedJSON)
	require.NotNil(t, m.IdempotencyKey)
	assert.Equal(t, "abc-123", *m.IdempotencyKey)
	assert.True(t, m.HasCorporatePricing)

	restored := m.ToDomain()
	assert.Equal(t, o.OrderNumber, restored.OrderNumber)
	assert.True(t, restored.TotalAmount.Equal(decimal.NewFromInt(27000)))
	assert.Equal(t, "Bengaluru", restored.ShippingAddress.City())
	require.Len(t, restored.Items, 1)
	require.NotNil(t, restored.Items[0].TierApplied)
	assert.Equal(t, 50, restored.Items[0].TierApplied.MinQuantity)
	assert.NoError(t, restored.VerifyTotal())
	assert.Empty(t, restored.GetDomainEvents())
}

func TestOrderModel_NoIdempotencyKey(t *testing.T) {
	p, err := catalog.NewProduct("chair-01", "Chair", decimal.NewFromInt(100))
	require.NoError(t, err)
	addr, err := valueobject.NewShippingAddress("Asha Rao", "12 MG Road", "Bengaluru", "KA", "560001")
	require.NoError(t, err)
	o, err := order.NewOrder(identity.NewBuyer(uuid.New(), identity.BuyerClassIndividual),
		[]order.Item{order.NewItem(p, 1, p.BasePrice, nil, false)}, addr, order.PaymentCard, valueobject.INR)
	require.NoError(t, err)

	m := OrderModelFromDomain(o)
	assert.Nil(t, m.IdempotencyKey)
	assert.Nil(t, m.Items[0].TierAppliedJSON)
	assert.Equal(t, "", m.ToDomain().IdempotencyKey)
}

func TestMoneyColumns_AreUnscaled(t *testing.T) {
	cases := []struct {
		model  any
		fields []string
	}{
		{&ProductModel{}, []string{"BasePrice", "FinalPrice", "RetailMRP", "RetailSellingPrice", "RetailDiscount"}},
		{&OrderModel{}, []string{"TotalAmount"}},
		{&OrderItemModel{}, []string{"PriceAtTime", "ItemTotal"}},
	}
	for _, tc := range cases {
		s, err := schema.Parse(tc.model, &sync.Map{}, schema.NamingStrategy{})
		require.NoError(t, err)
		for _, name := range tc.fields {
			f := s.LookUpField(name)
			require.NotNil(t, f, "%s.%s", s.Name, name)
			assert.Equal(t, "numeric", f.TagSettings["TYPE"], "%s.%s must not round", s.Name, name)
		}
	}
}

func TestOrderModel_SubCentTierPriceSurvivesRoundTrip(t *testing.T) {
	p, err := catalog.NewProduct("label-01", "Thermal label", decimal.NewFromInt(1))
	require.NoError(t, err)
	p.SetCorporatePricing(catalog.CorporatePricing{
		Enabled:              true,
		MinimumOrderQuantity: 1,
		PriceTiers:           []catalog.PriceTier{{MinQuantity: 1, PricePerUnit: decimal.RequireFromString("0.00005")}},
	})
	require.NoError(t, p.SetStock(catalog.StockStatusInStock, 10))
	tier := p.CorporatePricing.PriceTiers[0].Clone()
	addr, err := valueobject.NewShippingAddress("Asha Rao", "12 MG Road", "Bengaluru", "KA", "560001")
	require.NoError(t, err)

	unit := tier.PricePerUnit
	items := []order.Item{
		order.NewItem(p, 1, unit, tier, false),
		order.NewItem(p, 1, unit, tier, false),
	}
	o, err := order.NewOrder(identity.NewBuyer(uuid.New(), identity.BuyerClassCorporate), items, addr, order.PaymentUPI, valueobject.INR)
	require.NoError(t, err)

	restored := OrderModelFromDomain(o).ToDomain()
	assert.Equal(t, "0.0001", restored.TotalAmount.String())
	for _, it := range restored.Items {
		assert.Equal(t, "0.00005", it.PriceAtTime.String())
		assert.Equal(t, "0.00005", it.ItemTotal.String())
		assert.True(t, it.PriceAtTime.Equal(it.TierApplied.PricePerUnit))
	}
	assert.NoError(t, restored.VerifyTotal())
}

func TestProductModel_ToDomain_NormalizesCurrency(t *testing.T) {
	p, err := catalog.NewProduct("mug-01", "Mug", decimal.NewFromInt(300))
	require.NoError(t, err)

	m := ProductModelFromDomain(p)
	m.Currency = " usd "
	assert.Equal(t, valueobject.USD, m.ToDomain().Currency())

	m.Currency = "XYZ"
	assert.Equal(t, valueobject.DefaultCurrency, m.ToDomain().Currency())
}
