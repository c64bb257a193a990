package catalog

import (
	"testing"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPricingResolver_ResolvePrice(t *testing.T) {
	r := NewPricingResolver()

	t.Run("corporate buyer ordering 100 units gets the 100-499 tier", func(t *testing.T) {
		p := newTieredProduct(t)
		price, tier := r.ResolvePrice(p, identity.BuyerClassCorporate, 100)
		require.NotNil(t, tier)
		assert.True(t, price.Equal(dec("399")))
		assert.Equal(t, 100, tier.MinQuantity)
		assert.True(t, LineTotal(price, 100).Equal(dec("39900")))
	})

	t.Run("individual buyer ordering 100 units pays the retail selling price", func(t *testing.T) {
		p := newTieredProduct(t)
		price, tier := r.ResolvePrice(p, identity.BuyerClassIndividual, 100)
		assert.Nil(t, tier)
		assert.True(t, price.Equal(dec("499")))
	})

	t.Run("boundaries are inclusive and max plus one moves to the next tier", func(t *testing.T) {
		p := newTieredProduct(t)
		cases := []struct {
			qty   int
			price string
			min   int
		}{
			{50, "450", 50},
			{99, "450", 50},
			{100, "399", 100},
			{499, "399", 100},
			{500, "349", 500},
			{100000, "349", 500},
		}
		for _, c := range cases {
			price, tier := r.ResolvePrice(p, identity.BuyerClassCorporate, c.qty)
			require.NotNil(t, tier, "qty %d", c.qty)
			assert.True(t, price.Equal(dec(c.price)), "qty %d got %s", c.qty, price)
			assert.Equal(t, c.min, tier.MinQuantity, "qty %d", c.qty)
		}
	})

	t.Run("below the lowest tier falls back", func(t *testing.T) {
		p := newTieredProduct(t)
		price, tier := r.ResolvePrice(p, identity.BuyerClassCorporate, 49)
		assert.Nil(t, tier)
		assert.True(t, price.Equal(dec("499")))
	})

	t.Run("gap between bounded tiers falls back", func(t *testing.T) {
		p := newTieredProduct(t)
		p.CorporatePricing.PriceTiers = []PriceTier{
			{MinQuantity: 10, MaxQuantity: intPtr(19), PricePerUnit: dec("100")},
			{MinQuantity: 30, PricePerUnit: dec("80")},
		}
		price, tier := r.ResolvePrice(p, identity.BuyerClassCorporate, 25)
		assert.Nil(t, tier)
		assert.True(t, price.Equal(dec("499")))
	})

	t.Run("overlapping tiers pick the highest qualifying minimum", func(t *testing.T) {
		p := newTieredProduct(t)
		p.CorporatePricing.PriceTiers = []PriceTier{
			{MinQuantity: 100, PricePerUnit: dec("300"), Description: "open ended"},
			{MinQuantity: 50, MaxQuantity: intPtr(200), PricePerUnit: dec("420")},
			{MinQuantity: 150, MaxQuantity: intPtr(250), PricePerUnit: dec("380")},
		}
		price, tier := r.ResolvePrice(p, identity.BuyerClassCorporate, 160)
		require.NotNil(t, tier)
		assert.Equal(t, 150, tier.MinQuantity)
		assert.True(t, price.Equal(dec("380")))

		price, tier = r.ResolvePrice(p, identity.BuyerClassCorporate, 120)
		require.NotNil(t, tier)
		assert.Equal(t, 100, tier.MinQuantity)
		assert.True(t, price.Equal(dec("300")))
	})

	t.Run("equal minimums keep the first authored tier", func(t *testing.T) {
		p := newTieredProduct(t)
		p.CorporatePricing.PriceTiers = []PriceTier{
			{MinQuantity: 10, PricePerUnit: dec("90"), Description: "first"},
			{MinQuantity: 10, PricePerUnit: dec("85"), Description: "second"},
		}
		_, tier := r.ResolvePrice(p, identity.BuyerClassCorporate, 12)
		require.NotNil(t, tier)
		assert.Equal(t, "first", tier.Description)
	})

	t.Run("disabled corporate pricing or empty tiers falls back", func(t *testing.T) {
		p := newTieredProduct(t)
		p.CorporatePricing.Enabled = false
		price, tier := r.ResolvePrice(p, identity.BuyerClassCorporate, 100)
		assert.Nil(t, tier)
		assert.True(t, price.Equal(dec("499")))

		p.CorporatePricing.Enabled = true
		p.CorporatePricing.PriceTiers = nil
		_, tier = r.ResolvePrice(p, identity.BuyerClassCorporate, 100)
		assert.Nil(t, tier)
	})

	t.Run("returned tier is a copy", func(t *testing.T) {
		p := newTieredProduct(t)
		_, tier := r.ResolvePrice(p, identity.BuyerClassCorporate, 75)
		require.NotNil(t, tier)
		*tier.MaxQuantity = 1
		tier.PricePerUnit = dec("1")
		assert.Equal(t, 99, *p.CorporatePricing.PriceTiers[0].MaxQuantity)
		assert.True(t, p.CorporatePricing.PriceTiers[0].PricePerUnit.Equal(dec("450")))
	})

	t.Run("repeated calls return identical results", func(t *testing.T) {
		p := newTieredProduct(t)
		for _, qty := range []int{1, 50, 150, 700} {
			p1, t1 := r.ResolvePrice(p, identity.BuyerClassCorporate, qty)
			p2, t2 := r.ResolvePrice(p, identity.BuyerClassCorporate, qty)
			assert.True(t, p1.Equal(p2))
			assert.Equal(t, t1, t2)
		}
	})
}

func TestPricingResolver_MonotonicAcrossTiers(t *testing.T) {
	r := NewPricingResolver()
	p := newTieredProduct(t)

	prev, _ := r.ResolvePrice(p, identity.BuyerClassCorporate, 50)
	for qty := 51; qty <= 1200; qty++ {
		price, _ := r.ResolvePrice(p, identity.BuyerClassCorporate, qty)
		assert.True(t, price.LessThanOrEqual(prev), "price rose at qty %d", qty)
		prev = price
	}
}

func TestProduct_FallbackPrice(t *testing.T) {
	p, err := NewProduct("sku", "Chair", dec("120.50"))
	require.NoError(t, err)
	assert.True(t, p.FallbackPrice().Equal(dec("120.50")))

	p.SetRetailPrice(RetailPrice{SellingPrice: decPtr("110")})
	assert.True(t, p.FallbackPrice().Equal(dec("110")))

	p.SetFinalPrice(decPtr("99.99"))
	assert.True(t, p.FallbackPrice().Equal(dec("99.99")))
}

func TestPricingResolver_RequiresCustomQuote(t *testing.T) {
	r := NewPricingResolver()
	p := newTieredProduct(t)

	assert.False(t, r.RequiresCustomQuote(p, 10000), "no threshold configured")

	p.CorporatePricing.CustomQuoteThreshold = intPtr(1000)
	assert.False(t, r.RequiresCustomQuote(p, 999))
	assert.True(t, r.RequiresCustomQuote(p, 1000))
	assert.True(t, r.RequiresCustomQuote(p, 5000))
}

func TestLineTotal_NoIntermediateRounding(t *testing.T) {
	total := LineTotal(dec("0.333"), 3)
	assert.True(t, total.Equal(dec("0.999")))

	sum := LineTotal(dec("19.99"), 3).Add(LineTotal(dec("0.01"), 1))
	assert.Equal(t, "59.98", sum.String())
}
