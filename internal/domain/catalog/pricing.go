package catalog

import (
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/identity"
)

// PricingResolver picks the effective unit price for a line item.
// It is stateless and never fails: malformed tier schedules are resolved
// deterministically rather than rejected.
type PricingResolver struct{}

// NewPricingResolver creates a new pricing resolver
func NewPricingResolver() *PricingResolver {
	return &PricingResolver{}
}

// ResolvePrice returns the unit price for quantity units bought by a buyer of the
// given class, and the tier that produced it (nil when the fallback price applies).
//
// Among all tiers containing quantity, the one with the highest MinQuantity wins;
// equal minimums keep the earliest tier in authored order.
func (r *PricingResolver) ResolvePrice(p *Product, class identity.BuyerClass, quantity int) (decimal.Decimal, *PriceTier) {
	if !class.IsCorporate() || !p.CorporatePricing.Applies() {
		return p.FallbackPrice(), nil
	}

	var best *PriceTier
	for i := range p.CorporatePricing.PriceTiers {
		tier := &p.CorporatePricing.PriceTiers[i]
		if !tier.Contains(quantity) {
			continue
		}
		if best == nil || tier.MinQuantity > best.MinQuantity {
			best = tier
		}
	}

	if best == nil {
		return p.FallbackPrice(), nil
	}
	return best.PricePerUnit, best.Clone()
}

// RequiresCustomQuote reports whether quantity reaches the product's custom quote threshold
func (r *PricingResolver) RequiresCustomQuote(p *Product, quantity int) bool {
	threshold := p.CorporatePricing.CustomQuoteThreshold
	return threshold != nil && quantity >= *threshold
}

// LineTotal multiplies a unit price by quantity without rounding
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
