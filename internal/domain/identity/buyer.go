// Package identity models the purchaser as seen by checkout. Authentication and
// account management live upstream; this package only carries the normalized
// classification that pricing and access rules depend on.
package identity

import (
	"strings"

	"github.com/google/uuid"
)

// BuyerClass classifies a purchaser for pricing and access decisions
type BuyerClass string

const (
	BuyerClassIndividual BuyerClass = "individual"
	BuyerClassCorporate  BuyerClass = "corporate"
)

// corporateAliases are the raw account/user type values that denote a corporate buyer.
var corporateAliases = map[string]struct{}{
	"corporate": {},
	"business":  {},
	"b2b":       {},
}

// ParseBuyerClass normalizes raw account type strings into a BuyerClass.
// The first non-empty value decides; anything that is not a corporate alias
// is treated as an individual buyer.
func ParseBuyerClass(raw ...string) BuyerClass {
	for _, r := range raw {
		v := strings.ToLower(strings.TrimSpace(r))
		if v == "" {
			continue
		}
		if _, ok := corporateAliases[v]; ok {
			return BuyerClassCorporate
		}
		return BuyerClassIndividual
	}
	return BuyerClassIndividual
}

// IsValid reports whether c is one of the known classes
func (c BuyerClass) IsValid() bool {
	return c == BuyerClassIndividual || c == BuyerClassCorporate
}

// IsCorporate returns true for corporate buyers
func (c BuyerClass) IsCorporate() bool {
	return c == BuyerClassCorporate
}

// String returns the class name
func (c BuyerClass) String() string {
	return string(c)
}

// Buyer is the authenticated purchaser placing an order
type Buyer struct {
	ID    uuid.UUID
	Class BuyerClass
}

// NewBuyer creates a Buyer, defaulting unknown classes to individual
func NewBuyer(id uuid.UUID, class BuyerClass) Buyer {
	if !class.IsValid() {
		class = BuyerClassIndividual
	}
	return Buyer{ID: id, Class: class}
}

// IsCorporate returns true if the buyer purchases under corporate terms
func (b Buyer) IsCorporate() bool {
	return b.Class.IsCorporate()
}
