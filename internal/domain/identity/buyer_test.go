package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseBuyerClass(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want BuyerClass
	}{
		{"lowercase corporate", []string{"corporate"}, BuyerClassCorporate},
		{"capitalized corporate user type", []string{"Corporate"}, BuyerClassCorporate},
		{"business alias with spaces", []string{"  Business "}, BuyerClassCorporate},
		{"individual", []string{"individual"}, BuyerClassIndividual},
		{"unknown value", []string{"retail"}, BuyerClassIndividual},
		{"no values", nil, BuyerClassIndividual},
		{"first non-empty wins", []string{"", "Corporate", "individual"}, BuyerClassCorporate},
		{"account type overrides later user type", []string{"individual", "Corporate"}, BuyerClassIndividual},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseBuyerClass(tt.raw...))
		})
	}
}

func TestNewBuyer(t *testing.T) {
	id := uuid.New()

	b := NewBuyer(id, BuyerClassCorporate)
	assert.True(t, b.IsCorporate())
	assert.Equal(t, id, b.ID)

	b = NewBuyer(id, BuyerClass("wholesale"))
	assert.Equal(t, BuyerClassIndividual, b.Class)
	assert.False(t, b.IsCorporate())
}
