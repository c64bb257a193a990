package order

import (
	"errors"
	"testing"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsistencyGuard_Check(t *testing.T) {
	g := NewConsistencyGuard(DefaultTotalTolerance)

	tests := []struct {
		name       string
		calculated string
		declared   string
		wantErr    bool
	}{
		{"exact match", "39900", "39900", false},
		{"client float rounding within tolerance", "39959.97", "39959.9700000001", false},
		{"difference at tolerance boundary", "100.000", "100.001", false},
		{"declared lower beyond tolerance", "100.00", "99.99", true},
		{"declared higher beyond tolerance", "100.00", "100.01", true},
		{"unit price mismatch on large order", "39900", "45000", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.Check(dec(tt.calculated), dec(tt.declared))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, shared.NewDomainError(shared.CodeTotalMismatch, "")))
			de, _ := shared.AsDomainError(err)
			assert.Equal(t, dec(tt.calculated).String(), de.Details["calculated_total"])
			assert.Equal(t, dec(tt.declared).String(), de.Details["declared_total"])
		})
	}
}

func TestNewConsistencyGuard_NegativeToleranceClamped(t *testing.T) {
	g := NewConsistencyGuard(dec("-1"))
	assert.Error(t, g.Check(dec("1"), dec("1.0001")))
	assert.NoError(t, g.Check(dec("1"), dec("1.000")))
}
