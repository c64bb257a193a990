package order

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// DefaultTotalTolerance absorbs client-side floating point rounding only:
// a tenth of a minor unit for two-decimal currencies.
var DefaultTotalTolerance = decimal.New(1, -3)

// ConsistencyGuard compares the total the client declared with the total the
// server computed before anything is mutated.
type ConsistencyGuard struct {
	tolerance decimal.Decimal
}

// NewConsistencyGuard creates a guard with the given tolerance. A negative
// tolerance is treated as zero.
func NewConsistencyGuard(tolerance decimal.Decimal) *ConsistencyGuard {
	if tolerance.IsNegative() {
		tolerance = decimal.Zero
	}
	return &ConsistencyGuard{tolerance: tolerance}
}

// Check returns TOTAL_MISMATCH when |calculated - declared| exceeds the tolerance
func (g *ConsistencyGuard) Check(calculated, declared decimal.Decimal) error {
	diff := calculated.Sub(declared).Abs()
	if diff.LessThanOrEqual(g.tolerance) {
		return nil
	}
	return shared.NewDomainError(shared.CodeTotalMismatch,
		fmt.Sprintf("Order total mismatch: expected %s, received %s", calculated.String(), declared.String())).
		WithDetails(map[string]any{
			"calculated_total": calculated.String(),
			"declared_total":   declared.String(),
			"difference":       diff.String(),
		})
}
