package catalog

import (
	"fmt"

	"github.com/storefront/backend/internal/domain/shared"
)

// Reasons reported when a reservation is refused
const (
	ReasonNotAvailable  = "product not available."
	ReasonOutOfStock    = "out of stock."
	ReasonInvalidStatus = "invalid stock status."
	ReasonInvalidQty    = "invalid quantity."
)

// ReserveResult is the outcome of reserving stock for one product
type ReserveResult struct {
	OK        bool
	Reason    string
	Available int
	Requested int
}

// StockReconciler validates availability against a product's stock mode and
// applies the inventory mutation when the reservation is accepted.
type StockReconciler struct{}

// NewStockReconciler creates a new stock reconciler
func NewStockReconciler() *StockReconciler {
	return &StockReconciler{}
}

// Reserve checks availability of quantity units and, on success, decrements
// quantity on hand (in_stock only) and increments the sales counter.
// Persisting the product is left to the caller.
func (r *StockReconciler) Reserve(p *Product, quantity int) ReserveResult {
	res := ReserveResult{Requested: quantity, Available: p.QuantityOnHand}

	if !p.Published {
		res.Reason = ReasonNotAvailable
		return res
	}
	if quantity <= 0 {
		res.Reason = ReasonInvalidQty
		return res
	}

	switch p.StockStatus {
	case StockStatusOutOfStock:
		res.Reason = ReasonOutOfStock
		return res
	case StockStatusInStock:
		if p.QuantityOnHand < quantity {
			res.Reason = fmt.Sprintf("insufficient stock: %d available, %d requested.", p.QuantityOnHand, quantity)
			return res
		}
		p.QuantityOnHand -= quantity
	case StockStatusPreOrder, StockStatusBackOrder:
		// accepted against future supply
	default:
		res.Reason = ReasonInvalidStatus
		return res
	}

	p.SalesCount += quantity
	p.Touch()
	res.OK = true
	res.Available = p.QuantityOnHand
	return res
}

// Release undoes a successful Reserve of quantity units on the same product
func (r *StockReconciler) Release(p *Product, quantity int) {
	if p.StockStatus.TracksOnHand() {
		p.QuantityOnHand += quantity
	}
	p.SalesCount -= quantity
	p.Touch()
}

// ReservationLine is one product/quantity pair of a multi-line reservation
type ReservationLine struct {
	Product  *Product
	Quantity int
}

// ReserveAll reserves every line in order. If a line is refused, all lines
// reserved before it are released and a STOCK_ERROR naming the product is returned,
// leaving every product exactly as it was.
func (r *StockReconciler) ReserveAll(lines []ReservationLine) error {
	for i, line := range lines {
		res := r.Reserve(line.Product, line.Quantity)
		if res.OK {
			continue
		}

		for j := i - 1; j >= 0; j-- {
			r.Release(lines[j].Product, lines[j].Quantity)
		}
		return NewStockError(line.Product, res)
	}
	return nil
}

// NewStockError builds the STOCK_ERROR reported for a refused reservation
func NewStockError(p *Product, res ReserveResult) *shared.DomainError {
	return shared.NewDomainError(shared.CodeStockError,
		fmt.Sprintf("Cannot order %s: %s", p.Name, res.Reason)).
		WithDetails(map[string]any{
			"product_id":   p.ID.String(),
			"product_name": p.Name,
			"reason":       res.Reason,
			"available":    res.Available,
			"requested":    res.Requested,
		})
}
