package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Save inserts a newly placed order with its lines
	Save(ctx context.Context, order *Order) error

	// FindByID finds an order by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByBuyer lists a buyer's orders, newest first, with the total count
	FindByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) ([]*Order, int64, error)
}

// CartRepository is the slice of the cart store checkout depends on
type CartRepository interface {
	// Clear removes every line from the buyer's cart
	Clear(ctx context.Context, buyerID uuid.UUID) error
}
