package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDsForUpdate loads products with row locks held until the surrounding
	// transaction ends. Rows are locked in ascending ID order; missing IDs are omitted.
	FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]*Product, error)

	// SaveWithLock persists stock and sales counters if the stored version still
	// matches product.Version, then bumps the version.
	SaveWithLock(ctx context.Context, product *Product) error
}
