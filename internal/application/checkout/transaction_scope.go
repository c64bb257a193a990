package checkout

import (
	"context"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
)

// TransactionScope runs checkout work inside one database transaction.
// Every repository handed to fn shares that transaction; it is committed when fn
// returns nil and rolled back otherwise.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories a checkout touches, scoped
// to the current transaction.
//
// ProductRepo row-locks products for the duration of the transaction, so two
// checkouts for the same product serialize on the lock rather than racing on stock.
type TransactionalRepositories interface {
	ProductRepo() catalog.ProductRepository
	OrderRepo() order.OrderRepository
	CartRepo() order.CartRepository
}
