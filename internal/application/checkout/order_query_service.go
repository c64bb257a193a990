package checkout

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OrderQueryService serves a buyer's view of their own orders
type OrderQueryService struct {
	orderRepo order.OrderRepository
	logger    *zap.Logger
}

// NewOrderQueryService creates a new OrderQueryService
func NewOrderQueryService(orderRepo order.OrderRepository, logger *zap.Logger) *OrderQueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderQueryService{orderRepo: orderRepo, logger: logger}
}

// GetByID returns one of the buyer's orders. Orders of other buyers are reported
// as not found so their existence is not disclosed.
func (s *OrderQueryService) GetByID(ctx context.Context, buyerID, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, s.mapError(err, "failed to load order", zap.String("order_id", orderID.String()))
	}
	if !o.IsOwnedBy(buyerID) {
		return nil, shared.ErrNotFound
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// List returns the buyer's orders, newest first
func (s *OrderQueryService) List(ctx context.Context, buyerID uuid.UUID, filter ListOrdersFilter) (shared.Paginated[OrderListItemResponse], error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter = domainFilter.Normalize()

	orders, total, err := s.orderRepo.FindByBuyer(ctx, buyerID, domainFilter)
	if err != nil {
		return shared.Paginated[OrderListItemResponse]{}, s.mapError(err, "failed to list orders", zap.String("buyer_id", buyerID.String()))
	}

	items := make([]OrderListItemResponse, len(orders))
	for i, o := range orders {
		items[i] = ToOrderListItemResponse(o)
	}
	return shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize), nil
}

func (s *OrderQueryService) mapError(err error, msg string, fields ...zap.Field) error {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de
	}
	s.logger.Error(msg, append(fields, zap.Error(err))...)
	return shared.ErrInternal
}
