package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/mock"
)

type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) PlaceOrder(ctx context.Context, buyer identity.Buyer, req checkout.PlaceOrderRequest) (*checkout.OrderResponse, error) {
	args := m.Called(ctx, buyer, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.OrderResponse), args.Error(1)
}

func (m *MockCheckoutService) QuotePrice(ctx context.Context, buyer identity.Buyer, productID uuid.UUID, quantity int) (*checkout.PriceQuoteResponse, error) {
	args := m.Called(ctx, buyer, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.PriceQuoteResponse), args.Error(1)
}

type MockOrderQueries struct {
	mock.Mock
}

func (m *MockOrderQueries) GetByID(ctx context.Context, buyerID, orderID uuid.UUID) (*checkout.OrderResponse, error) {
	args := m.Called(ctx, buyerID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.OrderResponse), args.Error(1)
}

func (m *MockOrderQueries) List(ctx context.Context, buyerID uuid.UUID, filter checkout.ListOrdersFilter) (shared.Paginated[checkout.OrderListItemResponse], error) {
	args := m.Called(ctx, buyerID, filter)
	return args.Get(0).(shared.Paginated[checkout.OrderListItemResponse]), args.Error(1)
}

type MockDatabaseProbe struct {
	mock.Mock
}

func (m *MockDatabaseProbe) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockDatabaseProbe) Stats() (persistence.ConnectionStats, error) {
	args := m.Called()
	return args.Get(0).(persistence.ConnectionStats), args.Error(1)
}

func (m *MockDatabaseProbe) Driver() string {
	return m.Called().String(0)
}
