package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPlacedOrder(t *testing.T, buyer identity.Buyer) *order.Order {
	t.Helper()
	desk := newDesk(t, 10)
	addr, err := testAddress().ToAddress()
	require.NoError(t, err)
	item := order.NewItem(desk, 2, dec("499"), nil, false)
	o, err := order.NewOrder(buyer, []order.Item{item}, addr, order.PaymentUPI, valueobject.INR)
	require.NoError(t, err)
	return o
}

func TestOrderQueryService_GetByID(t *testing.T) {
	owner := identity.NewBuyer(uuid.New(), identity.BuyerClassIndividual)
	o := newPlacedOrder(t, owner)

	repo := new(MockOrderRepository)
	repo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	svc := NewOrderQueryService(repo, nil)

	t.Run("owner sees the order", func(t *testing.T) {
		resp, err := svc.GetByID(context.Background(), owner.ID, o.ID)
		require.NoError(t, err)
		assert.Equal(t, o.OrderNumber, resp.OrderNumber)
		assert.Equal(t, "upi", resp.PaymentMethod)
		assert.Equal(t, "Bengaluru", resp.ShippingAddress.City)
	})

	t.Run("other buyers get not found", func(t *testing.T) {
		_, err := svc.GetByID(context.Background(), uuid.New(), o.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("repository failure is internal", func(t *testing.T) {
		id := uuid.New()
		repo.On("FindByID", mock.Anything, id).Return(nil, errors.New("timeout"))
		_, err := svc.GetByID(context.Background(), owner.ID, id)
		assert.ErrorIs(t, err, shared.ErrInternal)
	})
}

func TestOrderQueryService_List(t *testing.T) {
	buyer := identity.NewBuyer(uuid.New(), identity.BuyerClassIndividual)
	orders := []*order.Order{newPlacedOrder(t, buyer), newPlacedOrder(t, buyer)}

	repo := new(MockOrderRepository)
	repo.On("FindByBuyer", mock.Anything, buyer.ID, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 2 && f.PageSize == 100 && f.OrderBy == "created_at" && f.OrderDir == "desc"
	})).Return(orders, int64(102), nil)
	svc := NewOrderQueryService(repo, nil)

	page, err := svc.List(context.Background(), buyer.ID, ListOrdersFilter{Page: 2, PageSize: 500})

	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(102), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 1, page.Items[0].ItemCount)
}

func TestOrderQueryService_ListDefaultsToFirstPage(t *testing.T) {
	buyer := identity.NewBuyer(uuid.New(), identity.BuyerClassIndividual)

	repo := new(MockOrderRepository)
	repo.On("FindByBuyer", mock.Anything, buyer.ID, shared.DefaultFilter()).Return([]*order.Order{}, int64(0), nil)
	svc := NewOrderQueryService(repo, nil)

	page, err := svc.List(context.Background(), buyer.ID, ListOrdersFilter{})

	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
	repo.AssertExpectations(t)
}
