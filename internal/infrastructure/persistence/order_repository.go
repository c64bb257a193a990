package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Save inserts the order header and its lines. A second order with the same
// (buyer_id, idempotency_key) violates the unique index and maps to DUPLICATE_REQUEST.
// The insert runs under a savepoint so the enclosing transaction stays usable for
// telling that clash apart from any other unique violation.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	model := models.OrderModelFromDomain(o)
	db := r.db.WithContext(ctx)
	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) && o.IdempotencyKey != "" {
		taken, lookupErr := r.idempotencyKeyTaken(db, o.BuyerID, o.IdempotencyKey)
		if lookupErr != nil {
			return errors.Join(err, lookupErr)
		}
		if taken {
			return shared.ErrDuplicateRequest.WithDetails(map[string]any{
				"idempotency_key": o.IdempotencyKey,
			})
		}
	}
	return fmt.Errorf("failed to save order %s: %w", o.OrderNumber, err)
}

func (r *GormOrderRepository) idempotencyKeyTaken(db *gorm.DB, buyerID uuid.UUID, key string) (bool, error) {
	var n int64
	err := db.Model(&models.OrderModel{}).
		Where("buyer_id = ? AND idempotency_key = ?", buyerID, key).
		Count(&n).Error
	return n > 0, err
}

// FindByID finds an order by its ID with its lines in placement order
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_no") }).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	o := model.ToDomain()
	if err := o.VerifyTotal(); err != nil {
		// surfaced as an infrastructure error, not a domain error
		return nil, fmt.Errorf("order %s failed integrity check: %v", id, err)
	}
	return o, nil
}

// FindByBuyer lists a buyer's orders page by page with the total count
func (r *GormOrderRepository) FindByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) ([]*order.Order, int64, error) {
	filter = filter.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("buyer_id = ?", buyerID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*order.Order{}, 0, nil
	}

	sortField := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	sortDir := ValidateSortOrder(filter.OrderDir)

	var rows []models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_no") }).
		Where("buyer_id = ?", buyerID).
		Order(sortField + " " + sortDir).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	orders := make([]*order.Order, len(rows))
	for i := range rows {
		orders[i] = rows[i].ToDomain()
	}
	return orders, total, nil
}

// Ensure GormOrderRepository implements OrderRepository
var _ order.OrderRepository = (*GormOrderRepository)(nil)
