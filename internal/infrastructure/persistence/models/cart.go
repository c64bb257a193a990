package models

import (
	"github.com/google/uuid"
)

// CartItemModel is one line of a buyer's cart.
type CartItemModel struct {
	BaseModel
	BuyerID   uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_cart_items_buyer_product,priority:1"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_buyer_product,priority:2"`
	Quantity  int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CartItemModel) TableName() string {
	return "cart_items"
}
