// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
//   - base.go: BaseModel and AggregateModel
//   - catalog.go: products and their corporate price tiers
//   - order.go: placed orders and order lines
//   - cart.go: cart lines cleared on checkout
//
// Nested value objects are stored as JSON text columns (jsonb on PostgreSQL).
package models
