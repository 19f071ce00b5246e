package models

import "time"

// Routing keys of inventory events.
const (
	EventProductCreated      = "product.created"
	EventProductStockUpdated = "product.stock_updated"
	EventProductDeleted      = "product.deleted"
)

// ProductEvent describes a committed change to a product.
type ProductEvent struct {
	Type       string    `json:"type"`
	ProductID  uint      `json:"product_id"`
	Name       string    `json:"name,omitempty"`
	Stock      *int      `json:"stock,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
