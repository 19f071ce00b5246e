package repositories

import (
	"context"
	"time"

	"inventario/internal/models"
)

// ProductRepository defines the interface for product data access.
// GetByID returns (nil, nil) when no product has the given id.
// UpdateStock and Delete return models.ErrProductNotFound when nothing matched.
type ProductRepository interface {
	List(ctx context.Context, offset, limit int) ([]models.Product, error)
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	UpdateStock(ctx context.Context, id uint, stock int, updatedAt time.Time) error
	Delete(ctx context.Context, id uint) error
}
