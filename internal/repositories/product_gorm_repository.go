package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inventario/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
// Every call opens its own session bound to ctx.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// List retrieves one window of products in primary-key order.
func (r *GORMProductRepository) List(ctx context.Context, offset, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Count returns the number of stored products.
func (r *GORMProductRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return total, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

// Create inserts product and fills in its generated ID.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// UpdateStock overwrites stock and updated_at in a single statement.
func (r *GORMProductRepository) UpdateStock(ctx context.Context, id uint, stock int, updatedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      stock,
			"updated_at": updatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update stock of product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrProductNotFound
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrProductNotFound
	}
	return nil
}
