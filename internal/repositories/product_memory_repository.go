package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"inventario/internal/models"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
// IDs are assigned from a counter and never reused.
type MemoryProductRepository struct {
	products map[uint]models.Product
	nextID   uint
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[uint]models.Product),
		nextID:   1,
	}
}

// List returns one window of products ordered by ID.
func (r *MemoryProductRepository) List(_ context.Context, offset, limit int) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uint, 0, len(r.products))
	for id := range r.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	productList := make([]models.Product, 0, limit)
	for i := offset; i < len(ids) && len(productList) < limit; i++ {
		productList = append(productList, r.products[ids[i]])
	}
	return productList, nil
}

// Count returns the number of stored products.
func (r *MemoryProductRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.products)), nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(_ context.Context, id uint) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return &product, nil
}

// Create adds a new product.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product.ID = r.nextID
	r.nextID++
	r.products[product.ID] = *product
	return nil
}

// UpdateStock overwrites the stock of an existing product.
func (r *MemoryProductRepository) UpdateStock(_ context.Context, id uint, stock int, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return models.ErrProductNotFound
	}
	product.Stock = stock
	product.UpdatedAt = updatedAt
	r.products[id] = product
	return nil
}

// Delete removes a product by its ID.
func (r *MemoryProductRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return models.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}
