package services

import (
	"context"
	"time"

	"inventario/internal/models"
	"inventario/internal/repositories"

	"github.com/rs/zerolog"
)

// EventPublisher publishes inventory events. *rabbitmq.Client satisfies it.
type EventPublisher interface {
	PublishJSON(routingKey string, v interface{}) error
}

// ProductService handles business logic related to products.
// It is the only path through which products are written.
type ProductService struct {
	repo   repositories.ProductRepository
	events EventPublisher
	now    func() time.Time
}

// NewProductService creates a new ProductService. events may be nil.
func NewProductService(repo repositories.ProductRepository, events EventPublisher) *ProductService {
	return &ProductService{
		repo:   repo,
		events: events,
		now:    now,
	}
}

// now is truncated to the coarsest precision of the supported stores
// (postgres keeps microseconds), so written and re-read timestamps agree.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// ListProducts returns one page of products in ID order.
// page and pageSize must already be >= 1; pages past the end come back empty.
func (s *ProductService) ListProducts(ctx context.Context, page, pageSize int) (*models.Page, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, models.Offset(page, pageSize), pageSize)
	if err != nil {
		return nil, err
	}
	return models.NewPage(items, total, page, pageSize), nil
}

// CreateProduct validates fields and persists a new product.
// Invalid fields yield a *models.ValidationError and nothing is written.
func (s *ProductService) CreateProduct(ctx context.Context, fields models.ProductFields) (*models.Product, error) {
	if details := fields.Validate(); len(details) > 0 {
		return nil, &models.ValidationError{Details: details}
	}

	product := models.NewProduct(fields, s.now())
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	stock := product.Stock
	s.publish(ctx, models.ProductEvent{
		Type:       models.EventProductCreated,
		ProductID:  product.ID,
		Name:       product.Name,
		Stock:      &stock,
		OccurredAt: product.CreatedAt,
	})
	return product, nil
}

// GetProductByID returns (nil, nil) when the product does not exist.
func (s *ProductService) GetProductByID(ctx context.Context, id uint) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateStock overwrites the stock of an existing product and refreshes its updated_at.
func (s *ProductService) UpdateStock(ctx context.Context, id uint, stock int) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, models.ErrProductNotFound
	}
	if stock < 0 {
		return nil, models.ErrNegativeStock
	}

	updatedAt := s.now()
	if err := s.repo.UpdateStock(ctx, id, stock, updatedAt); err != nil {
		return nil, err
	}
	product.Stock = stock
	product.UpdatedAt = updatedAt

	s.publish(ctx, models.ProductEvent{
		Type:       models.EventProductStockUpdated,
		ProductID:  product.ID,
		Name:       product.Name,
		Stock:      &stock,
		OccurredAt: updatedAt,
	})
	return product, nil
}

// DeleteProduct permanently removes a product.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, models.ProductEvent{
		Type:       models.EventProductDeleted,
		ProductID:  id,
		OccurredAt: s.now(),
	})
	return nil
}

// publish never fails the caller: the write is already committed.
func (s *ProductService) publish(ctx context.Context, event models.ProductEvent) {
	if s.events == nil {
		return
	}
	log := zerolog.Ctx(ctx)
	if err := s.events.PublishJSON(event.Type, event); err != nil {
		log.Warn().Err(err).Str("event", event.Type).Uint("product_id", event.ProductID).Msg("failed to publish inventory event")
		return
	}
	log.Debug().Str("event", event.Type).Uint("product_id", event.ProductID).Msg("published inventory event")
}
