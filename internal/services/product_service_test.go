package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"inventario/internal/database/dbtest"
	"inventario/internal/models"
	"inventario/internal/repositories"
	"inventario/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context, offset, limit int) ([]models.Product, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) UpdateStock(ctx context.Context, id uint, stock int, updatedAt time.Time) error {
	args := m.Called(ctx, id, stock, updatedAt)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPublisher records published inventory events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(routingKey string, v interface{}) error {
	args := m.Called(routingKey, v)
	return args.Error(0)
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func newSQLiteService(t *testing.T) *services.ProductService {
	return services.NewProductService(repositories.NewGORMProductRepository(dbtest.Open(t)), nil)
}

func TestProductService_CreateProduct(t *testing.T) {
	service := newSQLiteService(t)
	ctx := context.Background()

	product, err := service.CreateProduct(ctx, models.ProductFields{
		Name: strPtr("Auriculares"), Price: floatPtr(45), Stock: intPtr(12),
	})
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.NotZero(t, product.ID)
	assert.Equal(t, "Auriculares", product.Name)
	assert.False(t, product.CreatedAt.IsZero())
	assert.Equal(t, product.CreatedAt, product.UpdatedAt)

	found, err := service.GetProductByID(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, product.ID, found.ID)
	assert.Equal(t, product.Name, found.Name)
	assert.Equal(t, product.Price, found.Price)
	assert.Equal(t, product.Stock, found.Stock)
	assert.True(t, product.CreatedAt.Equal(found.CreatedAt))
}

func TestProductService_CreateProduct_ValidationFailsWithoutWriting(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockEvents := new(MockPublisher)
	service := services.NewProductService(mockRepo, mockEvents)

	product, err := service.CreateProduct(context.Background(), models.ProductFields{
		Name: strPtr(""), Price: floatPtr(-10), Stock: intPtr(-5),
	})
	assert.Nil(t, product)

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.GreaterOrEqual(t, len(verr.Details), 3)

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockEvents.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything)
}

func TestProductService_CreateProduct_MissingName(t *testing.T) {
	service := newSQLiteService(t)

	product, err := service.CreateProduct(context.Background(), models.ProductFields{
		Price: floatPtr(45), Stock: intPtr(12),
	})
	assert.Nil(t, product)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Details)

	page, err := service.ListProducts(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
}

func TestProductService_CreateProduct_RepositoryError(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Product")).Return(fmt.Errorf("database error")).Once()

	_, err := service.CreateProduct(context.Background(), models.ProductFields{
		Name: strPtr("SSD"), Price: floatPtr(120), Stock: intPtr(8),
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")
	mockRepo.AssertExpectations(t)
}

func TestProductService_ListProducts_Pagination(t *testing.T) {
	service := newSQLiteService(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		_, err := service.CreateProduct(ctx, models.ProductFields{
			Name: strPtr(fmt.Sprintf("Prod %d", i)), Price: floatPtr(10), Stock: intPtr(1),
		})
		require.NoError(t, err)
	}

	first, err := service.ListProducts(ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, first.Items, 10)
	assert.Equal(t, int64(15), first.Total)
	assert.Equal(t, 2, first.TotalPages)
	assert.Equal(t, "Prod 0", first.Items[0].Name)

	second, err := service.ListProducts(ctx, 2, 10)
	require.NoError(t, err)
	assert.Len(t, second.Items, 5)
	assert.Equal(t, "Prod 10", second.Items[0].Name)

	beyond, err := service.ListProducts(ctx, 5, 10)
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, int64(15), beyond.Total)
	assert.Equal(t, 2, beyond.TotalPages)
}

func TestProductService_ListProducts_PageCounts(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct{ n, k int }{{0, 10}, {1, 1}, {7, 3}, {9, 3}, {25, 10}} {
		t.Run(fmt.Sprintf("n=%d,k=%d", tc.n, tc.k), func(t *testing.T) {
			service := services.NewProductService(repositories.NewMemoryProductRepository(), nil)
			for i := 0; i < tc.n; i++ {
				_, err := service.CreateProduct(ctx, models.ProductFields{
					Name: strPtr("p"), Price: floatPtr(1), Stock: intPtr(1),
				})
				require.NoError(t, err)
			}

			wantPages := (tc.n + tc.k - 1) / tc.k
			seen := 0
			for page := 1; page <= wantPages; page++ {
				p, err := service.ListProducts(ctx, page, tc.k)
				require.NoError(t, err)
				assert.Equal(t, int64(tc.n), p.Total)
				assert.Equal(t, wantPages, p.TotalPages)
				if page < wantPages {
					assert.Len(t, p.Items, tc.k)
				}
				seen += len(p.Items)
			}
			assert.Equal(t, tc.n, seen)
		})
	}
}

func TestProductService_GetProductByID_Missing(t *testing.T) {
	service := newSQLiteService(t)
	product, err := service.GetProductByID(context.Background(), 9999)
	assert.NoError(t, err)
	assert.Nil(t, product)
}

func TestProductService_UpdateStock(t *testing.T) {
	service := newSQLiteService(t)
	ctx := context.Background()

	created, err := service.CreateProduct(ctx, models.ProductFields{
		Name: strPtr("SSD"), Price: floatPtr(120), Stock: intPtr(8),
	})
	require.NoError(t, err)

	updated, err := service.UpdateStock(ctx, created.ID, 15)
	require.NoError(t, err)
	assert.Equal(t, 15, updated.Stock)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))

	found, err := service.GetProductByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, found.Stock)

	zero, err := service.UpdateStock(ctx, created.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, zero.Stock)
}

func TestProductService_UpdateStock_Missing(t *testing.T) {
	service := newSQLiteService(t)
	product, err := service.UpdateStock(context.Background(), 9999, 10)
	assert.Nil(t, product)
	assert.ErrorIs(t, err, models.ErrProductNotFound)
	assert.Equal(t, "product not found", err.Error())
}

func TestProductService_UpdateStock_NegativeDoesNotMutate(t *testing.T) {
	service := newSQLiteService(t)
	ctx := context.Background()

	created, err := service.CreateProduct(ctx, models.ProductFields{
		Name: strPtr("Producto"), Price: floatPtr(50), Stock: intPtr(10),
	})
	require.NoError(t, err)

	product, err := service.UpdateStock(ctx, created.ID, -5)
	assert.Nil(t, product)
	assert.ErrorIs(t, err, models.ErrNegativeStock)
	assert.Contains(t, err.Error(), "cannot be negative")

	found, err := service.GetProductByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, found.Stock)
	assert.True(t, created.UpdatedAt.Equal(found.UpdatedAt))
}

func TestProductService_UpdateStock_MissingWinsOverNegative(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("GetByID", mock.Anything, uint(42)).Return(nil, nil).Once()

	_, err := service.UpdateStock(context.Background(), 42, -1)
	assert.ErrorIs(t, err, models.ErrProductNotFound)
	mockRepo.AssertNotCalled(t, "UpdateStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateStock_PassesFreshTimestamp(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	mockRepo.On("GetByID", mock.Anything, uint(1)).
		Return(&models.Product{ID: 1, Name: "Mouse", Stock: 10, CreatedAt: old, UpdatedAt: old}, nil).Once()
	mockRepo.On("UpdateStock", mock.Anything, uint(1), 50, mock.MatchedBy(func(ts time.Time) bool {
		return ts.After(old)
	})).Return(nil).Once()

	product, err := service.UpdateStock(context.Background(), 1, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, product.Stock)
	assert.Equal(t, old, product.CreatedAt)
	assert.True(t, product.UpdatedAt.After(old))
	mockRepo.AssertExpectations(t)
}

func TestProductService_TimestampsSurviveMicrosecondStores(t *testing.T) {
	service := services.NewProductService(repositories.NewMemoryProductRepository(), nil)
	ctx := context.Background()

	created, err := service.CreateProduct(ctx, models.ProductFields{
		Name: strPtr("SSD"), Price: floatPtr(120), Stock: intPtr(4),
	})
	require.NoError(t, err)
	assert.Equal(t, created.CreatedAt, created.CreatedAt.Truncate(time.Microsecond))

	updated, err := service.UpdateStock(ctx, created.ID, 9)
	require.NoError(t, err)
	assert.Equal(t, updated.UpdatedAt, updated.UpdatedAt.Truncate(time.Microsecond))
}

func TestProductService_DeleteProduct(t *testing.T) {
	service := newSQLiteService(t)
	ctx := context.Background()

	created, err := service.CreateProduct(ctx, models.ProductFields{
		Name: strPtr("RAM"), Price: floatPtr(80), Stock: intPtr(6),
	})
	require.NoError(t, err)

	require.NoError(t, service.DeleteProduct(ctx, created.ID))

	found, err := service.GetProductByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	err = service.DeleteProduct(ctx, created.ID)
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestProductService_DeleteProduct_Missing(t *testing.T) {
	service := newSQLiteService(t)
	err := service.DeleteProduct(context.Background(), 9999)
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestProductService_PublishesEventsOnSuccessfulWrites(t *testing.T) {
	mockEvents := new(MockPublisher)
	service := services.NewProductService(repositories.NewMemoryProductRepository(), mockEvents)
	ctx := context.Background()

	mockEvents.On("PublishJSON", models.EventProductCreated, mock.MatchedBy(func(e models.ProductEvent) bool {
		return e.Name == "Keyboard" && e.Stock != nil && *e.Stock == 20
	})).Return(nil).Once()
	mockEvents.On("PublishJSON", models.EventProductStockUpdated, mock.MatchedBy(func(e models.ProductEvent) bool {
		return e.Stock != nil && *e.Stock == 50
	})).Return(nil).Once()
	mockEvents.On("PublishJSON", models.EventProductDeleted, mock.AnythingOfType("models.ProductEvent")).Return(nil).Once()

	created, err := service.CreateProduct(ctx, models.ProductFields{
		Name: strPtr("Keyboard"), Price: floatPtr(75.5), Stock: intPtr(20),
	})
	require.NoError(t, err)
	_, err = service.UpdateStock(ctx, created.ID, 50)
	require.NoError(t, err)
	require.NoError(t, service.DeleteProduct(ctx, created.ID))

	// Failed operations publish nothing.
	_, err = service.UpdateStock(ctx, created.ID, 1)
	assert.Error(t, err)
	assert.Error(t, service.DeleteProduct(ctx, created.ID))

	mockEvents.AssertExpectations(t)
	mockEvents.AssertNumberOfCalls(t, "PublishJSON", 3)
}

func TestProductService_PublishFailureDoesNotFailWrite(t *testing.T) {
	mockEvents := new(MockPublisher)
	service := services.NewProductService(repositories.NewMemoryProductRepository(), mockEvents)

	mockEvents.On("PublishJSON", mock.Anything, mock.Anything).Return(fmt.Errorf("broker down"))

	product, err := service.CreateProduct(context.Background(), models.ProductFields{
		Name: strPtr("Tablet"), Price: floatPtr(200), Stock: intPtr(15),
	})
	require.NoError(t, err)
	assert.NotZero(t, product.ID)
}

// Concurrent stock updates on one product are last-write-wins: no update is
// lost as an error and the stored value is one of the written values.
func TestProductService_UpdateStock_ConcurrentLastWriteWins(t *testing.T) {
	service := newSQLiteService(t)
	ctx := context.Background()

	created, err := service.CreateProduct(ctx, models.ProductFields{
		Name: strPtr("Monitor"), Price: floatPtr(300), Stock: intPtr(0),
	})
	require.NoError(t, err)

	written := map[int]bool{}
	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		written[i*10] = true
		wg.Add(1)
		go func(stock int) {
			defer wg.Done()
			_, err := service.UpdateStock(ctx, created.ID, stock)
			assert.NoError(t, err)
		}(i * 10)
	}
	wg.Wait()

	found, err := service.GetProductByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, written[found.Stock], "unexpected final stock %d", found.Stock)
}
