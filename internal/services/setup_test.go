package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"furnitureshop/internal/database"
	"furnitureshop/internal/models"
	"furnitureshop/internal/repositories"
	"furnitureshop/internal/services"
	"furnitureshop/pkg/idempotency"
	"furnitureshop/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testTimeout = 5 * time.Second

// newTestDB opens a private in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := database.Open("sqlite", dsn, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

type store struct {
	db       *gorm.DB
	products *services.ProductService
	catalog  *services.CatalogService
	carts    *services.CartService
	orders   *services.OrderService
	cartRepo *repositories.GORMCartRepository
}

func newStore(t *testing.T) *store {
	t.Helper()
	db := newTestDB(t)
	cartRepo := repositories.NewGORMCartRepository(db)
	return &store{
		db:       db,
		products: services.NewProductService(repositories.NewGORMProductRepository(db), testTimeout),
		catalog:  services.NewCatalogService(repositories.NewGORMCategoryRepository(db), testTimeout),
		carts:    services.NewCartService(cartRepo, testTimeout),
		orders: services.NewOrderService(
			repositories.NewGORMTransactor(db),
			repositories.NewGORMOrderRepository(db),
			cartRepo,
			logger.NewNop(),
			testTimeout,
		),
		cartRepo: cartRepo,
	}
}

func (s *store) category(t *testing.T, name string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name, IsActive: true}
	require.NoError(t, s.catalog.CreateCategory(context.Background(), c))
	return c
}

func (s *store) product(t *testing.T, categoryID, name, price string) *models.Product {
	t.Helper()
	p := &models.Product{
		CategoryID:  categoryID,
		Name:        name,
		Price:       decimal.RequireFromString(price),
		Stock:       10,
		IsAvailable: true,
	}
	require.NoError(t, s.products.CreateProduct(context.Background(), p))
	return p
}

func (s *store) cart(t *testing.T, userID string) *models.Cart {
	t.Helper()
	c, _, err := s.carts.GetOrCreateCart(context.Background(), userID)
	require.NoError(t, err)
	return c
}

func (s *store) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(model).Count(&n).Error)
	return n
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// MockEventPublisher is a mock implementation of services.EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, eventType string, body []byte) error {
	args := m.Called(ctx, eventType, body)
	return args.Error(0)
}

// memoryIdempotencyStore is an in-process services.IdempotencyStore.
type memoryIdempotencyStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{values: map[string]string{}}
}

func (m *memoryIdempotencyStore) Reserve(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.values[key]; ok {
		return v, false, nil
	}
	m.values[key] = idempotency.Pending
	return "", true, nil
}

func (m *memoryIdempotencyStore) Complete(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memoryIdempotencyStore) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
