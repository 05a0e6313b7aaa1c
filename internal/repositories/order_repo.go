package repositories

import (
	"context"

	"furnitureshop/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderRepository defines the interface for order data access. Reads are
// always scoped to the owning user.
type OrderRepository interface {
	GetAllByUser(ctx context.Context, userID string) ([]models.Order, error)
	GetByIDForUser(ctx context.Context, tx *gorm.DB, userID, id string) (*models.Order, error)
	LockByIDForUser(ctx context.Context, tx *gorm.DB, userID, id string) (*models.Order, error)
	// Create inserts the order header only; items go through CreateItems.
	Create(ctx context.Context, tx *gorm.DB, order *models.Order) error
	CreateItems(ctx context.Context, tx *gorm.DB, items []models.OrderItem) error
	UpdateTotal(ctx context.Context, tx *gorm.DB, orderID string, total decimal.Decimal) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, orderID string, status models.OrderStatus) error
}
