package repositories

import (
	"context"
	"errors"
	"time"

	"furnitureshop/internal/apperr"
	"furnitureshop/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const orderItemBatchSize = 100

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// GetAllByUser returns the user's orders with items, newest first.
func (r *GORMOrderRepository) GetAllByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC, id").
		Find(&orders).Error
	if err != nil {
		return nil, storageErr(err, "list orders")
	}
	return orders, nil
}

func (r *GORMOrderRepository) GetByIDForUser(ctx context.Context, tx *gorm.DB, userID, id string) (*models.Order, error) {
	return r.find(conn(r.db, tx).WithContext(ctx), userID, id)
}

func (r *GORMOrderRepository) LockByIDForUser(ctx context.Context, tx *gorm.DB, userID, id string) (*models.Order, error) {
	return r.find(conn(r.db, tx).WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), userID, id)
}

func (r *GORMOrderRepository) find(db *gorm.DB, userID, id string) (*models.Order, error) {
	var order models.Order
	err := db.Preload("Items").
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order", id)
		}
		return nil, storageErr(err, "get order")
	}
	return &order, nil
}

func (r *GORMOrderRepository) Create(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	if err := conn(r.db, tx).WithContext(ctx).Omit(clause.Associations).Create(order).Error; err != nil {
		return storageErr(err, "create order")
	}
	return nil
}

func (r *GORMOrderRepository) CreateItems(ctx context.Context, tx *gorm.DB, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	err := conn(r.db, tx).WithContext(ctx).
		Omit(clause.Associations).
		CreateInBatches(&items, orderItemBatchSize).Error
	if err != nil {
		return storageErr(err, "create order items")
	}
	return nil
}

func (r *GORMOrderRepository) UpdateTotal(ctx context.Context, tx *gorm.DB, orderID string, total decimal.Decimal) error {
	return r.updateColumns(ctx, tx, orderID, map[string]interface{}{"total_price": total}, "update order total")
}

func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, orderID string, status models.OrderStatus) error {
	return r.updateColumns(ctx, tx, orderID, map[string]interface{}{"status": status}, "update order status")
}

func (r *GORMOrderRepository) updateColumns(ctx context.Context, tx *gorm.DB, orderID string, values map[string]interface{}, op string) error {
	values["updated_at"] = time.Now()
	res := conn(r.db, tx).WithContext(ctx).Model(&models.Order{}).Where("id = ?", orderID).Updates(values)
	if res.Error != nil {
		return storageErr(res.Error, op)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("order", orderID)
	}
	return nil
}
