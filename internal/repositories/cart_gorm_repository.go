package repositories

import (
	"context"
	"errors"
	"time"

	"furnitureshop/internal/apperr"
	"furnitureshop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at, id")
	}).Preload("Items.Product")
}

func (r *GORMCartRepository) GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := preloadItems(conn(r.db, tx).WithContext(ctx)).
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.CartNotFound(userID)
		}
		return nil, storageErr(err, "get cart")
	}
	return &cart, nil
}

func (r *GORMCartRepository) LockByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := conn(r.db, tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.CartNotFound(userID)
		}
		return nil, storageErr(err, "lock cart")
	}
	return &cart, nil
}

// GetOrCreate returns the user's cart and whether this call created it. Two
// concurrent first accesses race on the unique user_id index; the loser's
// insert is a no-op and both read back the same row.
func (r *GORMCartRepository) GetOrCreate(ctx context.Context, userID string) (*models.Cart, bool, error) {
	cart, err := r.GetByUserID(ctx, nil, userID)
	if err == nil {
		return cart, false, nil
	}
	if !apperr.IsKind(err, apperr.KindCartNotFound) {
		return nil, false, err
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&models.Cart{UserID: userID})
	if res.Error != nil {
		return nil, false, storageErr(res.Error, "create cart")
	}

	cart, err = r.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, false, err
	}
	return cart, res.RowsAffected == 1, nil
}

func (r *GORMCartRepository) GetForUser(ctx context.Context, userID, cartID string) (*models.Cart, error) {
	var cart models.Cart
	err := preloadItems(r.db.WithContext(ctx)).
		Where("id = ? AND user_id = ?", cartID, userID).
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("cart", cartID)
		}
		return nil, storageErr(err, "get cart")
	}
	return &cart, nil
}

func (r *GORMCartRepository) ListItems(ctx context.Context, tx *gorm.DB, cartID string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := conn(r.db, tx).WithContext(ctx).
		Preload("Product").
		Where("cart_id = ?", cartID).
		Order("created_at, id").
		Find(&items).Error
	if err != nil {
		return nil, storageErr(err, "list cart items")
	}
	return items, nil
}

func (r *GORMCartRepository) GetItem(ctx context.Context, userID, cartID, itemID string) (*models.CartItem, error) {
	if _, err := r.ownedCart(r.db.WithContext(ctx), userID, cartID, false); err != nil {
		return nil, err
	}
	return r.findItem(r.db.WithContext(ctx), cartID, itemID)
}

// AddOrIncrement inserts the (cart, product) line or adds quantity to the
// existing one in a single upsert, so concurrent adds never lose an
// increment. The locked cart row keeps the merged quantity check and the
// upsert consistent.
func (r *GORMCartRepository) AddOrIncrement(ctx context.Context, userID, cartID, productID string, quantity int) (*models.CartItem, error) {
	var item *models.CartItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.ownedCart(tx, userID, cartID, true); err != nil {
			return err
		}

		var product models.Product
		if err := tx.First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("product", productID)
			}
			return err
		}
		if !product.IsAvailable {
			return apperr.Validation("product %s is not available", productID)
		}

		var existing int
		if err := tx.Model(&models.CartItem{}).
			Where("cart_id = ? AND product_id = ?", cartID, productID).
			Select("COALESCE(MAX(quantity), 0)").
			Scan(&existing).Error; err != nil {
			return err
		}
		if existing+quantity > models.MaxItemQuantity {
			return apperr.Validation("quantity for product %s would exceed %d", productID, models.MaxItemQuantity)
		}

		now := time.Now()
		line := models.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}
		err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
				"updated_at": now,
			}),
		}).Create(&line).Error
		if err != nil {
			return err
		}

		var stored models.CartItem
		if err := tx.Preload("Product").
			Where("cart_id = ? AND product_id = ?", cartID, productID).
			First(&stored).Error; err != nil {
			return err
		}
		item = &stored
		return touchCart(tx, cartID, now)
	})
	if err != nil {
		return nil, storageErr(err, "add cart item")
	}
	return item, nil
}

func (r *GORMCartRepository) SetQuantity(ctx context.Context, userID, cartID, itemID string, quantity int) (*models.CartItem, error) {
	var item *models.CartItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.ownedCart(tx, userID, cartID, true); err != nil {
			return err
		}
		now := time.Now()
		res := tx.Model(&models.CartItem{}).
			Where("id = ? AND cart_id = ?", itemID, cartID).
			Updates(map[string]interface{}{"quantity": quantity, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("cart item", itemID)
		}
		found, err := r.findItem(tx, cartID, itemID)
		if err != nil {
			return err
		}
		item = found
		return touchCart(tx, cartID, now)
	})
	if err != nil {
		return nil, storageErr(err, "update cart item")
	}
	return item, nil
}

func (r *GORMCartRepository) RemoveItem(ctx context.Context, userID, cartID, itemID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.ownedCart(tx, userID, cartID, true); err != nil {
			return err
		}
		res := tx.Where("id = ? AND cart_id = ?", itemID, cartID).Delete(&models.CartItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("cart item", itemID)
		}
		return touchCart(tx, cartID, time.Now())
	})
	return storageErr(err, "remove cart item")
}

func (r *GORMCartRepository) Clear(ctx context.Context, tx *gorm.DB, cartID string) error {
	db := conn(r.db, tx).WithContext(ctx)
	if err := db.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return storageErr(err, "clear cart")
	}
	return storageErr(touchCart(db, cartID, time.Now()), "clear cart")
}

func (r *GORMCartRepository) ownedCart(db *gorm.DB, userID, cartID string, lock bool) (*models.Cart, error) {
	var cart models.Cart
	q := db.Where("id = ? AND user_id = ?", cartID, userID)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("cart", cartID)
		}
		return nil, storageErr(err, "get cart")
	}
	return &cart, nil
}

func (r *GORMCartRepository) findItem(db *gorm.DB, cartID, itemID string) (*models.CartItem, error) {
	var item models.CartItem
	if err := db.Preload("Product").First(&item, "id = ? AND cart_id = ?", itemID, cartID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("cart item", itemID)
		}
		return nil, storageErr(err, "get cart item")
	}
	return &item, nil
}

func touchCart(db *gorm.DB, cartID string, at time.Time) error {
	return db.Model(&models.Cart{}).Where("id = ?", cartID).UpdateColumn("updated_at", at).Error
}
