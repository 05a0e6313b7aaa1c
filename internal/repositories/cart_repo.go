package repositories

import (
	"context"

	"furnitureshop/internal/models"

	"gorm.io/gorm"
)

// CartRepository defines the interface for cart data access.
//
// Every lookup that takes a userID filters on the cart owner; a cart or item
// belonging to another user is reported as not found. Methods taking a tx
// run inside the caller's transaction when tx is non-nil.
type CartRepository interface {
	// GetByUserID returns the user's cart with items and products loaded.
	GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.Cart, error)
	// LockByUserID row-locks the user's cart for the rest of tx.
	LockByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.Cart, error)
	// GetOrCreate returns the user's cart, creating it on first access.
	GetOrCreate(ctx context.Context, userID string) (*models.Cart, bool, error)
	GetForUser(ctx context.Context, userID, cartID string) (*models.Cart, error)
	ListItems(ctx context.Context, tx *gorm.DB, cartID string) ([]models.CartItem, error)
	GetItem(ctx context.Context, userID, cartID, itemID string) (*models.CartItem, error)
	AddOrIncrement(ctx context.Context, userID, cartID, productID string, quantity int) (*models.CartItem, error)
	SetQuantity(ctx context.Context, userID, cartID, itemID string, quantity int) (*models.CartItem, error)
	RemoveItem(ctx context.Context, userID, cartID, itemID string) error
	Clear(ctx context.Context, tx *gorm.DB, cartID string) error
}
