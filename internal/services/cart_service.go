package services

import (
	"context"
	"time"

	"furnitureshop/internal/apperr"
	"furnitureshop/internal/models"
	"furnitureshop/internal/repositories"

	"github.com/shopspring/decimal"
)

// CartService manages a user's cart. Every method takes the caller's userID
// and only ever touches that user's cart.
type CartService struct {
	carts   repositories.CartRepository
	timeout time.Duration
}

// NewCartService creates a new CartService.
func NewCartService(carts repositories.CartRepository, timeout time.Duration) *CartService {
	return &CartService{carts: carts, timeout: timeout}
}

// GetOrCreateCart returns the user's cart, creating an empty one on first
// access. created reports whether this call created it.
func (s *CartService) GetOrCreateCart(ctx context.Context, userID string) (cart *models.Cart, created bool, err error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.carts.GetOrCreate(ctx, userID)
}

// ListCarts returns the user's carts. A user owns exactly one.
func (s *CartService) ListCarts(ctx context.Context, userID string) ([]models.Cart, error) {
	cart, _, err := s.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return []models.Cart{*cart}, nil
}

func (s *CartService) GetCart(ctx context.Context, userID, cartID string) (*models.Cart, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.carts.GetForUser(ctx, userID, cartID)
}

func (s *CartService) ListItems(ctx context.Context, userID, cartID string) ([]models.CartItem, error) {
	cart, err := s.GetCart(ctx, userID, cartID)
	if err != nil {
		return nil, err
	}
	return cart.Items, nil
}

func (s *CartService) GetItem(ctx context.Context, userID, cartID, itemID string) (*models.CartItem, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.carts.GetItem(ctx, userID, cartID, itemID)
}

// AddOrIncrement adds quantity of productID to the cart. When the product
// is already in the cart its line quantity grows instead of a second line
// being created.
func (s *CartService) AddOrIncrement(ctx context.Context, userID, cartID, productID string, quantity int) (*models.CartItem, error) {
	if err := checkQuantity(quantity); err != nil {
		return nil, err
	}
	if productID == "" {
		return nil, apperr.ValidationFields(map[string]string{"ProductID": "product_id is required"})
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var item *models.CartItem
	err := retryOnConflict(ctx, func() error {
		var err error
		item, err = s.carts.AddOrIncrement(ctx, userID, cartID, productID, quantity)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// SetQuantity replaces the quantity of an existing line.
func (s *CartService) SetQuantity(ctx context.Context, userID, cartID, itemID string, quantity int) (*models.CartItem, error) {
	if err := checkQuantity(quantity); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.carts.SetQuantity(ctx, userID, cartID, itemID, quantity)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, cartID, itemID string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.carts.RemoveItem(ctx, userID, cartID, itemID)
}

// Clear deletes every line of the cart.
func (s *CartService) Clear(ctx context.Context, userID, cartID string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if _, err := s.carts.GetForUser(ctx, userID, cartID); err != nil {
		return err
	}
	return s.carts.Clear(ctx, nil, cartID)
}

// ComputeTotal prices the cart at current product prices.
func (s *CartService) ComputeTotal(ctx context.Context, userID, cartID string) (decimal.Decimal, error) {
	cart, err := s.GetCart(ctx, userID, cartID)
	if err != nil {
		return decimal.Zero, err
	}
	return cart.Total(), nil
}

func checkQuantity(quantity int) error {
	if quantity < 1 {
		return apperr.Validation("quantity must be at least 1")
	}
	if quantity > models.MaxItemQuantity {
		return apperr.Validation("quantity must be at most %d", models.MaxItemQuantity)
	}
	return nil
}
