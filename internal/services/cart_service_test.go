package services_test

import (
	"context"
	"math"
	"testing"

	"furnitureshop/internal/apperr"
	"furnitureshop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestCartService_GetOrCreateCart(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	first, created, err := s.carts.GetOrCreateCart(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "user-1", first.UserID)

	second, created, err := s.carts.GetOrCreateCart(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	carts, err := s.carts.ListCarts(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, carts, 1)
	assert.Equal(t, first.ID, carts[0].ID)
}

func TestCartService_AddOrIncrement_MergesLines(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	cat := s.category(t, "Chairs")
	chair := s.product(t, cat.ID, "Chair", "10.00")
	cart := s.cart(t, "user-1")

	item, err := s.carts.AddOrIncrement(ctx, "user-1", cart.ID, chair.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)

	merged, err := s.carts.AddOrIncrement(ctx, "user-1", cart.ID, chair.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, item.ID, merged.ID)
	assert.Equal(t, 5, merged.Quantity)

	items, err := s.carts.ListItems(ctx, "user-1", cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Chair", items[0].Product.Name)
}

func TestCartService_AddOrIncrement_Rejections(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	cat := s.category(t, "Tables")
	table := s.product(t, cat.ID, "Table", "120.00")
	cart := s.cart(t, "user-1")

	_, err := s.carts.AddOrIncrement(ctx, "user-1", cart.ID, table.ID, 0)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = s.carts.AddOrIncrement(ctx, "user-1", cart.ID, "missing-product", 1)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	table.IsAvailable = false
	require.NoError(t, s.products.UpdateProduct(ctx, table))
	_, err = s.carts.AddOrIncrement(ctx, "user-1", cart.ID, table.ID, 1)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	assert.Equal(t, int64(0), s.count(t, &models.CartItem{}))
}

func TestCartService_QuantityCeiling(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	cat := s.category(t, "Sofas")
	sofa := s.product(t, cat.ID, "Sofa", "300.00")
	cart := s.cart(t, "user-1")

	_, err := s.carts.AddOrIncrement(ctx, "user-1", cart.ID, sofa.ID, math.MaxInt64)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Equal(t, int64(0), s.count(t, &models.CartItem{}))

	item, err := s.carts.AddOrIncrement(ctx, "user-1", cart.ID, sofa.ID, models.MaxItemQuantity)
	require.NoError(t, err)
	assert.Equal(t, models.MaxItemQuantity, item.Quantity)

	// The merged quantity is bounded too.
	_, err = s.carts.AddOrIncrement(ctx, "user-1", cart.ID, sofa.ID, 1)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	stored, err := s.carts.GetItem(ctx, "user-1", cart.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MaxItemQuantity, stored.Quantity)

	_, err = s.carts.SetQuantity(ctx, "user-1", cart.ID, item.ID, models.MaxItemQuantity+1)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestCartService_ConcurrentAddsKeepEveryIncrement(t *testing.T) {
	s := newStore(t)
	cat := s.category(t, "Lamps")
	lamp := s.product(t, cat.ID, "Lamp", "4.25")
	cart := s.cart(t, "user-1")

	const adds = 8
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < adds; i++ {
		g.Go(func() error {
			_, err := s.carts.AddOrIncrement(ctx, "user-1", cart.ID, lamp.ID, 1)
			return err
		})
	}
	require.NoError(t, g.Wait())

	items, err := s.carts.ListItems(context.Background(), "user-1", cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, adds, items[0].Quantity)
}

func TestCartService_SetQuantityRemoveAndClear(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	cat := s.category(t, "Storage")
	shelf := s.product(t, cat.ID, "Shelf", "30.00")
	box := s.product(t, cat.ID, "Box", "2.50")
	cart := s.cart(t, "user-1")

	shelfItem, err := s.carts.AddOrIncrement(ctx, "user-1", cart.ID, shelf.ID, 1)
	require.NoError(t, err)
	boxItem, err := s.carts.AddOrIncrement(ctx, "user-1", cart.ID, box.ID, 1)
	require.NoError(t, err)

	updated, err := s.carts.SetQuantity(ctx, "user-1", cart.ID, boxItem.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	_, err = s.carts.SetQuantity(ctx, "user-1", cart.ID, boxItem.ID, 0)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	total, err := s.carts.ComputeTotal(ctx, "user-1", cart.ID)
	require.NoError(t, err)
	assert.Equal(t, "40.00", total.StringFixed(2))

	require.NoError(t, s.carts.RemoveItem(ctx, "user-1", cart.ID, shelfItem.ID))
	err = s.carts.RemoveItem(ctx, "user-1", cart.ID, shelfItem.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	got, err := s.carts.GetItem(ctx, "user-1", cart.ID, boxItem.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Quantity)

	require.NoError(t, s.carts.Clear(ctx, "user-1", cart.ID))
	total, err = s.carts.ComputeTotal(ctx, "user-1", cart.ID)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestCartService_TotalTracksLivePrice(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	cat := s.category(t, "Sofas")
	sofa := s.product(t, cat.ID, "Sofa", "100.00")
	cart := s.cart(t, "user-1")
	_, err := s.carts.AddOrIncrement(ctx, "user-1", cart.ID, sofa.ID, 2)
	require.NoError(t, err)

	sofa.Price = dec("80.00")
	require.NoError(t, s.products.UpdateProduct(ctx, sofa))

	total, err := s.carts.ComputeTotal(ctx, "user-1", cart.ID)
	require.NoError(t, err)
	assert.Equal(t, "160.00", total.StringFixed(2))
}

func TestCartService_OtherUsersCartIsNotFound(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	cat := s.category(t, "Desks")
	desk := s.product(t, cat.ID, "Desk", "75.00")
	owned := s.cart(t, "alice")
	item, err := s.carts.AddOrIncrement(ctx, "alice", owned.ID, desk.ID, 1)
	require.NoError(t, err)
	s.cart(t, "bob")

	_, err = s.carts.GetCart(ctx, "bob", owned.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = s.carts.AddOrIncrement(ctx, "bob", owned.ID, desk.ID, 1)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = s.carts.GetItem(ctx, "bob", owned.ID, item.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = s.carts.SetQuantity(ctx, "bob", owned.ID, item.ID, 9)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	err = s.carts.RemoveItem(ctx, "bob", owned.ID, item.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	err = s.carts.Clear(ctx, "bob", owned.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	items, err := s.carts.ListItems(ctx, "alice", owned.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}
