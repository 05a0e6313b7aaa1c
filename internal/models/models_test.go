package models_test

import (
	"testing"

	"furnitureshop/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCartTotal_TracksLivePrice(t *testing.T) {
	chair := &models.Product{Price: decimal.RequireFromString("10.00")}
	lamp := &models.Product{Price: decimal.RequireFromString("5.50")}
	cart := models.Cart{Items: []models.CartItem{
		{Product: chair, Quantity: 2},
		{Product: lamp, Quantity: 1},
	}}

	assert.True(t, cart.Total().Equal(decimal.RequireFromString("25.50")))

	chair.Price = decimal.RequireFromString("12.25")
	assert.True(t, cart.Total().Equal(decimal.RequireFromString("30.00")))
}

func TestCartTotal_Empty(t *testing.T) {
	var cart models.Cart
	assert.True(t, cart.Total().IsZero())
}

func TestCartItemSubTotal_NoProduct(t *testing.T) {
	item := models.CartItem{Quantity: 3}
	assert.True(t, item.SubTotal().IsZero())
}

func TestOrderItemLineTotal_NoFloatDrift(t *testing.T) {
	item := models.OrderItem{Price: decimal.RequireFromString("0.10"), Quantity: 3}
	assert.Equal(t, "0.30", item.LineTotal().StringFixed(2))
}

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, models.OrderStatusPending.CanTransitionTo(models.OrderStatusProcessing))
	assert.True(t, models.OrderStatusPending.CanTransitionTo(models.OrderStatusCanceled))
	assert.True(t, models.OrderStatusProcessing.CanTransitionTo(models.OrderStatusCanceled))
	assert.True(t, models.OrderStatusShipped.CanTransitionTo(models.OrderStatusDelivered))

	assert.False(t, models.OrderStatusShipped.CanTransitionTo(models.OrderStatusCanceled))
	assert.False(t, models.OrderStatusDelivered.CanTransitionTo(models.OrderStatusPending))
	assert.False(t, models.OrderStatusCanceled.CanTransitionTo(models.OrderStatusPending))

	assert.True(t, models.OrderStatusDelivered.Valid())
	assert.False(t, models.OrderStatus("LOST").Valid())
}
