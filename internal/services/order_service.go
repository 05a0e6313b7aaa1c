package services

import (
	"context"
	"encoding/json"
	"time"

	"furnitureshop/internal/apperr"
	"furnitureshop/internal/models"
	"furnitureshop/internal/repositories"
	"furnitureshop/pkg/idempotency"
	"furnitureshop/pkg/logger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order event types published after a change commits.
const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
)

// EventPublisher delivers order events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, body []byte) error
}

// IdempotencyStore records which order a checkout request key produced.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string) (existing string, reserved bool, err error)
	Complete(ctx context.Context, key, value string) error
	Release(ctx context.Context, key string) error
}

// OrderEvent is the JSON body of a published order event.
type OrderEvent struct {
	Type           string             `json:"type"`
	OrderID        string             `json:"order_id"`
	UserID         string             `json:"user_id"`
	Status         models.OrderStatus `json:"status"`
	PreviousStatus models.OrderStatus `json:"previous_status,omitempty"`
	TotalPrice     string             `json:"total_price"`
	ItemCount      int                `json:"item_count"`
	OccurredAt     time.Time          `json:"occurred_at"`
}

// PlaceOrderInput carries the optional checkout details.
type PlaceOrderInput struct {
	ShippingAddress string
	IdempotencyKey  string
}

// OrderService converts carts into orders and serves a user's order history.
type OrderService struct {
	tx        repositories.Transactor
	orders    repositories.OrderRepository
	carts     repositories.CartRepository
	publisher EventPublisher
	idem      IdempotencyStore
	log       *logger.Logger
	timeout   time.Duration
}

// NewOrderService creates a new OrderService. Event publishing and
// idempotent checkout are off until WithPublisher and WithIdempotency are
// called.
func NewOrderService(tx repositories.Transactor, orders repositories.OrderRepository, carts repositories.CartRepository, log *logger.Logger, timeout time.Duration) *OrderService {
	if log == nil {
		log = logger.NewNop()
	}
	return &OrderService{
		tx:      tx,
		orders:  orders,
		carts:   carts,
		log:     log,
		timeout: timeout,
	}
}

func (s *OrderService) WithPublisher(p EventPublisher) *OrderService {
	s.publisher = p
	return s
}

func (s *OrderService) WithIdempotency(store IdempotencyStore) *OrderService {
	s.idem = store
	return s
}

// ListOrders returns the user's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.orders.GetAllByUser(ctx, userID)
}

// GetOrder returns one of the user's orders. Another user's order is
// reported as not found.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.orders.GetByIDForUser(ctx, nil, userID, orderID)
}

// PlaceOrder turns the user's cart into an order. Either the order with all
// its items exists and the cart is empty, or nothing changed.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, in PlaceOrderInput) (*models.Order, error) {
	if in.IdempotencyKey != "" && s.idem != nil {
		return s.placeOnce(ctx, userID, in)
	}
	return s.place(ctx, userID, in)
}

func (s *OrderService) placeOnce(ctx context.Context, userID string, in PlaceOrderInput) (*models.Order, error) {
	key := "checkout:" + userID + ":" + in.IdempotencyKey
	existing, reserved, err := s.idem.Reserve(ctx, key)
	if err != nil {
		return nil, apperr.Storage(err, "idempotency store unavailable")
	}
	if !reserved {
		if existing == idempotency.Pending {
			return nil, apperr.Conflict(nil, "a checkout with idempotency key %q is already in progress", in.IdempotencyKey)
		}
		return s.GetOrder(ctx, userID, existing)
	}

	order, err := s.place(ctx, userID, in)
	if err != nil {
		if relErr := s.idem.Release(context.WithoutCancel(ctx), key); relErr != nil {
			s.log.Warn("Failed to release idempotency key", "key", key, "error", relErr)
		}
		return nil, err
	}
	if err := s.idem.Complete(context.WithoutCancel(ctx), key, order.ID); err != nil {
		s.log.Warn("Failed to record idempotency result", "key", key, "order_id", order.ID, "error", err)
	}
	return order, nil
}

func (s *OrderService) place(ctx context.Context, userID string, in PlaceOrderInput) (*models.Order, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var order *models.Order
	err := retryOnConflict(ctx, func() error {
		var err error
		order, err = s.checkout(ctx, userID, in.ShippingAddress)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Order placed", "order_id", order.ID, "user_id", userID, "items", len(order.Items), "total", order.TotalPrice.StringFixed(2))
	s.publish(ctx, EventOrderPlaced, order, "")
	return order, nil
}

// checkout runs the whole conversion in one transaction. The cart row lock
// serializes concurrent checkouts and cart edits of the same user; the
// loser of a checkout race finds the cart empty.
func (s *OrderService) checkout(ctx context.Context, userID, shippingAddress string) (*models.Order, error) {
	var order *models.Order
	err := s.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		cart, err := s.carts.LockByUserID(ctx, tx, userID)
		if err != nil {
			return err
		}
		items, err := s.carts.ListItems(ctx, tx, cart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return apperr.EmptyCart(cart.ID)
		}

		o := &models.Order{
			UserID:          userID,
			Status:          models.OrderStatusPending,
			TotalPrice:      decimal.Zero,
			ShippingAddress: shippingAddress,
		}
		if err := s.orders.Create(ctx, tx, o); err != nil {
			return err
		}

		total := decimal.Zero
		lines := make([]models.OrderItem, 0, len(items))
		for _, item := range items {
			if item.Product == nil {
				return apperr.NotFound("product", item.ProductID)
			}
			line := models.OrderItem{
				OrderID:   o.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Product.Price,
			}
			total = total.Add(line.LineTotal())
			lines = append(lines, line)
		}
		if total.GreaterThan(models.MaxMoney) {
			return apperr.Validation("order total %s exceeds %s", total.StringFixed(2), models.MaxMoney.StringFixed(2))
		}

		if err := s.orders.CreateItems(ctx, tx, lines); err != nil {
			return err
		}
		if err := s.orders.UpdateTotal(ctx, tx, o.ID, total); err != nil {
			return err
		}
		if err := s.carts.Clear(ctx, tx, cart.ID); err != nil {
			return err
		}

		o.TotalPrice = total
		o.Items = lines
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CancelOrder moves a pending or processing order to CANCELED.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	return s.transition(ctx, userID, orderID, models.OrderStatusCanceled)
}

func (s *OrderService) transition(ctx context.Context, userID, orderID string, next models.OrderStatus) (*models.Order, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var (
		order    *models.Order
		previous models.OrderStatus
	)
	err := s.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		o, err := s.orders.LockByIDForUser(ctx, tx, userID, orderID)
		if err != nil {
			return err
		}
		if !o.Status.CanTransitionTo(next) {
			return apperr.Validation("order %s cannot move from %s to %s", orderID, o.Status, next)
		}
		if err := s.orders.UpdateStatus(ctx, tx, o.ID, next); err != nil {
			return err
		}
		previous = o.Status
		o.Status = next
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Order status changed", "order_id", order.ID, "from", previous, "to", next)
	s.publish(ctx, EventOrderStatusChanged, order, previous)
	return order, nil
}

// publish emits an order event. The change is already committed, so a
// failure is only logged.
func (s *OrderService) publish(ctx context.Context, eventType string, order *models.Order, previous models.OrderStatus) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(OrderEvent{
		Type:           eventType,
		OrderID:        order.ID,
		UserID:         order.UserID,
		Status:         order.Status,
		PreviousStatus: previous,
		TotalPrice:     order.TotalPrice.StringFixed(2),
		ItemCount:      len(order.Items),
		OccurredAt:     time.Now().UTC(),
	})
	if err != nil {
		s.log.Error("Failed to marshal order event", "order_id", order.ID, "error", err)
		return
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), eventType, body); err != nil {
		s.log.Warn("Failed to publish order event", "type", eventType, "order_id", order.ID, "error", err)
	}
}
