package handlers

import (
	"furnitureshop/internal/services"
	"furnitureshop/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// HeaderIdempotencyKey makes a checkout safe to retry.
const HeaderIdempotencyKey = "Idempotency-Key"

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
	log     *logger.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, log *logger.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		log:     log,
	}
}

// RegisterRoutes registers the order routes behind auth.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	orderRoutes := router.Group("/orders", auth)
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/:id/", h.HandleGetOrderByID)
	orderRoutes.Post("/:id/cancel/", h.HandleCancelOrder)
}

// CreateOrderRequest is the optional body of POST /orders/.
type CreateOrderRequest struct {
	ShippingAddress string `json:"shipping_address"`
}

// HandleGetOrders lists the caller's orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	orders, err := h.service.ListOrders(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	resp := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, newOrderResponse(o))
	}
	return c.JSON(resp)
}

// HandleGetOrderByID retrieves one of the caller's orders.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	order, err := h.service.GetOrder(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(newOrderResponse(*order))
}

// HandleCreateOrder checks out the caller's cart. The body is optional.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req CreateOrderRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return respondError(c, h.log, errInvalidBody(err))
		}
	}

	order, err := h.service.PlaceOrder(c.UserContext(), userID, services.PlaceOrderInput{
		ShippingAddress: req.ShippingAddress,
		IdempotencyKey:  c.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newOrderResponse(*order))
}

// HandleCancelOrder cancels one of the caller's orders.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	order, err := h.service.CancelOrder(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(newOrderResponse(*order))
}
