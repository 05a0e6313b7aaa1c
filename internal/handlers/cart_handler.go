package handlers

import (
	"furnitureshop/internal/services"
	"furnitureshop/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the caller's cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
	log      *logger.Logger
}

func NewCartHandler(service *services.CartService, log *logger.Logger) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: newValidator(),
		log:      log,
	}
}

// RegisterRoutes registers the cart routes behind auth.
func (h *CartHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	carts := router.Group("/carts", auth)
	carts.Get("/", h.HandleGetCarts)
	carts.Post("/", h.HandleCreateCart)
	carts.Get("/:cart_id/", h.HandleGetCart)
	carts.Get("/:cart_id/items/", h.HandleGetItems)
	carts.Post("/:cart_id/items/", h.HandleAddItem)
	carts.Delete("/:cart_id/items/", h.HandleClearCart)
	carts.Get("/:cart_id/items/:item_id/", h.HandleGetItem)
	carts.Put("/:cart_id/items/:item_id/", h.HandleUpdateItem)
	carts.Delete("/:cart_id/items/:item_id/", h.HandleRemoveItem)
}

// AddItemRequest is the body of POST /carts/:cart_id/items/. Quantity
// defaults to 1.
type AddItemRequest struct {
	ProductID string `json:"product" validate:"required"`
	Quantity  *int   `json:"quantity" validate:"omitempty,min=1,max=10000"`
}

type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=10000"`
}

// HandleGetCarts lists the caller's carts, creating the cart on first use.
func (h *CartHandler) HandleGetCarts(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	carts, err := h.service.ListCarts(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	resp := make([]CartResponse, 0, len(carts))
	for _, cart := range carts {
		resp = append(resp, newCartResponse(cart))
	}
	return c.JSON(resp)
}

// HandleCreateCart returns the caller's cart: 201 when this request created
// it, 200 when it already existed.
func (h *CartHandler) HandleCreateCart(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	cart, created, err := h.service.GetOrCreateCart(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
		h.log.Info("Cart created", "cart_id", cart.ID, "user_id", userID)
	}
	return c.Status(status).JSON(newCartResponse(*cart))
}

func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	cart, err := h.service.GetCart(c.UserContext(), userID, c.Params("cart_id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(newCartResponse(*cart))
}

func (h *CartHandler) HandleGetItems(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	items, err := h.service.ListItems(c.UserContext(), userID, c.Params("cart_id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	resp := make([]CartItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, newCartItemResponse(item))
	}
	return c.JSON(resp)
}

// HandleAddItem adds a product to the cart, merging with an existing line
// for the same product.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req AddItemRequest
	if err := parseAndValidate(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	item, err := h.service.AddOrIncrement(c.UserContext(), userID, c.Params("cart_id"), req.ProductID, quantity)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newCartItemResponse(*item))
}

func (h *CartHandler) HandleGetItem(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	item, err := h.service.GetItem(c.UserContext(), userID, c.Params("cart_id"), c.Params("item_id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(newCartItemResponse(*item))
}

func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req UpdateItemRequest
	if err := parseAndValidate(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	item, err := h.service.SetQuantity(c.UserContext(), userID, c.Params("cart_id"), c.Params("item_id"), req.Quantity)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(newCartItemResponse(*item))
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.service.RemoveItem(c.UserContext(), userID, c.Params("cart_id"), c.Params("item_id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.service.Clear(c.UserContext(), userID, c.Params("cart_id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
