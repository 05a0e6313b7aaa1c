package handlers

import (
	"furnitureshop/internal/models"
	"furnitureshop/internal/services"
	"furnitureshop/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
	log      *logger.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: newValidator(),
		log:      log,
	}
}

// RegisterRoutes registers the product routes. Reads are public; auth
// guards the mutations.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	products := router.Group("/products")
	products.Get("/", h.HandleGetProducts)
	products.Get("/:id/", h.HandleGetProductByID)
	products.Post("/", auth, h.HandleCreateProduct)
	products.Put("/:id/", auth, h.HandleUpdateProduct)
	products.Delete("/:id/", auth, h.HandleDeleteProduct)
}

// ProductRequest is the body of product create and update requests.
type ProductRequest struct {
	CategoryID  string          `json:"category_id" validate:"required"`
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"gt=0"`
	Stock       int             `json:"stock" validate:"gte=0"`
	IsAvailable *bool           `json:"is_available"`
}

func (r ProductRequest) toModel(id string) *models.Product {
	available := true
	if r.IsAvailable != nil {
		available = *r.IsAvailable
	}
	return &models.Product{
		ID:          id,
		CategoryID:  r.CategoryID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		IsAvailable: available,
	}
}

// HandleGetProducts lists the products offered for sale.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	resp := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, newProductResponse(p))
	}
	return c.JSON(resp)
}

func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(newProductResponse(*product))
}

func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if err := parseAndValidate(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	product := req.toModel("")
	if err := h.service.CreateProduct(c.UserContext(), product); err != nil {
		return respondError(c, h.log, err)
	}
	h.log.Info("Product created", "product_id", product.ID, "name", product.Name)
	return c.Status(fiber.StatusCreated).JSON(newProductResponse(*product))
}

func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if err := parseAndValidate(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	product := req.toModel(c.Params("id"))
	if err := h.service.UpdateProduct(c.UserContext(), product); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(newProductResponse(*product))
}

func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return respondError(c, h.log, err)
	}
	h.log.Info("Product deleted", "product_id", id)
	return c.SendStatus(fiber.StatusNoContent)
}
