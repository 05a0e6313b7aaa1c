package handlers

import (
	"furnitureshop/internal/services"
	"furnitureshop/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler serves the public category listing.
type CatalogHandler struct {
	service *services.CatalogService
	log     *logger.Logger
}

func NewCatalogHandler(service *services.CatalogService, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{service: service, log: log}
}

func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	categories := router.Group("/categories")
	categories.Get("/", h.HandleGetCategories)
	categories.Get("/:id/", h.HandleGetCategory)
}

func (h *CatalogHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	resp := make([]CategoryResponse, 0, len(categories))
	for _, category := range categories {
		resp = append(resp, newCategoryResponse(category))
	}
	return c.JSON(resp)
}

func (h *CatalogHandler) HandleGetCategory(c *fiber.Ctx) error {
	category, err := h.service.GetCategory(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(newCategoryResponse(*category))
}
