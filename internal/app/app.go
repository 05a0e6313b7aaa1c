// Package app assembles the HTTP application from its storage and
// integration dependencies.
package app

import (
	"time"

	"furnitureshop/internal/config"
	"furnitureshop/internal/handlers"
	"furnitureshop/internal/middleware"
	"furnitureshop/internal/repositories"
	"furnitureshop/internal/services"
	"furnitureshop/pkg/logger"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// Deps are the collaborators of the application. Publisher and Idempotency
// may be nil.
type Deps struct {
	Config      *config.Config
	DB          *gorm.DB
	Log         *logger.Logger
	Publisher   services.EventPublisher
	Idempotency services.IdempotencyStore
}

// Services groups the business services, exposed for seeding and tests.
type Services struct {
	Auth    *services.AuthService
	Catalog *services.CatalogService
	Product *services.ProductService
	Cart    *services.CartService
	Order   *services.OrderService
}

// NewServices wires repositories into services.
func NewServices(d Deps) *Services {
	timeout := d.Config.StorageTimeout

	userRepo := repositories.NewGORMUserRepository(d.DB)
	categoryRepo := repositories.NewGORMCategoryRepository(d.DB)
	productRepo := repositories.NewGORMProductRepository(d.DB)
	cartRepo := repositories.NewGORMCartRepository(d.DB)
	orderRepo := repositories.NewGORMOrderRepository(d.DB)
	transactor := repositories.NewGORMTransactor(d.DB)

	orderService := services.NewOrderService(transactor, orderRepo, cartRepo, d.Log, timeout)
	if d.Publisher != nil {
		orderService.WithPublisher(d.Publisher)
	}
	if d.Idempotency != nil {
		orderService.WithIdempotency(d.Idempotency)
	}

	return &Services{
		Auth:    services.NewAuthService(userRepo, d.Config.JWTSecret, d.Config.TokenTTL, d.Config.StorageTimeout),
		Catalog: services.NewCatalogService(categoryRepo, timeout),
		Product: services.NewProductService(productRepo, timeout),
		Cart:    services.NewCartService(cartRepo, timeout),
		Order:   orderService,
	}
}

// New builds the Fiber application with every route mounted under /api.
func New(d Deps, svc *Services) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "furnitureshop",
		ErrorHandler: handlers.ErrorHandler(d.Log),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "up",
		}
		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			status["status"] = "degraded"
			status["database"] = "down"
			return c.Status(fiber.StatusServiceUnavailable).JSON(status)
		}
		return c.JSON(status)
	})

	auth := middleware.AuthRequired(svc.Auth, d.Log)
	api := app.Group("/api")

	handlers.NewAuthHandler(svc.Auth, d.Log).RegisterRoutes(api)
	handlers.NewCatalogHandler(svc.Catalog, d.Log).RegisterRoutes(api)
	handlers.NewProductHandler(svc.Product, d.Log).RegisterRoutes(api, auth)
	handlers.NewCartHandler(svc.Cart, d.Log).RegisterRoutes(api, auth)
	handlers.NewOrderHandler(svc.Order, d.Log).RegisterRoutes(api, auth)

	return app
}
