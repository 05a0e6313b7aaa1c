package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"furnitureshop/internal/app"
	"furnitureshop/internal/config"
	"furnitureshop/internal/database"
	"furnitureshop/internal/models"
	"furnitureshop/internal/services"
	"furnitureshop/pkg/idempotency"
	"furnitureshop/pkg/logger"
	"furnitureshop/pkg/rabbitmq"

	"github.com/shopspring/decimal"
	"github.com/streadway/amqp"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server stopped with error", "error", err)
	}
	log.Info("Server gracefully stopped")
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN, log)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	deps := app.Deps{Config: cfg, DB: db, Log: log}

	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		defer mqClient.Close()
		deps.Publisher = mqClient
	} else {
		log.Warn("RABBITMQ_URL not set, order events are disabled")
	}

	if cfg.RedisAddr != "" {
		rdb, err := idempotency.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return fmt.Errorf("failed to initialize Redis: %w", err)
		}
		defer rdb.Close()
		deps.Idempotency = idempotency.NewStore(rdb, cfg.IdempotencyTTL)
	} else {
		log.Warn("REDIS_ADDR not set, Idempotency-Key headers are ignored")
	}

	svc := app.NewServices(deps)
	if cfg.AppEnv == "dev" {
		if err := seedCatalog(ctx, svc, log); err != nil {
			log.Warn("Failed to seed catalog", "error", err)
		}
	}
	server := app.New(deps, svc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Starting server", "addr", cfg.AppPort)
		return server.Listen(cfg.AppPort)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		return server.Shutdown()
	})
	if mqClient != nil {
		g.Go(func() error {
			log.Info("Starting RabbitMQ consumer for order events")
			return mqClient.ConsumeOrderEvents(gctx, func(msg amqp.Delivery) error {
				log.Info("Received order event", "type", msg.Type, "tag", msg.DeliveryTag, "body", string(msg.Body))
				return nil
			})
		})
	}
	return g.Wait()
}

// seedCatalog fills an empty development database with a small catalog.
func seedCatalog(ctx context.Context, svc *app.Services, log *logger.Logger) error {
	existing, err := svc.Catalog.ListCategories(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	seeds := map[string][]models.Product{
		"Living Room": {
			{Name: "Oak Coffee Table", Description: "Solid oak, 120x60 cm", Price: decimal.RequireFromString("249.00"), Stock: 12},
			{Name: "Three-Seat Sofa", Description: "Linen upholstery", Price: decimal.RequireFromString("899.99"), Stock: 4},
		},
		"Bedroom": {
			{Name: "Queen Bed Frame", Description: "Walnut veneer", Price: decimal.RequireFromString("549.50"), Stock: 6},
			{Name: "Bedside Lamp", Description: "Brass, warm white", Price: decimal.RequireFromString("39.90"), Stock: 40},
		},
	}
	for name, products := range seeds {
		category := &models.Category{Name: name, IsActive: true}
		if err := svc.Catalog.CreateCategory(ctx, category); err != nil {
			return err
		}
		for i := range products {
			products[i].CategoryID = category.ID
			products[i].IsAvailable = true
			if err := svc.Product.CreateProduct(ctx, &products[i]); err != nil {
				return err
			}
			log.Debug("Seeded product", "name", products[i].Name, "id", products[i].ID)
		}
	}
	return nil
}

var _ services.EventPublisher = (*rabbitmq.Client)(nil)
var _ services.IdempotencyStore = (*idempotency.Store)(nil)
