package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/llighterr/promo-task/internal/config"
	"github.com/llighterr/promo-task/internal/db"
	apphttp "github.com/llighterr/promo-task/internal/http"
	"github.com/llighterr/promo-task/internal/http/handlers"
	"github.com/llighterr/promo-task/internal/queue"
	"github.com/llighterr/promo-task/internal/repositories"
	"github.com/llighterr/promo-task/internal/services"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis (delivery queue + rate limiting)
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	promoRepo := repositories.NewPromoMessageRepo(pool)
	cohortRepo := repositories.NewCohortRepo(pool)

	// Delivery queue
	sendQueue := queue.NewRedisQueue(rdb, cfg.PromoQueueKey, log)

	// Services
	promoService := services.NewPromoService(promoRepo, cohortRepo, sendQueue, cfg.ExportBatchSize, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(cfg, log)
	promoHandler := handlers.NewPromoHandler(promoService, cfg.PreviewPerPage, log)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, authHandler, promoHandler)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
