package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/llighterr/promo-task/internal/config"
	"github.com/llighterr/promo-task/internal/http/handlers"
	"github.com/llighterr/promo-task/internal/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	promoHandler *handlers.PromoHandler,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Rate limit everything under /api/v1 — login most of all, it is
	// the one unauthenticated, brute-forceable endpoint.
	api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute))

	// Auth (public)
	api.Post("/auth/login", authHandler.Login)

	// Admin promo surface
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	protected.Get("/promo_messages/new", promoHandler.NewPromoMessage)
	protected.Post("/promo_messages", promoHandler.CreatePromoMessage)
	protected.Get("/promo_messages/download_csv", promoHandler.DownloadCSV)
}
