package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/llighterr/promo-task/internal/auth"
	"github.com/llighterr/promo-task/internal/config"
	"go.uber.org/zap"
)

// AuthMiddleware guards the admin surface: every request needs a valid
// bearer JWT issued by the login endpoint.
func AuthMiddleware(cfg *config.Config, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if _, err := auth.ParseJWT(cfg.JWTSecret, token); err != nil {
			log.Debug("rejected token", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}

		return c.Next()
	}
}
