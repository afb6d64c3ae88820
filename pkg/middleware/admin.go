package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const HeaderAdminSecret = "X-Admin-Secret"

// AdminSecret only lets requests through whose X-Admin-Secret header equals
// secret. With no secret configured every request is refused.
func AdminSecret(secret string, logger *zap.Logger) fiber.Handler {
	if secret == "" {
		logger.Warn("ADMIN_SECRET is not set, admin endpoints are disabled")
	}

	return func(c *fiber.Ctx) error {
		provided := c.Get(HeaderAdminSecret)
		if secret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			logger.Warn("Rejected admin request", zap.String("path", c.Path()), zap.String("ip", c.IP()))
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden",
			})
		}
		return c.Next()
	}
}
