package middleware

import (
	"context"
	"errors"
	"strings"

	"invoice-assistant/internal/models"
	"invoice-assistant/pkg/auth"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// LocalsUser is the fiber.Ctx locals key holding the authenticated *models.User.
const LocalsUser = "user"

// UserResolver maps a bearer token to its user, failing with auth.ErrInvalidToken.
type UserResolver interface {
	UserFromToken(ctx context.Context, token string) (*models.User, error)
}

func AuthMiddleware(resolver UserResolver, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			token, ok = strings.CutPrefix(header, "bearer ")
		}
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			logger.Debug("Missing bearer token", zap.String("path", c.Path()))
			return unauthorized(c)
		}

		user, err := resolver.UserFromToken(c.Context(), token)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidToken) {
				logger.Error("Failed to resolve token user", zap.Error(err))
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "Internal server error",
				})
			}
			logger.Warn("Invalid token", zap.String("path", c.Path()))
			return unauthorized(c)
		}

		c.Locals(LocalsUser, user)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Could not validate credentials",
	})
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(LocalsUser).(*models.User)
	return user, ok && user != nil
}
