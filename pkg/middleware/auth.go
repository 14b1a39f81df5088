// Package middleware provides HTTP middleware for the admin API.
package middleware

import (
	"github.com/elmoushy/makanezm-backend/pkg/config"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

// JwtProtected returns middleware that verifies the Bearer token and stores
// the parsed token in c.Locals("admin").
func JwtProtected(cfg config.JwtConfig) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.Secret)},
		ContextKey: "admin",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if err.Error() == "Missing or malformed JWT" {
				return c.Status(fiber.StatusBadRequest).
					JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT"})
			}
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"status": "error", "message": "Invalid or expired JWT"})
		},
	})
}
