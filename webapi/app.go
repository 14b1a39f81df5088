package webapi

import (
	"time"

	"github.com/elmoushy/makanezm-backend/pkg/config"
	authsvc "github.com/elmoushy/makanezm-backend/pkg/service/auth"
	investmentsvc "github.com/elmoushy/makanezm-backend/pkg/service/investment"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// RouteRegistrar registers a route group on the app. Feature packages
// provide one each, keeping NewApp free of import cycles.
type RouteRegistrar func(app *fiber.App, invSvc *investmentsvc.Service, authSvc *authsvc.Service, cfg *config.AppConfig)

// NewApp builds the Fiber application with the shared middleware stack and
// registers the provided route groups.
func NewApp(
	invSvc *investmentsvc.Service,
	authSvc *authsvc.Service,
	cfg *config.AppConfig,
	registrars ...RouteRegistrar,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
			return ErrorResponseJSON(c, status, "Internal Server Error", err.Error())
		},
	})

	app.Use(limiter.New(limiter.Config{
		Max:        20,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return ErrorResponseJSON(c, fiber.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded")
		},
	}))
	app.Use(recover.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("App is working! 🚀")
	})

	for _, register := range registrars {
		register(app, invSvc, authSvc, cfg)
	}

	return app
}
