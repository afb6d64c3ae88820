package api

import (
	"errors"
	"time"

	"invoice-assistant/docs"
	"invoice-assistant/internal/api/handlers"
	"invoice-assistant/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	Chat    *handlers.ChatHandler
	Invoice *handlers.InvoiceHandler
	Debug   *handlers.DebugHandler
	Health  *handlers.HealthHandler
}

type RouterConfig struct {
	AdminSecret  string
	BodyLimit    int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func SetupRouter(
	h Handlers,
	resolver middleware.UserResolver,
	cfg RouterConfig,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "invoice-assistant",
		BodyLimit:    cfg.BodyLimit,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				appLogger.Error("Unhandled request error",
					zap.String("path", c.Path()),
					zap.Any("request_id", c.Locals(requestid.ConfigDefault.ContextKey)),
					zap.Error(err),
				)
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization," + middleware.HeaderAdminSecret,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	// Importing docs registers the OpenAPI document with swag.
	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/", h.Health.Root)
	app.Get("/health", h.Health.HealthCheck)
	app.Get("/health/ready", h.Health.ReadinessCheck)

	app.Post("/login", h.Auth.Login)

	// Protected routes
	requireUser := middleware.AuthMiddleware(resolver, appLogger)
	app.Post("/chatbot/", requireUser, h.Chat.Chat)
	app.Get("/invoices/", requireUser, h.Invoice.ListInvoices)
	app.Patch("/invoices/:id/status", requireUser, h.Invoice.UpdateStatus)
	app.Post("/upload-invoice/", requireUser, h.Invoice.UploadInvoice)

	// Admin routes
	debug := app.Group("/debug", middleware.AdminSecret(cfg.AdminSecret, appLogger))
	debug.Post("/reset-password", h.Auth.ResetPassword)
	debug.Get("/db-schema", h.Debug.DBSchema)
	debug.Get("/users", h.Debug.Users)

	return app
}
