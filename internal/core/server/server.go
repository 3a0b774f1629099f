package server

import (
	"context"
	"errors"
	"fmt"

	"microshop/internal/core/config"
	"microshop/internal/core/logger"

	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"

	_ "microshop/docs/swagger"
)

// Server holds the Fiber application and configuration.
type Server struct {
	// App is the main Fiber application instance.
	App *fiber.App
	// cfg holds the application configuration.
	cfg *config.AppConfig
	// name identifies the service(s) mounted on this process.
	name string
}

// New creates a new Server instance with configured middleware.
// The health and swagger routes are registered before any service route so
// that catch-all parameters like GET /:id never shadow them.
func New(cfg *config.AppConfig, name string) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               "microshop-" + name,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(fiberzap.New(fiberzap.Config{
		Logger: logger.Get(),
		Fields: []string{"requestId", "latency", "status", "method", "url", "ip"},
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": name})
	})
	app.Get("/swagger/*", swagger.HandlerDefault)

	return &Server{
		App:  app,
		cfg:  cfg,
		name: name,
	}
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.cfg.ServerPort)
	logger.Get().Info("Starting server", zap.String("service", s.name), zap.String("address", addr))
	return s.App.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.App.ShutdownWithContext(ctx)
}

// errorHandler renders errors that escaped a handler in the `{"error": ...}` shape.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		requestID, _ := c.Locals("requestid").(string)
		logger.WithRequestID(requestID).Error("Unhandled error", zap.String("path", c.Path()), zap.Error(err))
	}

	return c.Status(code).JSON(fiber.Map{"error": msg})
}
