package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/threatlens/console-client/internal/config"
	"github.com/threatlens/console-client/internal/credstore"
	"github.com/threatlens/console-client/internal/logging"
	"github.com/threatlens/console-client/internal/metrics"
	"github.com/threatlens/console-client/internal/middleware"
	"github.com/threatlens/console-client/internal/routes"
	"github.com/threatlens/console-client/internal/session"
	"github.com/threatlens/console-client/internal/transport"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger := logging.New(cfg)

	// Initialize metrics
	if err := metrics.Init(); err != nil {
		logger.WithError(err).Fatal("Failed to initialize metrics")
	}

	// Initialize tracing
	tracingShutdown, err := middleware.InitTracing(&cfg.Observability, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to setup tracing")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracingShutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Failed to shutdown tracing")
		}
	}()

	// Credential store, transport, session manager
	store, err := credstore.New(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create credential store")
	}

	api := transport.New(&cfg.API, store, logger)
	manager := session.NewManager(api, store, logger)
	defer manager.Close()

	// Startup check: restore a previous session if a credential survives
	restoreCtx, cancel := context.WithTimeout(context.Background(), cfg.API.Timeout)
	if err := manager.Restore(restoreCtx); err != nil {
		logger.WithError(err).Warn("Session restore failed, starting unauthenticated")
	}
	cancel()
	logger.WithField("state", manager.State().String()).Info("Session state resolved")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "ThreatLens Console",
		ReadTimeout:  cfg.Console.ReadTimeout,
		WriteTimeout: cfg.Console.WriteTimeout,
		IdleTimeout:  cfg.Console.IdleTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			logger.WithError(err).WithFields(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
				"status": code,
			}).Error("Request error")

			return c.Status(code).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    "INTERNAL_ERROR",
					"message": "Internal server error",
				},
			})
		},
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.AllowOrigins,
		AllowMethods: "GET,POST,HEAD,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Requested-With",
	}))
	if cfg.Observability.TracingEnabled {
		app.Use(otelfiber.Middleware())
	}

	// Routes
	routes.Setup(app, cfg, logger, manager, api)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Console.Port)
		logger.WithField("addr", addr).Info("Console listening")
		if err := app.Listen(addr); err != nil {
			logger.WithError(err).Fatal("Console server stopped")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down console")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}
}
