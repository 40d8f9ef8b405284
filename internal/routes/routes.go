package routes

import (
	"github.com/threatlens/console-client/internal/clients"
	"github.com/threatlens/console-client/internal/config"
	"github.com/threatlens/console-client/internal/metrics"
	"github.com/threatlens/console-client/internal/session"
	"github.com/threatlens/console-client/internal/transport"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Setup configures all console routes
func Setup(app *fiber.App, cfg *config.Config, logger *logrus.Logger, manager *session.Manager, api *transport.Client) {
	// Typed read clients riding the shared transport
	threatClient := clients.NewThreatClient(api, logger)
	alertClient := clients.NewAlertClient(api, logger)
	analyticsClient := clients.NewAnalyticsClient(api, logger)

	// Create route handlers
	sessionHandler := NewSessionHandler(manager, logger)
	dashboardHandler := NewDashboardHandler(threatClient, alertClient, analyticsClient, logger)

	// Health check endpoint (no session required)
	app.Get("/healthz", healthCheck)

	// Metrics endpoint (no session required)
	app.Get(cfg.Observability.MetricsPath, metrics.PrometheusHandler())

	app.Use(metrics.HTTPMetricsMiddleware())

	// Session endpoints (the login surface)
	app.Get("/login", sessionHandler.Status)
	app.Post("/login", sessionHandler.Login)
	app.Post("/logout", sessionHandler.Logout)
	app.Post("/register", sessionHandler.Register)

	// Protected dashboard shell, gated on session state
	dashboard := app.Group("/dashboard")
	dashboard.Use(RequireSession(manager))
	dashboard.Get("/", dashboardHandler.Overview)
	dashboard.Get("/threats", dashboardHandler.Threats)
	dashboard.Get("/alerts", dashboardHandler.Alerts)
	dashboard.Get("/me", sessionHandler.CurrentUser)
}

// healthCheck returns service health status
func healthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": "threatlens-console",
	})
}
