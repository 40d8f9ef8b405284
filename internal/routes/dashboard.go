package routes

import (
	"strconv"

	"github.com/threatlens/console-client/internal/clients"
	"github.com/threatlens/console-client/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// DashboardHandler renders the protected application shell's data
type DashboardHandler struct {
	threats   *clients.ThreatClient
	alerts    *clients.AlertClient
	analytics *clients.AnalyticsClient
	logger    *logrus.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(threats *clients.ThreatClient, alerts *clients.AlertClient, analytics *clients.AnalyticsClient, logger *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{
		threats:   threats,
		alerts:    alerts,
		analytics: analytics,
		logger:    logger,
	}
}

// Overview returns the stats and analytics behind the landing tiles
func (h *DashboardHandler) Overview(c *fiber.Ctx) error {
	stats, err := h.threats.Stats(c.Context())
	if err != nil {
		return relayError(c, err)
	}

	overview, err := h.analytics.Overview(c.Context())
	if err != nil {
		return relayError(c, err)
	}

	return c.JSON(fiber.Map{
		"stats":     stats,
		"analytics": overview,
	})
}

// Threats returns a page of threat records
func (h *DashboardHandler) Threats(c *fiber.Ctx) error {
	q := models.ThreatQuery{
		Source:   c.Query("source"),
		Severity: c.Query("severity"),
	}
	if page, err := strconv.Atoi(c.Query("page", "1")); err == nil {
		q.Page = page
	}
	if size, err := strconv.Atoi(c.Query("size", "20")); err == nil {
		q.Size = size
	}

	threats, err := h.threats.List(c.Context(), q)
	if err != nil {
		return relayError(c, err)
	}
	return c.JSON(threats)
}

// Alerts returns the current alert records
func (h *DashboardHandler) Alerts(c *fiber.Ctx) error {
	alerts, err := h.alerts.List(c.Context())
	if err != nil {
		return relayError(c, err)
	}
	return c.JSON(alerts)
}
