package routes

import (
	"strings"

	"github.com/threatlens/console-client/internal/session"

	"github.com/gofiber/fiber/v2"
)

// RequireSession gates the dashboard shell on session state. Browsers are sent
// back to the login surface; API callers get a 401 envelope. The gate only
// reads state; invalidation reaches it through the session manager's
// subscription to the transport's 401 events.
func RequireSession(manager *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if manager.State() == session.StateAuthenticated {
			return c.Next()
		}

		if strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMETextHTML) {
			return c.Redirect("/login", fiber.StatusSeeOther)
		}

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "UNAUTHENTICATED",
				"message": "Session required",
			},
		})
	}
}
