package routes

import (
	"errors"

	"github.com/threatlens/console-client/internal/models"
	"github.com/threatlens/console-client/internal/session"
	apierrors "github.com/threatlens/console-client/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// SessionHandler exposes the session layer to the console UI
type SessionHandler struct {
	manager *session.Manager
	logger  *logrus.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(manager *session.Manager, logger *logrus.Logger) *SessionHandler {
	return &SessionHandler{manager: manager, logger: logger}
}

// Status reports the current session state so the UI can pick a surface
func (h *SessionHandler) Status(c *fiber.Ctx) error {
	resp := fiber.Map{"state": h.manager.State().String()}
	if principal, ok := h.manager.Principal(); ok {
		resp["principal"] = principal
	}
	return c.JSON(resp)
}

// Login handles user login
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "INVALID_REQUEST",
				"message": "Invalid request body",
			},
		})
	}

	cred, err := h.manager.Login(c.Context(), req)
	if err != nil {
		return relayError(c, err)
	}

	return c.JSON(cred)
}

// Register handles account creation; it never logs the new account in
func (h *SessionHandler) Register(c *fiber.Ctx) error {
	var req models.RegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "INVALID_REQUEST",
				"message": "Invalid request body",
			},
		})
	}

	user, err := h.manager.Register(c.Context(), req)
	if err != nil {
		return relayError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// Logout handles user logout
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	if err := h.manager.Logout(c.Context()); err != nil {
		h.logger.WithError(err).Error("Failed to clear credential store on logout")
		return relayError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CurrentUser returns the logged-in identity
func (h *SessionHandler) CurrentUser(c *fiber.Ctx) error {
	user, err := h.manager.CurrentUser(c.Context())
	if err != nil {
		return relayError(c, err)
	}
	return c.JSON(user)
}

// relayError maps session-layer error kinds onto console responses. Validation
// messages pass through verbatim for display.
func relayError(c *fiber.Ctx, err error) error {
	kind := apierrors.KindOf(err)
	if kind == "" {
		kind = "INTERNAL"
	}

	message := "Request failed"
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		message = apiErr.Message
	}

	return c.Status(apierrors.HTTPStatus(err)).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    string(kind),
			"message": message,
		},
	})
}
