package handlers

import (
	"errors"

	"ayah/internal/models"
	"ayah/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// relayFailure is the only detail clients get when mail delivery fails.
const relayFailure = "Email service not configured or failed."

// ContactHandler relays the contact and free-trial forms. Responses follow the {ok, error}
// contract the forms expect.
type ContactHandler struct {
	service *services.ContactService
	logger  *zap.Logger
}

func NewContactHandler(service *services.ContactService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		service: service,
		logger:  logger,
	}
}

func (h *ContactHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/contact", h.HandleContact)
	router.Post("/trial", h.HandleTrial)
}

func (h *ContactHandler) HandleContact(c *fiber.Ctx) error {
	var req models.ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return h.respond(c, services.NewFormError("Invalid request body"))
	}
	return h.respond(c, h.service.Relay(c.UserContext(), req))
}

func (h *ContactHandler) HandleTrial(c *fiber.Ctx) error {
	var req models.TrialRequest
	if err := c.BodyParser(&req); err != nil {
		return h.respond(c, services.NewFormError("Invalid request body"))
	}
	return h.respond(c, h.service.RequestTrial(c.UserContext(), req))
}

func (h *ContactHandler) respond(c *fiber.Ctx, err error) error {
	if err == nil {
		return c.JSON(fiber.Map{"ok": true})
	}
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": verr})
	}
	h.logger.Error("Contact relay failed", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": relayFailure})
}
