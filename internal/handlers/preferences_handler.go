package handlers

import (
	"errors"

	"ayah/internal/app"
	"ayah/internal/i18n"
	"ayah/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PreferencesHandler handles the language toggle.
type PreferencesHandler struct {
	logger *zap.Logger
}

func NewPreferencesHandler(logger *zap.Logger) *PreferencesHandler {
	return &PreferencesHandler{logger: logger}
}

func (h *PreferencesHandler) RegisterRoutes(router fiber.Router) {
	prefRoutes := router.Group("/preferences")
	prefRoutes.Get("/", h.HandleGetPreferences)
	prefRoutes.Put("/lang", h.HandleSetLang)
	prefRoutes.Post("/lang/toggle", h.HandleToggleLang)
}

// SetLangRequest selects a language.
type SetLangRequest struct {
	Lang string `json:"lang"`
}

func preferences(st *app.State) fiber.Map {
	return fiber.Map{"lang": st.Lang(), "dir": st.Dir()}
}

func (h *PreferencesHandler) HandleGetPreferences(c *fiber.Ctx) error {
	return c.JSON(preferences(middleware.State(c)))
}

func (h *PreferencesHandler) HandleSetLang(c *fiber.Ctx) error {
	st := middleware.State(c)
	var req SetLangRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, st.Lang(), err)
	}
	lang, ok := i18n.Parse(req.Lang)
	if !ok {
		return errorResponse(c, fiber.StatusBadRequest, i18n.T(st.Lang(), "Unsupported language", "لغة غير مدعومة"), app.ErrInvalidLang)
	}
	if err := st.SetLang(c.UserContext(), lang); err != nil {
		return h.persistError(c, st, err)
	}
	return c.JSON(preferences(st))
}

func (h *PreferencesHandler) HandleToggleLang(c *fiber.Ctx) error {
	st := middleware.State(c)
	if _, err := st.ToggleLang(c.UserContext()); err != nil {
		return h.persistError(c, st, err)
	}
	return c.JSON(preferences(st))
}

// persistError keeps the in-memory switch and reports that it was not saved.
func (h *PreferencesHandler) persistError(c *fiber.Ctx, st *app.State, err error) error {
	if errors.Is(err, app.ErrInvalidLang) {
		return errorResponse(c, fiber.StatusBadRequest, "Unsupported language", err)
	}
	h.logger.Warn("Failed to save language preference", zap.String("client_id", st.ID()), zap.Error(err))
	return c.JSON(fiber.Map{"lang": st.Lang(), "dir": st.Dir(), "saved": false})
}
