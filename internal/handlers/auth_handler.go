package handlers

import (
	"errors"

	"ayah/internal/i18n"
	"ayah/internal/identity"
	"ayah/internal/middleware"
	"ayah/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Get("/session", h.HandleSession)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/logout", h.HandleLogout)
	authRoutes.Get("/me", middleware.AuthRequired(h.logger), h.HandleMe)
}

// HandleSession reports the bridge state without waiting for it to resolve.
func (h *AuthHandler) HandleSession(c *fiber.Ctx) error {
	return c.JSON(middleware.State(c).Auth().Snapshot())
}

func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	st := middleware.State(c)
	lang := st.Lang()

	var form services.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return invalidBody(c, lang, err)
	}

	user, err := h.authService.Login(c.UserContext(), st, form)
	if err != nil {
		var verr *services.ValidationError
		var perr *identity.ProviderError
		switch {
		case errors.As(err, &verr):
			return errorResponse(c, fiber.StatusBadRequest, verr.FormErrors[0], nil)
		case errors.As(err, &perr):
			return errorResponse(c, fiber.StatusUnauthorized, perr.Message, nil)
		default:
			h.logger.Error("Login failed", zap.String("client_id", st.ID()), zap.Error(err))
			return errorResponse(c, fiber.StatusInternalServerError,
				i18n.T(lang, "Login failed. Please try again.", "فشل تسجيل الدخول. يرجى المحاولة مرة أخرى."), nil)
		}
	}

	return c.JSON(fiber.Map{
		"message": i18n.T(lang, "You have been logged in successfully", "تم تسجيل دخولك بنجاح"),
		"user":    user,
	})
}

func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	st := middleware.State(c)
	lang := st.Lang()

	var form services.RegisterForm
	if err := c.BodyParser(&form); err != nil {
		return invalidBody(c, lang, err)
	}

	result, err := h.authService.Register(c.UserContext(), st, form)
	if err != nil {
		var verr *services.ValidationError
		var perr *identity.ProviderError
		switch {
		case errors.As(err, &verr):
			return errorResponse(c, fiber.StatusBadRequest, verr.FormErrors[0], nil)
		case errors.As(err, &perr):
			status := fiber.StatusBadRequest
			if perr.Code == identity.CodeUserAlreadyExists {
				status = fiber.StatusConflict
			}
			return errorResponse(c, status, perr.Message, nil)
		default:
			h.logger.Error("Registration failed", zap.String("client_id", st.ID()), zap.Error(err))
			return errorResponse(c, fiber.StatusInternalServerError,
				i18n.T(lang, "Registration failed. Please try again.", "فشل التسجيل. يرجى المحاولة مرة أخرى."), nil)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// HandleLogout always clears the local session; a provider failure is only logged.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	st := middleware.State(c)
	if err := h.authService.Logout(c.UserContext(), st); err != nil {
		h.logger.Warn("Provider sign-out failed", zap.String("client_id", st.ID()), zap.Error(err))
	}
	return c.JSON(st.Auth().Snapshot())
}

func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	st := middleware.State(c)
	return c.JSON(fiber.Map{
		"user":       middleware.User(c),
		"cachedName": st.CachedName(c.UserContext()),
	})
}
