package middleware

import (
	"context"
	"time"

	"ayah/internal/auth"
	"ayah/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// sessionWait bounds how long a guarded request waits for the session to resolve.
const sessionWait = 5 * time.Second

// AuthRequired lets the request through only when the client's auth bridge is authenticated.
// It must run after ClientState.
func AuthRequired(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st := State(c)
		if st == nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Client state is not loaded",
			})
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), sessionWait)
		defer cancel()
		bridge := st.Auth()
		if err := bridge.Wait(ctx); err != nil {
			logger.Warn("Session resolution timed out", zap.String("client_id", st.ID()), zap.Error(err))
		}

		switch bridge.State() {
		case auth.StateAuthenticated:
			c.Locals(localsUser, bridge.User())
			return c.Next()
		case auth.StateAnonymous:
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		default:
			msg := "Session could not be verified"
			if err := bridge.LastError(); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"message": msg,
					"error":   err.Error(),
				})
			}
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"message": msg,
			})
		}
	}
}

// User returns the user set by AuthRequired, or nil.
func User(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(localsUser).(*models.User)
	return u
}
