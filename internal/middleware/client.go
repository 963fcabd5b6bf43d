package middleware

import (
	"time"

	"ayah/internal/app"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientCookie names the cookie that identifies a client.
const ClientCookie = "ayah_client"

const (
	localsClientID = "client_id"
	localsState    = "client_state"
	localsUser     = "user"
)

const clientCookieTTL = 365 * 24 * time.Hour

// ClientSession makes sure every request carries a client id, issuing a new one when the cookie
// is missing or malformed.
func ClientSession(secure bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Cookies(ClientCookie)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     ClientCookie,
				Value:    id,
				Path:     "/",
				Expires:  time.Now().Add(clientCookieTTL),
				HTTPOnly: true,
				Secure:   secure,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		c.Locals(localsClientID, id)
		return c.Next()
	}
}

// ClientState loads the client's application state from the registry.
func ClientState(registry *app.Registry, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := ClientID(c)
		if id == "" {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Client session is not initialized",
			})
		}

		st, err := registry.Get(c.UserContext(), id, c.Get(fiber.HeaderAcceptLanguage))
		if err != nil {
			logger.Error("Failed to load client state", zap.String("client_id", id), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not load client state",
				"error":   err.Error(),
			})
		}
		c.Locals(localsState, st)
		return c.Next()
	}
}

// ClientID returns the id set by ClientSession.
func ClientID(c *fiber.Ctx) string {
	id, _ := c.Locals(localsClientID).(string)
	return id
}

// State returns the state set by ClientState, or nil.
func State(c *fiber.Ctx) *app.State {
	st, _ := c.Locals(localsState).(*app.State)
	return st
}
