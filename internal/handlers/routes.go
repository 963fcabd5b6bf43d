package handlers

import (
	"ayah/internal/app"
	"ayah/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RouteRegistrar is implemented by every handler.
type RouteRegistrar interface {
	RegisterRoutes(router fiber.Router)
}

// Mount registers handlers under /api behind the client session and client state middleware.
func Mount(a *fiber.App, registry *app.Registry, secureCookies bool, logger *zap.Logger, registrars ...RouteRegistrar) fiber.Router {
	api := a.Group("/api",
		middleware.ClientSession(secureCookies),
		middleware.ClientState(registry, logger),
	)
	for _, r := range registrars {
		r.RegisterRoutes(api)
	}
	return api
}
