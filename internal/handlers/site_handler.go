package handlers

import (
	"ayah/internal/middleware"
	"ayah/internal/site"

	"github.com/gofiber/fiber/v2"
)

// SiteHandler serves the static site configuration.
type SiteHandler struct {
	config site.Config
}

func NewSiteHandler(config site.Config) *SiteHandler {
	return &SiteHandler{config: config}
}

func (h *SiteHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/site", h.HandleGetSite)
}

func (h *SiteHandler) HandleGetSite(c *fiber.Ctx) error {
	st := middleware.State(c)
	return c.JSON(fiber.Map{
		"config": h.config,
		"links": fiber.Map{
			"whatsapp": site.WhatsAppLink(h.config.Contacts.WhatsApp),
			"email":    site.MailtoLink(h.config.Contacts.Email),
		},
		"lang": st.Lang(),
		"dir":  st.Dir(),
	})
}
