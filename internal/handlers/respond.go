package handlers

import (
	"ayah/internal/cart"
	"ayah/internal/i18n"
	"ayah/internal/models"

	"github.com/gofiber/fiber/v2"
)

// cartView is the cart as rendered to clients.
type cartView struct {
	Items      []models.CartItem `json:"items"`
	TotalItems int               `json:"totalItems"`
	TotalPrice float64           `json:"totalPrice"`
	Locked     bool              `json:"locked"`
}

func renderCart(c *cart.Store) cartView {
	snap := c.Snapshot()
	items := snap.Items
	if items == nil {
		items = []models.CartItem{}
	}
	return cartView{
		Items:      items,
		TotalItems: snap.TotalItems,
		TotalPrice: snap.TotalPrice.Round(2).InexactFloat64(),
		Locked:     c.Locked(),
	}
}

func errorResponse(c *fiber.Ctx, status int, message string, err error) error {
	body := fiber.Map{"message": message}
	if err != nil {
		body["error"] = err.Error()
	}
	return c.Status(status).JSON(body)
}

func invalidBody(c *fiber.Ctx, lang models.Lang, err error) error {
	return errorResponse(c, fiber.StatusBadRequest, i18n.T(lang, "Invalid request body", "بيانات الطلب غير صالحة"), err)
}
