package handlers

import (
	"errors"

	"ayah/internal/cart"
	"ayah/internal/i18n"
	"ayah/internal/middleware"
	"ayah/internal/models"
	"ayah/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CartHandler handles HTTP requests for the client's cart.
type CartHandler struct {
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(logger *zap.Logger) *CartHandler {
	return &CartHandler{
		validate: services.NewValidator(),
		logger:   logger,
	}
}

// RegisterRoutes registers the cart routes.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Patch("/items/:id", h.HandleUpdateQuantity)
	cartRoutes.Delete("/items/:id", h.HandleRemoveItem)
}

// UpdateQuantityRequest is the body of a quantity change. Zero or less removes the line.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	return c.JSON(renderCart(middleware.State(c).Cart()))
}

func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	st := middleware.State(c)
	var item models.CartItem
	if err := c.BodyParser(&item); err != nil {
		return invalidBody(c, st.Lang(), err)
	}
	if item.Type == "" {
		item.Type = models.ItemTypeLesson
	}
	if err := h.validate.Struct(item); err != nil {
		var verrs validator.ValidationErrors
		errors.As(err, &verrs)
		fields := make(map[string]string, len(verrs))
		for _, e := range verrs {
			fields[e.Field()] = "failed on the '" + e.Tag() + "' rule"
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": i18n.T(st.Lang(), "Validation failed", "فشل التحقق من البيانات"),
			"errors":  fields,
		})
	}

	if err := st.Cart().AddItem(item); err != nil {
		return h.cartError(c, st.Lang(), err)
	}
	return c.Status(fiber.StatusCreated).JSON(renderCart(st.Cart()))
}

func (h *CartHandler) HandleUpdateQuantity(c *fiber.Ctx) error {
	st := middleware.State(c)
	var req UpdateQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, st.Lang(), err)
	}
	if err := h.validate.Struct(req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, i18n.T(st.Lang(), "Quantity is required", "الكمية مطلوبة"), nil)
	}

	if err := st.Cart().UpdateQuantity(c.Params("id"), *req.Quantity); err != nil {
		return h.cartError(c, st.Lang(), err)
	}
	return c.JSON(renderCart(st.Cart()))
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	st := middleware.State(c)
	if err := st.Cart().RemoveItem(c.Params("id")); err != nil {
		return h.cartError(c, st.Lang(), err)
	}
	return c.JSON(renderCart(st.Cart()))
}

func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	st := middleware.State(c)
	st.Cart().Clear()
	return c.JSON(renderCart(st.Cart()))
}

func (h *CartHandler) cartError(c *fiber.Ctx, lang models.Lang, err error) error {
	switch {
	case errors.Is(err, cart.ErrItemNotFound):
		return errorResponse(c, fiber.StatusNotFound, i18n.T(lang, "Item not in cart", "العنصر غير موجود في السلة"), err)
	case errors.Is(err, cart.ErrCartLocked):
		return errorResponse(c, fiber.StatusConflict, i18n.T(lang, "Checkout in progress", "الدفع قيد التنفيذ"), err)
	case errors.Is(err, cart.ErrInvalidItem), errors.Is(err, cart.ErrInvalidQuantity), errors.Is(err, cart.ErrInvalidPrice):
		return errorResponse(c, fiber.StatusBadRequest, i18n.T(lang, "Invalid item", "عنصر غير صالح"), err)
	default:
		h.logger.Error("Cart operation failed", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Could not update cart", err)
	}
}
