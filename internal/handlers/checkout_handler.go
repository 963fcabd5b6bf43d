package handlers

import (
	"errors"

	"ayah/internal/checkout"
	"ayah/internal/i18n"
	"ayah/internal/middleware"
	"ayah/internal/repositories"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ViewEmptyCart tells the client to render the empty-cart page instead of the checkout form.
const ViewEmptyCart = "empty-cart"

// CheckoutHandler handles HTTP requests for the simulated checkout.
type CheckoutHandler struct {
	logger *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{logger: logger}
}

// RegisterRoutes registers the checkout and order routes.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/checkout", h.HandleGetCheckout)
	router.Post("/checkout", h.HandleStartCheckout)
	router.Post("/checkout/reset", h.HandleResetCheckout)
	router.Get("/orders/last", h.HandleGetLastOrder)
}

type checkoutResponse struct {
	checkout.View
	Page string   `json:"view,omitempty"`
	Cart cartView `json:"cart"`
}

func (h *CheckoutHandler) HandleGetCheckout(c *fiber.Ctx) error {
	st := middleware.State(c)
	resp := checkoutResponse{View: st.Checkout().Status(), Cart: renderCart(st.Cart())}
	if resp.State == checkout.StatusIdle && st.Cart().IsEmpty() {
		resp.Page = ViewEmptyCart
	}
	return c.JSON(resp)
}

// HandleStartCheckout places the order. The client polls GET /checkout until the redirect to
// the success page appears.
func (h *CheckoutHandler) HandleStartCheckout(c *fiber.Ctx) error {
	st := middleware.State(c)
	lang := st.Lang()

	_, err := st.Checkout().Start(c.UserContext())
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": i18n.T(lang, "Your cart is empty", "سلتك فارغة"),
			"view":    ViewEmptyCart,
		})
	case errors.Is(err, checkout.ErrCheckoutInProgress):
		return errorResponse(c, fiber.StatusConflict, i18n.T(lang, "Checkout already in progress", "الدفع قيد التنفيذ بالفعل"), err)
	case err != nil:
		h.logger.Error("Checkout failed", zap.String("client_id", st.ID()), zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, i18n.T(lang, "Could not place order", "تعذر إتمام الطلب"), err)
	}

	return c.Status(fiber.StatusAccepted).JSON(checkoutResponse{
		View: st.Checkout().Status(),
		Cart: renderCart(st.Cart()),
	})
}

func (h *CheckoutHandler) HandleResetCheckout(c *fiber.Ctx) error {
	st := middleware.State(c)
	if err := st.Checkout().Reset(); err != nil {
		return errorResponse(c, fiber.StatusConflict, i18n.T(st.Lang(), "Checkout already in progress", "الدفع قيد التنفيذ بالفعل"), err)
	}
	return c.JSON(st.Checkout().Status())
}

func (h *CheckoutHandler) HandleGetLastOrder(c *fiber.Ctx) error {
	st := middleware.State(c)
	order, err := st.Checkout().LastOrder(c.UserContext())
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return errorResponse(c, fiber.StatusNotFound, i18n.T(st.Lang(), "No order found", "لم يتم العثور على طلب"), nil)
		}
		h.logger.Error("Failed to read last order", zap.String("client_id", st.ID()), zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Could not retrieve order", err)
	}
	return c.JSON(order)
}
