package handlers

import (
	"errors"

	"ayah/internal/cart"
	"ayah/internal/i18n"
	"ayah/internal/middleware"
	"ayah/internal/repositories"
	"ayah/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// LessonHandler handles HTTP requests for the lesson catalog.
type LessonHandler struct {
	service *services.CatalogService
	logger  *zap.Logger
}

// NewLessonHandler creates a new LessonHandler.
func NewLessonHandler(service *services.CatalogService, logger *zap.Logger) *LessonHandler {
	return &LessonHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the lesson routes.
func (h *LessonHandler) RegisterRoutes(router fiber.Router) {
	lessonRoutes := router.Group("/lessons")
	lessonRoutes.Get("/", h.HandleGetLessons)
	lessonRoutes.Get("/:id", h.HandleGetLesson)
	lessonRoutes.Post("/:id/purchase", h.HandlePurchase)
}

func (h *LessonHandler) HandleGetLessons(c *fiber.Ctx) error {
	st := middleware.State(c)
	lessons, err := h.service.ListLessons(c.UserContext(), st.Lang())
	if err != nil {
		h.logger.Error("Failed to list lessons", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Could not retrieve lessons", err)
	}
	return c.JSON(lessons)
}

func (h *LessonHandler) HandleGetLesson(c *fiber.Ctx) error {
	st := middleware.State(c)
	lesson, err := h.service.GetLesson(c.UserContext(), st.Lang(), c.Params("id"))
	if err != nil {
		return h.lessonError(c, err)
	}
	return c.JSON(lesson)
}

// HandlePurchase is the "Pay now" button: it adds the lesson to the cart and sends the client to
// checkout.
func (h *LessonHandler) HandlePurchase(c *fiber.Ctx) error {
	st := middleware.State(c)
	redirect, err := h.service.Purchase(c.UserContext(), st.Lang(), st.Cart(), c.Params("id"))
	if err != nil {
		if errors.Is(err, cart.ErrCartLocked) {
			return errorResponse(c, fiber.StatusConflict, i18n.T(st.Lang(), "Checkout in progress", "الدفع قيد التنفيذ"), err)
		}
		return h.lessonError(c, err)
	}
	return c.JSON(fiber.Map{
		"redirect": redirect,
		"cart":     renderCart(st.Cart()),
	})
}

func (h *LessonHandler) lessonError(c *fiber.Ctx, err error) error {
	if errors.Is(err, repositories.ErrLessonNotFound) {
		return errorResponse(c, fiber.StatusNotFound,
			i18n.T(middleware.State(c).Lang(), "Lesson not found", "الدرس غير موجود"), nil)
	}
	h.logger.Error("Lesson lookup failed", zap.Error(err))
	return errorResponse(c, fiber.StatusInternalServerError, "Could not retrieve lesson", err)
}
