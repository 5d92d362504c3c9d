package handlers

import (
	"greencart/internal/middleware"
	"greencart/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
	log     zerolog.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, log zerolog.Logger) *OrderHandler {
	return &OrderHandler{service: service, log: log}
}

// RegisterRoutes registers the order routes.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, authUser, authSeller fiber.Handler) {
	orderRoutes := router.Group("/order")
	orderRoutes.Post("/cod", authUser, h.HandlePlaceOrderCOD)
	orderRoutes.Get("/user", authUser, h.HandleGetUserOrders)
	orderRoutes.Get("/seller", authSeller, h.HandleGetAllOrders)
	orderRoutes.Post("/razorpay", authUser, h.HandlePlaceOrderRazorpay)
	orderRoutes.Post("/razorpay/verify", authUser, h.HandleVerifyRazorpay)
}

// HandlePlaceOrderCOD places a cash on delivery order.
func (h *OrderHandler) HandlePlaceOrderCOD(c *fiber.Ctx) error {
	var req services.PlaceOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, services.ErrInvalidData)
	}

	if _, err := h.service.PlaceOrderCOD(c.UserContext(), middleware.UserID(c), req); err != nil {
		h.log.Warn().Err(err).Msg("cod order failed")
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Order Placed Successfully",
	})
}

// HandlePlaceOrderRazorpay creates the order and the matching Razorpay order.
func (h *OrderHandler) HandlePlaceOrderRazorpay(c *fiber.Ctx) error {
	var req services.PlaceOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, services.ErrInvalidData)
	}

	checkout, err := h.service.PlaceOrderRazorpay(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		h.log.Warn().Err(err).Msg("razorpay order failed")
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"key":       checkout.Key,
		"order":     checkout.Order,
		"dbOrderId": checkout.DBOrderID,
	})
}

// HandleVerifyRazorpay checks the checkout signature and marks the order paid.
func (h *OrderHandler) HandleVerifyRazorpay(c *fiber.Ctx) error {
	var req services.VerifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, services.ErrMissingFields)
	}

	if err := h.service.VerifyRazorpayPayment(c.UserContext(), middleware.UserID(c), req); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// HandleGetUserOrders lists the caller's orders.
func (h *OrderHandler) HandleGetUserOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetUserOrders(c.UserContext(), middleware.UserID(c))
	if err != nil {
		h.log.Error().Err(err).Msg("listing user orders failed")
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "orders": orders})
}

// HandleGetAllOrders lists every order for the seller dashboard.
func (h *OrderHandler) HandleGetAllOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetAllOrders(c.UserContext())
	if err != nil {
		h.log.Error().Err(err).Msg("listing orders failed")
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "orders": orders})
}
