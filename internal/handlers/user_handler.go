package handlers

import (
	"greencart/internal/middleware"
	"greencart/internal/models"
	"greencart/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler serves the cart and address endpoints.
type UserHandler struct {
	service  *services.UserService
	validate *validator.Validate
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service, validate: validator.New()}
}

// RegisterRoutes registers cart and address routes; all require a user session.
func (h *UserHandler) RegisterRoutes(router fiber.Router, authUser fiber.Handler) {
	router.Post("/cart/update", authUser, h.HandleUpdateCart)

	addressRoutes := router.Group("/address", authUser)
	addressRoutes.Post("/add", h.HandleAddAddress)
	addressRoutes.Get("/get", h.HandleGetAddresses)
}

// HandleUpdateCart replaces the stored cart.
func (h *UserHandler) HandleUpdateCart(c *fiber.Ctx) error {
	var req struct {
		CartItems map[string]int `json:"cartItems"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, services.ErrInvalidData)
	}

	cart, err := h.service.UpdateCart(c.UserContext(), middleware.UserID(c), req.CartItems)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Cart Updated", "cartItems": cart})
}

// HandleAddAddress stores a delivery address.
func (h *UserHandler) HandleAddAddress(c *fiber.Ctx) error {
	var req struct {
		Address models.Address `json:"address"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, services.ErrInvalidData)
	}
	if err := h.validate.Struct(req.Address); err != nil {
		return validationFailed(c, err)
	}

	if err := h.service.AddAddress(c.UserContext(), middleware.UserID(c), &req.Address); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Address added successfully", "address": req.Address})
}

// HandleGetAddresses lists the caller's addresses.
func (h *UserHandler) HandleGetAddresses(c *fiber.Ctx) error {
	addresses, err := h.service.GetAddresses(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "addresses": addresses})
}
