package handlers

import (
	"errors"
	"time"

	"greencart/internal/middleware"
	"greencart/internal/models"
	"greencart/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// AuthHandler handles registration and login for shoppers and the seller.
type AuthHandler struct {
	authService  *services.AuthService
	validate     *validator.Validate
	secureCookie bool
	log          zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler. secureCookie marks session
// cookies Secure and SameSite=None, as needed behind HTTPS.
func NewAuthHandler(authService *services.AuthService, secureCookie bool, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		validate:     validator.New(),
		secureCookie: secureCookie,
		log:          log,
	}
}

// RegisterRoutes registers the user and seller session routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, authUser, authSeller fiber.Handler) {
	userRoutes := router.Group("/user")
	userRoutes.Post("/register", h.HandleRegister)
	userRoutes.Post("/login", h.HandleLogin)
	userRoutes.Get("/is-auth", authUser, h.HandleIsAuth)
	userRoutes.Get("/logout", authUser, h.HandleLogout(middleware.UserCookie))

	sellerRoutes := router.Group("/seller")
	sellerRoutes.Post("/login", h.HandleSellerLogin)
	sellerRoutes.Get("/is-auth", authSeller, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true})
	})
	sellerRoutes.Get("/logout", authSeller, h.HandleLogout(middleware.SellerCookie))
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) setSession(c *fiber.Ctx, name, token string) {
	sameSite := fiber.CookieSameSiteStrictMode
	if h.secureCookie {
		sameSite = fiber.CookieSameSiteNoneMode
	}
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    token,
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: sameSite,
		Expires:  time.Now().Add(h.authService.TokenDuration()),
	})
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var user models.User
	if err := c.BodyParser(&user); err != nil {
		return failMessage(c, "Missing Details")
	}
	user.ID = ""
	user.CartItems = nil
	if err := h.validate.Struct(user); err != nil {
		return validationFailed(c, err)
	}

	token, err := h.authService.RegisterUser(c.UserContext(), &user)
	if err != nil {
		if !errors.Is(err, services.ErrUserExists) {
			h.log.Error().Err(err).Msg("registration failed")
		}
		return fail(c, err)
	}

	h.setSession(c, middleware.UserCookie, token)
	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    fiber.Map{"_id": user.ID, "email": user.Email, "name": user.Name},
	})
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return failMessage(c, "Email and password are required")
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	token, user, err := h.authService.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}

	h.setSession(c, middleware.UserCookie, token)
	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    fiber.Map{"_id": user.ID, "email": user.Email, "name": user.Name},
	})
}

// HandleIsAuth returns the logged in user.
func (h *AuthHandler) HandleIsAuth(c *fiber.Ctx) error {
	user, err := h.authService.GetUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "user": user})
}

// HandleSellerLogin checks the seller credentials.
func (h *AuthHandler) HandleSellerLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return failMessage(c, "Email and password are required")
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	token, err := h.authService.LoginSeller(req.Email, req.Password)
	if err != nil {
		h.log.Warn().Msg("seller login rejected")
		return fail(c, err)
	}

	h.setSession(c, middleware.SellerCookie, token)
	return c.JSON(fiber.Map{"success": true, "token": token, "message": "Logged In"})
}

// HandleLogout clears the named session cookie.
func (h *AuthHandler) HandleLogout(cookie string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.ClearCookie(cookie)
		return c.JSON(fiber.Map{"success": true, "message": "Logged Out"})
	}
}
