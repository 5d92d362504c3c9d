package middleware

import (
	"strings"

	"greencart/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Cookie names carrying session tokens.
const (
	UserCookie   = "token"
	SellerCookie = "sellerToken"
)

// LocalUserID is the fiber.Ctx locals key holding the authenticated user id.
const LocalUserID = "user_id"

// LocalSellerEmail is the fiber.Ctx locals key holding the authenticated seller.
const LocalSellerEmail = "seller_email"

// AuthUser requires a valid user token from the "token" cookie or a bearer header.
func AuthUser(authService *services.AuthService) fiber.Handler {
	return requireRole(authService, UserCookie, services.RoleUser, LocalUserID)
}

// AuthSeller requires a valid seller token from the "sellerToken" cookie or a bearer header.
func AuthSeller(authService *services.AuthService) fiber.Handler {
	return requireRole(authService, SellerCookie, services.RoleSeller, LocalSellerEmail)
}

func requireRole(authService *services.AuthService, cookie, role, local string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(cookie)
		if tokenString == "" {
			// Expected format: "Bearer <token>"
			parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			return notAuthorized(c)
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil || claims.Role != role {
			return notAuthorized(c)
		}

		c.Locals(local, claims.Subject)
		return c.Next()
	}
}

func notAuthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": "Not Authorized",
	})
}

// UserID returns the id stored by AuthUser.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}
