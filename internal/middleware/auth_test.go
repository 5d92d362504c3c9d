package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"greencart/internal/middleware"
	"greencart/internal/repositories"
	"greencart/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(authService *services.AuthService) *fiber.App {
	app := fiber.New()
	app.Get("/me", middleware.AuthUser(authService), func(c *fiber.Ctx) error {
		return c.SendString(middleware.UserID(c))
	})
	app.Get("/dashboard", middleware.AuthSeller(authService), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(middleware.LocalSellerEmail).(string))
	})
	return app
}

func TestAuthUser(t *testing.T) {
	authService := services.NewAuthService(repositories.NewMockUserRepository(), "secret", "seller@greencart.dev", "pw", zerolog.Nop())
	app := newTestApp(authService)

	userToken, err := authService.GenerateToken("u-1", services.RoleUser)
	require.NoError(t, err)
	sellerToken, err := authService.GenerateToken("seller@greencart.dev", services.RoleSeller)
	require.NoError(t, err)

	tests := []struct {
		name       string
		path       string
		setup      func(r *http.Request)
		wantStatus int
		wantBody   string
	}{
		{"user cookie", "/me", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: middleware.UserCookie, Value: userToken})
		}, http.StatusOK, "u-1"},
		{"user bearer", "/me", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+userToken)
		}, http.StatusOK, "u-1"},
		{"no token", "/me", func(*http.Request) {}, http.StatusUnauthorized, ""},
		{"malformed header", "/me", func(r *http.Request) {
			r.Header.Set("Authorization", userToken)
		}, http.StatusUnauthorized, ""},
		{"seller token on user route", "/me", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+sellerToken)
		}, http.StatusUnauthorized, ""},
		{"seller cookie", "/dashboard", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: middleware.SellerCookie, Value: sellerToken})
		}, http.StatusOK, "seller@greencart.dev"},
		{"user cookie on seller route", "/dashboard", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: middleware.SellerCookie, Value: userToken})
		}, http.StatusUnauthorized, ""},
		{"forged token", "/dashboard", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+sellerToken+"x")
		}, http.StatusUnauthorized, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			tc.setup(req)
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.wantStatus, resp.StatusCode)
			if tc.wantBody != "" {
				buf := make([]byte, 64)
				n, _ := resp.Body.Read(buf)
				assert.Equal(t, tc.wantBody, string(buf[:n]))
			}
		})
	}
}
