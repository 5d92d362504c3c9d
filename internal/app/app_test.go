package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"greencart/internal/config"
	"greencart/internal/metrics"
	"greencart/internal/payments"
	"greencart/internal/services"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		ServiceName:       "greencart-test",
		DBDriver:          config.DriverMemory,
		JWTSecret:         "secret",
		RazorpayKeySecret: "rzp_secret",
		Currency:          "INR",
	}
}

func TestNew_HealthAndMetrics(t *testing.T) {
	cfg := testConfig()
	repos, closeDB, err := NewRepositories(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer closeDB()

	m := metrics.New(cfg.ServiceName)
	app := New(cfg, Dependencies{
		Repositories: repos,
		Gateway:      payments.NewRazorpayGateway("key", "secret"),
		Metrics:      m,
		Log:          zerolog.Nop(),
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	var health map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, false, health["messaging"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/product/list", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `http_requests_total{method="GET",route="/api/product/list",service="greencart-test",status="200"} 1`)
}

func TestSeedProducts(t *testing.T) {
	ctx := context.Background()
	repos := NewMemoryRepositories()

	require.NoError(t, SeedProducts(ctx, services.NewProductService(repos.Products), zerolog.Nop()))
	products, err := repos.Products.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 4)

	// Seeding a non-empty catalog is a no-op.
	require.NoError(t, SeedProducts(ctx, services.NewProductService(repos.Products), zerolog.Nop()))
	products, err = repos.Products.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 4)
}

func TestNewRepositories_UnknownDriver(t *testing.T) {
	cfg := testConfig()
	cfg.DBDriver = "mongodb"
	_, _, err := NewRepositories(cfg, zerolog.Nop())
	assert.Error(t, err)
}
