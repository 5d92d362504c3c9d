package app

import (
	"time"

	"greencart/internal/config"
	"greencart/internal/handlers"
	"greencart/internal/metrics"
	"greencart/internal/middleware"
	"greencart/internal/payments"
	"greencart/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Dependencies are the collaborators the HTTP application is built from.
type Dependencies struct {
	Repositories Repositories
	Gateway      payments.Gateway
	Publisher    services.EventPublisher // nil disables events
	Deduper      services.EventDeduper   // nil disables webhook dedupe
	Metrics      *metrics.Metrics
	Log          zerolog.Logger
}

// New wires services and handlers into a fiber app.
func New(cfg config.Config, deps Dependencies) *fiber.App {
	log := deps.Log
	repos := deps.Repositories

	gateways := payments.NewManager()
	gateways.Register(payments.MethodRazorpay, deps.Gateway)

	// --- Services ---
	authService := services.NewAuthService(repos.Users, cfg.JWTSecret, cfg.SellerEmail, cfg.SellerPassword, log)
	productService := services.NewProductService(repos.Products)
	userService := services.NewUserService(repos.Users, repos.Addresses)
	orderService := services.NewOrderService(
		repos.Orders,
		repos.Products,
		repos.Users,
		repos.Addresses,
		gateways,
		deps.Publisher,
		services.RazorpayConfig{
			KeyID:     cfg.RazorpayKeyID,
			KeySecret: cfg.RazorpayKeySecret,
			Currency:  cfg.Currency,
		},
		log,
	)
	webhookService := services.NewWebhookService(orderService, deps.Deduper, deps.Publisher, cfg.RazorpayWebhookSecret, log)
	if deps.Metrics != nil {
		orderService.WithRecorder(deps.Metrics)
		webhookService.WithRecorder(deps.Metrics)
	}

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService, cfg.SecureCookies, log)
	productHandler := handlers.NewProductHandler(productService)
	userHandler := handlers.NewUserHandler(userService)
	orderHandler := handlers.NewOrderHandler(orderService, log)
	webhookHandler := handlers.NewWebhookHandler(webhookService)

	app := fiber.New(fiber.Config{
		AppName:               cfg.ServiceName,
		DisableStartupMessage: true,
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(middleware.RequestLogger(log))
	if deps.Metrics != nil {
		app.Use(deps.Metrics.Middleware())
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":    "healthy",
			"time":      time.Now().Format(time.RFC3339),
			"messaging": deps.Publisher != nil,
		})
	})

	// The webhook is signed over the raw body and mounted outside /api.
	webhookHandler.RegisterRoutes(app)

	authUser := middleware.AuthUser(authService)
	authSeller := middleware.AuthSeller(authService)

	api := app.Group("/api")
	authHandler.RegisterRoutes(api, authUser, authSeller)
	productHandler.RegisterRoutes(api)
	userHandler.RegisterRoutes(api, authUser)
	orderHandler.RegisterRoutes(api, authUser, authSeller)

	return app
}
