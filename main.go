package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"greencart/internal/app"
	"greencart/internal/config"
	"greencart/internal/metrics"
	"greencart/internal/payments"
	"greencart/internal/services"
	"greencart/pkg/cache"
	"greencart/pkg/logger"
	"greencart/pkg/rabbitmq"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("greencart", "info")
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(cfg.ServiceName, cfg.LogLevel)
	for _, w := range cfg.Warnings() {
		log.Warn().Msg(w)
	}

	// --- Repositories ---
	repos, closeDB, err := app.NewRepositories(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("failed to initialize repositories")
	}
	defer closeDB()

	if err := app.SeedProducts(context.Background(), services.NewProductService(repos.Products), log); err != nil {
		log.Error().Err(err).Msg("failed to seed products")
	}

	deps := app.Dependencies{
		Repositories: repos,
		Gateway:      payments.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret),
		Metrics:      metrics.New(cfg.ServiceName),
		Log:          log,
	}

	// --- RabbitMQ (optional) ---
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize RabbitMQ client")
		}
		defer mqClient.Close()
		deps.Publisher = mqClient

		if err := mqClient.Consume(eventLogger(log)); err != nil {
			log.Error().Err(err).Msg("failed to start RabbitMQ consumer")
		}
	} else {
		log.Warn().Msg("RABBITMQ_URL not set, order events are not published")
	}

	// --- Webhook dedupe store ---
	if cfg.RedisAddr != "" {
		rdb := cache.New(cfg.RedisAddr)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(ctx)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to reach redis")
		}
		defer rdb.Close()
		deps.Deduper = rdb
	} else {
		deps.Deduper = cache.NewMemoryStore()
	}

	fiberApp := app.New(cfg, deps)

	// --- Start HTTP Server ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.AppPort).Msg("starting server")
		if err := fiberApp.Listen(cfg.AppPort); err != nil {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-quit
	log.Info().Msg("shutting down server")
	if err := fiberApp.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("server gracefully stopped")
}

// eventLogger consumes order and payment events. Downstream work such as
// notifications hangs off this queue; here each event is only recorded.
func eventLogger(log zerolog.Logger) func(msg amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		switch msg.RoutingKey {
		case services.RoutingOrderPlaced, services.RoutingOrderPaid, services.RoutingPaymentWebhook:
			log.Info().Str("routing_key", msg.RoutingKey).RawJSON("event", msg.Body).Msg("event received")
		default:
			log.Debug().Str("routing_key", msg.RoutingKey).Msg("ignoring unknown event")
		}
		return nil
	}
}
