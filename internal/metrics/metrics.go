package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// UnmatchedRoute labels requests that reached no registered route.
const UnmatchedRoute = "unmatched"

// Metrics holds the service's collectors, registered on a single registry.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequestsTotal    *prometheus.CounterVec
	httpRequestsDuration *prometheus.HistogramVec
	ordersPlaced         *prometheus.CounterVec
	verifications        *prometheus.CounterVec
	webhooks             *prometheus.CounterVec
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New(serviceName string) *Metrics {
	labels := prometheus.Labels{"service": serviceName}
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "route", "status"}),
		httpRequestsDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_requests_duration_seconds",
			Help:        "HTTP request duration in seconds",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}, []string{"method", "route"}),
		ordersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "orders_placed_total",
			Help:        "Orders persisted at checkout, by payment type",
			ConstLabels: labels,
		}, []string{"payment_type"}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "payment_verifications_total",
			Help:        "Payment signature verifications, by result",
			ConstLabels: labels,
		}, []string{"result"}),
		webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "razorpay_webhooks_total",
			Help:        "Razorpay webhook deliveries, by event and result",
			ConstLabels: labels,
		}, []string{"event", "result"}),
	}

	m.Registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestsDuration,
		m.ordersPlaced,
		m.verifications,
		m.webhooks,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Middleware records request count and latency per route pattern.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := UnmatchedRoute
		if r := c.Route(); r != nil && r.Path != "" && (r.Path != "/" || c.Path() == "/") {
			route = r.Path
		}

		m.httpRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.httpRequestsDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// OrderPlaced counts a persisted order.
func (m *Metrics) OrderPlaced(paymentType string) {
	m.ordersPlaced.WithLabelValues(paymentType).Inc()
}

// Verification counts a verification attempt; result is e.g. "ok" or "invalid_signature".
func (m *Metrics) Verification(result string) {
	m.verifications.WithLabelValues(result).Inc()
}

// Webhook counts a webhook delivery.
func (m *Metrics) Webhook(event, result string) {
	m.webhooks.WithLabelValues(event, result).Inc()
}
