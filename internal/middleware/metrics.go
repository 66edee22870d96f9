package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveWebSockets is the gauge of currently open websocket connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gearswap_active_websockets",
		Help: "Number of currently active WebSocket connections",
	})

	// RedisErrors counts Redis command errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gearswap_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// StylerRequests counts styler recommendation requests by type and outcome.
	StylerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gearswap_styler_requests_total",
		Help: "Total styler requests by request type and outcome",
	}, []string{"request_type", "outcome"})

	// ResetEmailsSent counts password-reset emails handed to the mailer.
	ResetEmailsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gearswap_reset_emails_total",
		Help: "Total password reset emails dispatched",
	})
)

// InitMetrics creates the fiberprometheus middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the fiberprometheus handler as a Fiber middleware.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
