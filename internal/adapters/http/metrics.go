package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts build and deploy outcomes.
type Metrics struct {
	Builds  *prometheus.CounterVec
	Deploys *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Builds: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "slipway_builds_total",
			Help: "Image builds by outcome.",
		}, []string{"status"}),
		Deploys: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "slipway_deploys_total",
			Help: "Container deployments by outcome.",
		}, []string{"status"}),
	}
}

// MetricsHandler serves the Prometheus exposition endpoint through Fiber.
func MetricsHandler(g prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}
