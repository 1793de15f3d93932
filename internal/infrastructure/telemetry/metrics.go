package telemetry

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tijuanashop_product_query_latency_seconds",
		Help:    "Latency of product queries by path taken through the builder.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	QueryPlans = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tijuanashop_product_query_plans_total",
		Help: "Store queries issued for product listings.",
	}, []string{"path"})

	InterpreterResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tijuanashop_search_interpretations_total",
		Help: "Search interpretations by source (cache, provider, fallback).",
	}, []string{"source"})

	ChatsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tijuanashop_chats_total",
		Help: "Contact-seller calls by outcome (existing, created, raced).",
	}, []string{"outcome"})

	HTTPRequests = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tijuanashop_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// ObserveQuery records a product query that took the given path.
func ObserveQuery(path string, plans int, start time.Time) {
	QueryPlans.WithLabelValues(path).Add(float64(plans))
	QueryLatency.WithLabelValues(path).Observe(time.Since(start).Seconds())
}

// EchoMiddleware records request latency labelled by the matched route.
func EchoMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			HTTPRequests.WithLabelValues(c.Request().Method, c.Path(), strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}
