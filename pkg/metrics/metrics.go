// Package metrics collects and exposes Prometheus metrics for the API:
// request counts and latency by route and status, plus domain counters for
// conversions, regenerations, and rate limit rejections.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector registers and records the application metrics.
type Collector struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	conversions     prometheus.Counter
	regenerations   prometheus.Counter
	rateLimited     *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "distribuia_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "distribuia_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		conversions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "distribuia_conversions_total",
			Help: "Conversions created.",
		}),
		regenerations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "distribuia_regenerations_total",
			Help: "Output versions regenerated.",
		}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "distribuia_rate_limited_total",
			Help: "Requests rejected by rate limiting, by policy.",
		}, []string{"policy"}),
	}

	reg.MustRegister(c.requests, c.requestDuration, c.conversions, c.regenerations, c.rateLimited)
	return c
}

// RecordConversion counts a created conversion.
func (c *Collector) RecordConversion() { c.conversions.Inc() }

// RecordRegeneration counts a regenerated output version.
func (c *Collector) RecordRegeneration() { c.regenerations.Inc() }

// RecordRateLimited counts a 429 for the given policy.
func (c *Collector) RecordRateLimited(policy string) {
	c.rateLimited.WithLabelValues(policy).Inc()
}

// Middleware instruments every request with count and duration, labeled by
// the chi route pattern so path parameters don't explode cardinality.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		c.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		c.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Handler returns the Prometheus scrape endpoint.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
