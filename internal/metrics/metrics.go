// Package metrics provides Prometheus collectors for oEmbed lookups and the
// lookup service's HTTP API.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Lookup outcomes. "unsupported" and "failed" are deliberately separate.
const (
	OutcomeOK          = "ok"
	OutcomeUnsupported = "unsupported"
	OutcomeFailed      = "failed"
)

var (
	// LookupsTotal counts lookups by provider and outcome. Unsupported URLs
	// are recorded with an empty provider.
	LookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oembed_lookups_total",
			Help: "oEmbed lookups",
		},
		[]string{"provider", "outcome"},
	)

	// ProviderLatency records the time spent fetching and parsing a provider response.
	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "oembed_provider_latency_seconds",
			Help:    "Provider latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// RequestsTotal counts HTTP API requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oembed_http_requests_total",
			Help: "HTTP API requests",
		},
		[]string{"method", "status"},
	)

	// ActiveJobs tracks batch jobs that have not finished.
	ActiveJobs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "oembed_batch_jobs_active",
			Help: "Active batch jobs",
		},
	)

	// RateLimitRejectedTotal counts API requests rejected by the ingress limiter.
	RateLimitRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "oembed_ratelimit_rejected_total",
			Help: "Rate limit rejections",
		},
	)
)

func init() {
	prometheus.MustRegister(
		LookupsTotal,
		ProviderLatency,
		RequestsTotal,
		ActiveJobs,
		RateLimitRejectedTotal,
	)
}

// ObserveLookup records one lookup.
func ObserveLookup(provider, outcome string, elapsed time.Duration) {
	LookupsTotal.WithLabelValues(provider, outcome).Inc()
	if provider != "" {
		ProviderLatency.WithLabelValues(provider).Observe(elapsed.Seconds())
	}
}

// Middleware counts requests by method and status class.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(sw.status/100)+"xx").Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Hijack is required by the WebSocket upgrade.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}
