// Package telemetry exposes Prometheus metrics for the HTTP layer, flag
// evaluation failures and registry reloads.
package telemetry

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	httpDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// FlagEvaluations counts IsEnabled calls.
	FlagEvaluations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flag_evaluations_total",
		Help: "Total feature flag evaluations",
	})
	// FlagEvaluationFailures counts evaluations forced off by an error, by reason.
	FlagEvaluationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flag_evaluation_failures_total",
			Help: "Flag evaluations that failed closed, by reason",
		},
		[]string{"reason"},
	)
	// RegistryFlags is the number of flags in the active registry.
	RegistryFlags = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "registry_flags",
		Help: "Number of flags currently in the active registry",
	})
	// RegistryReloads counts reload attempts by result ("ok" or "error").
	RegistryReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registry_reloads_total",
			Help: "Flag registry reload attempts",
		},
		[]string{"result"},
	)

	initOnce sync.Once
)

// Init registers all collectors with the default registry. Safe to call more
// than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(httpReqs, httpDur, FlagEvaluations, FlagEvaluationFailures, RegistryFlags, RegistryReloads)
	})
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		// the route pattern is only complete after routing
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}

		httpReqs.WithLabelValues(route, r.Method, http.StatusText(ww.status)).Inc()
		httpDur.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
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
