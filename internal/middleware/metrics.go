package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mushroom_http_requests_total",
			Help: "HTTP requests served, by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mushroom_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Metrics records a request counter and a latency histogram per route.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := normalizePath(r.URL.Path)
			wrapped := newResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// normalizePath replaces species ids with {id} so the label set stays small:
//
//	/api/species/12      → /api/species/{id}
//	/api/species/12/map  → /api/species/{id}/map
//
// Paths outside the API collapse to "other".
func normalizePath(path string) string {
	switch path {
	case "/healthz", "/metrics",
		"/api/species", "/api/specimens", "/api/specimens/mine",
		"/api/auth/register", "/api/auth/login", "/api/auth/logout", "/api/auth/me":
		return path
	}

	const speciesPrefix = "/api/species/"
	if rest, ok := strings.CutPrefix(path, speciesPrefix); ok && rest != "" {
		_, suffix, _ := strings.Cut(rest, "/")
		switch suffix {
		case "":
			return "/api/species/{id}"
		case "specimens", "map":
			return "/api/species/{id}/" + suffix
		}
	}
	return "other"
}
