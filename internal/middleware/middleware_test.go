package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"/healthz":                 "/healthz",
		"/api/species":             "/api/species",
		"/api/species/12":          "/api/species/{id}",
		"/api/species/12/map":      "/api/species/{id}/map",
		"/api/species/3/specimens": "/api/species/{id}/specimens",
		"/api/species/3/other":     "other",
		"/api/species/":            "other",
		"/wp-login.php":            "other",
		"/api/specimens/mine":      "/api/specimens/mine",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizePath(in), in)
	}
}

func TestMetrics_CountsByRoute(t *testing.T) {
	h := Metrics()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	before := counterValue(t, http.MethodGet, "/api/species/{id}", "404")
	for _, p := range []string{"/api/species/1", "/api/species/2"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}
	after := counterValue(t, http.MethodGet, "/api/species/{id}", "404")

	assert.Equal(t, 2.0, after-before)
}

func counterValue(t *testing.T, labels ...string) float64 {
	t.Helper()
	var m dto.Metric
	if err := httpRequestsTotal.WithLabelValues(labels...).Write(&m); err != nil {
		t.Fatalf("reading counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestLogger_RecordsStatusAndSize(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("hello"))
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/specimens", nil))

	line := buf.String()
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, line, "status=201")
	assert.Contains(t, line, "bytes=5")
	assert.Contains(t, line, "path=/api/specimens")
	assert.True(t, strings.Contains(line, "level=INFO"))
}

func TestLogger_ServerErrorsAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/species", nil))

	assert.Contains(t, buf.String(), "level=ERROR")
}
