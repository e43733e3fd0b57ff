package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/content-review-api/internal/service"
)

func TestMetricsHandlerReady(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	c, w := testContext(http.MethodGet, "/ready", "")
	NewMetricsHandler(nil, map[string]ReadinessCheck{"postgres": ok}).Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = testContext(http.MethodGet, "/ready", "")
	NewMetricsHandler(nil, map[string]ReadinessCheck{"postgres": ok, "redis": down}).Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.ObserveHTTPRequest(http.MethodGet, "/pages/:id/review", http.StatusOK, 0)

	c, w := testContext(http.MethodGet, "/metrics", "")
	NewMetricsHandler(metrics, nil).Prometheus(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")

	c, w = testContext(http.MethodGet, "/metrics", "")
	NewMetricsHandler(nil, nil).Prometheus(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
