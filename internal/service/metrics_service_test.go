package service

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/content-review-api/internal/models"
)

func TestObserveSweepOutcomes(t *testing.T) {
	m := NewMetricsService()

	m.ObserveSweep(nil, time.Second)
	m.ObserveSweep(&models.SweepReport{NotifiedOwners: 2, FinishedAt: testNow}, time.Second)
	m.ObserveSweep(&models.SweepReport{
		NotifiedOwners: 1,
		DeliveryErrors: []models.OwnerFailure{{OwnerID: "x"}},
		FinishedAt:     testNow,
	}, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.sweepsTotal.WithLabelValues("aborted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sweepsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sweepsTotal.WithLabelValues("partial")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.notifications.WithLabelValues("sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("delivery_error")))
	assert.Equal(t, float64(testNow.Unix()), testutil.ToFloat64(m.lastSweep))
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveSweep(nil, 0)
	m.RecordCacheOperation(true, 0)
	m.ObserveHTTPRequest("GET", "/", 200, 0)
	assert.NotNil(t, m.Handler())
}
