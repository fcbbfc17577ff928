package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-id-api/internal/models"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()

	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/dashboard", http.StatusOK, 20*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/dashboard", http.StatusOK, 40*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordSignIn(true)
	m.RecordSignIn(false)
	m.RecordSubmission(nil)
	m.RecordSubmission(errors.New("boom"))

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.RequestsTotal)
	assert.InDelta(t, 30.0, snap.AverageRequestDurationMs, 0.01)
	assert.Equal(t, 0.5, snap.CacheHitRatio)
	assert.Equal(t, uint64(1), snap.SignInsSucceeded)
	assert.Equal(t, uint64(1), snap.SignInsFailed)
	assert.Equal(t, uint64(1), snap.RequestsSubmitted)
}

func TestMetricsServiceExposesCollectors(t *testing.T) {
	m := NewMetricsService()
	m.RecordWizardTransition("next", 2, nil)
	m.RecordReportJob(models.ReportFormatCSV, models.ReportStatusFinished)
	m.ObserveSimulated("track", 800*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "wizard_transitions_total")
	assert.Contains(t, body, "report_jobs_total")
}

func TestNilMetricsServiceIsInert(t *testing.T) {
	var m *MetricsService

	m.RecordSignIn(true)
	m.RecordCacheOperation(true, time.Millisecond)

	assert.Equal(t, models.SystemMetrics{}, m.Snapshot())
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
