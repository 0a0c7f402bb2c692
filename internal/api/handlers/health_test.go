package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	ping func(ctx context.Context) error
}

func (s stubPinger) Ping(ctx context.Context) error { return s.ping(ctx) }

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	Healthz().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadyzHealthy(t *testing.T) {
	checker := NewHealthChecker(stubPinger{ping: func(context.Context) error { return nil }}, "river", "1.2.3", "abc123")

	rec := httptest.NewRecorder()
	checker.Readyz().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var response HealthCheck
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, "healthy", response.Status)
	assert.Equal(t, "1.2.3", response.Version)
	assert.Equal(t, "abc123", response.GitCommit)
	assert.Equal(t, "pass", response.Checks["store"].Status)
	assert.Equal(t, "pass", response.Checks["jobs"].Status)
}

func TestReadyzDegradedWithoutJobs(t *testing.T) {
	checker := NewHealthChecker(stubPinger{ping: func(context.Context) error { return nil }}, "disabled", "dev", "")

	rec := httptest.NewRecorder()
	checker.Readyz().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var response HealthCheck
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, "degraded", response.Status)
}

func TestReadyzStoreDown(t *testing.T) {
	checker := NewHealthChecker(stubPinger{ping: func(context.Context) error {
		return errors.New("connection refused")
	}}, "ticker", "dev", "")

	rec := httptest.NewRecorder()
	checker.Readyz().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var response HealthCheck
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, "unhealthy", response.Status)
	assert.Equal(t, "Document store unreachable", response.Checks["store"].Message)
	assert.Equal(t, "connection refused", response.Checks["store"].Details["error"])
}

func TestReadyzWithoutStore(t *testing.T) {
	checker := NewHealthChecker(nil, "ticker", "dev", "")

	rec := httptest.NewRecorder()
	checker.Readyz().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
