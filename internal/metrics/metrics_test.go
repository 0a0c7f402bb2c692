package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Togather-Foundation/eventplanner/internal/storage"
	"github.com/Togather-Foundation/eventplanner/internal/storage/memory"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "static path", input: "/api/v1/events", expected: "/api/v1/events"},
		{name: "single param", input: "/api/v1/events/{id}", expected: "/api/v1/events/{param}"},
		{name: "nested params", input: "/api/v1/events/{id}/attendees/{attendeeId}", expected: "/api/v1/events/{param}/attendees/{param}"},
		{name: "empty path", input: "", expected: ""},
		{name: "non-path input", input: "api/v1/events/{id}", expected: "api/v1/events/{id}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, normalizePath(tt.input))
		})
	}
}

func TestHTTPMiddlewareLabelsByRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /probe/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := HTTPMiddleware(mux)

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/probe/{param}", "418"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe/abc", nil))

	require.Equal(t, http.StatusTeapot, rec.Code)
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/probe/{param}", "418"))
	require.Equal(t, before+1, after)
}

func TestResponseWriterDefaultsToOK(t *testing.T) {
	rw := &responseWriter{ResponseWriter: httptest.NewRecorder()}
	_, _ = rw.Write([]byte("Hello"))

	require.Equal(t, http.StatusOK, rw.statusCode)
	require.Equal(t, 5, rw.bytesWritten)
}

func TestHandlerServesRegistry(t *testing.T) {
	AppInfo.WithLabelValues("test", "abc123", "2026-01-30").Set(1)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "eventplanner_app_info"))
}

func TestRecordStoreOpIgnoresNotFound(t *testing.T) {
	before := testutil.ToFloat64(StoreErrors.WithLabelValues("probe", "get_by_id", "store_error"))

	RecordStoreOp("probe", "get_by_id", time.Now(), storage.ErrNotFound)
	require.Equal(t, before, testutil.ToFloat64(StoreErrors.WithLabelValues("probe", "get_by_id", "store_error")))

	RecordStoreOp("probe", "get_by_id", time.Now(), errors.New("boom"))
	require.Equal(t, before+1, testutil.ToFloat64(StoreErrors.WithLabelValues("probe", "get_by_id", "store_error")))

	canceled := testutil.ToFloat64(StoreErrors.WithLabelValues("probe", "find", "canceled"))
	RecordStoreOp("probe", "find", time.Now(), context.Canceled)
	require.Equal(t, canceled+1, testutil.ToFloat64(StoreErrors.WithLabelValues("probe", "find", "canceled")))
}

func TestInstrumentedStoreDelegates(t *testing.T) {
	ctx := context.Background()
	store := NewInstrumentedStore(memory.New())

	id, err := store.Create(ctx, "metrics_probe", map[string]any{"title": "x"})
	require.NoError(t, err)

	doc, err := store.GetByID(ctx, "metrics_probe", id)
	require.NoError(t, err)
	require.Equal(t, "x", doc.Data["title"])

	_, err = store.GetByID(ctx, "metrics_probe", "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Ping(ctx))
	require.Positive(t, testutil.CollectAndCount(StoreOperationDuration))
}

func TestDBCollectorNilPool(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	collector := NewDBCollector(nil)
	collector.Start(ctx, time.Hour)
}

func TestRiverMetricsHookRecordsResult(t *testing.T) {
	hook := NewRiverMetricsHook()
	job := &rivertype.JobRow{ID: 42, Kind: "probe_kind"}

	before := testutil.ToFloat64(JobsCompleted.WithLabelValues("probe_kind", "error"))

	require.NoError(t, hook.WorkBegin(context.Background(), job))
	require.Equal(t, float64(1), testutil.ToFloat64(RiverJobsInFlight.WithLabelValues("probe_kind")))
	require.NoError(t, hook.WorkEnd(context.Background(), job, errors.New("failed")))

	require.Equal(t, float64(0), testutil.ToFloat64(RiverJobsInFlight.WithLabelValues("probe_kind")))
	require.Equal(t, before+1, testutil.ToFloat64(JobsCompleted.WithLabelValues("probe_kind", "error")))
}
