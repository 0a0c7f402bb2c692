package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Togather-Foundation/eventplanner/internal/audit"
	"github.com/Togather-Foundation/eventplanner/internal/auth"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func auditMux(buf *bytes.Buffer, status int) *http.ServeMux {
	logger := audit.NewLogger(zerolog.New(buf))
	handler := Audit(logger, "id")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))

	mux := http.NewServeMux()
	mux.Handle("/events/{id}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := auth.WithIdentity(r.Context(), auth.Identity{UID: "u-1", Role: auth.RoleAdmin})
		ctx = WithRequestID(ctx, "req-42")
		handler.ServeHTTP(w, r.WithContext(ctx))
	}))
	return mux
}

func TestAuditRecordsMutations(t *testing.T) {
	var buf bytes.Buffer
	mux := auditMux(&buf, http.StatusNoContent)

	req := httptest.NewRequest(http.MethodDelete, "/events/evt-1", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "audit", entry["message"])
	require.Equal(t, "/events/{id}", entry["action"])
	require.Equal(t, "u-1", entry["actor"])
	require.Equal(t, "admin", entry["role"])
	require.Equal(t, map[string]any{"id": "evt-1"}, entry["resource"])
	require.Equal(t, "10.1.2.3", entry["ip_address"])
	require.Equal(t, "req-42", entry["request_id"])
	require.Equal(t, audit.StatusSuccess, entry["status"])
}

func TestAuditRecordsFailures(t *testing.T) {
	var buf bytes.Buffer
	mux := auditMux(&buf, http.StatusForbidden)

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/events/evt-1", strings.NewReader("{}")))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "warn", entry["level"])
	require.Equal(t, audit.StatusFailure, entry["status"])
	require.EqualValues(t, http.StatusForbidden, entry["http_status"])
}

func TestAuditSkipsReads(t *testing.T) {
	var buf bytes.Buffer
	mux := auditMux(&buf, http.StatusOK)

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/events/evt-1", nil))
	require.Zero(t, buf.Len())
}

func TestRemoteIP(t *testing.T) {
	require.Equal(t, "192.0.2.1", remoteIP("192.0.2.1:1234"))
	require.Equal(t, "::1", remoteIP("[::1]:80"))
	require.Equal(t, "pipe", remoteIP("pipe"))
}
