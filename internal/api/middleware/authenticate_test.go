package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Togather-Foundation/eventplanner/internal/apperror"
	"github.com/Togather-Foundation/eventplanner/internal/auth"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-123"

type stubVerifier struct {
	verify func(ctx context.Context, token string) (auth.Identity, error)
}

func (s stubVerifier) Verify(ctx context.Context, token string) (auth.Identity, error) {
	return s.verify(ctx, token)
}

func TestAuthenticateStoresIdentity(t *testing.T) {
	manager := auth.NewJWTManager(testSecret, time.Hour, "eventplanner")
	token, err := manager.Generate("u1", auth.RoleOrganizer)
	require.NoError(t, err)

	var got auth.Identity
	handler := Authenticate(manager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, auth.Identity{UID: "u1", Role: auth.RoleOrganizer}, got)
}

func TestAuthenticateFailures(t *testing.T) {
	manager := auth.NewJWTManager(testSecret, time.Hour, "eventplanner")
	other := auth.NewJWTManager("a-completely-different-signing-secret", time.Hour, "eventplanner")
	foreign, err := other.Generate("u1", auth.RoleUser)
	require.NoError(t, err)

	past := auth.NewJWTManager(testSecret, time.Hour, "eventplanner").
		WithNow(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	expired, err := past.Generate("u1", auth.RoleUser)
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		code    string
		message string
	}{
		{name: "no header", header: "", code: apperror.CodeTokenNotFound, message: "Unauthorized: No token provided"},
		{name: "wrong scheme", header: "Basic abc", code: apperror.CodeTokenNotFound, message: "Unauthorized: No token provided"},
		{name: "garbage", header: "Bearer not-a-jwt", code: auth.CodeTokenMalformed, message: "Unauthorized: Malformed token"},
		{name: "wrong key", header: "Bearer " + foreign, code: auth.CodeTokenSignatureInvalid, message: "Unauthorized: Invalid token signature"},
		{name: "expired", header: "Bearer " + expired, code: auth.CodeTokenExpired, message: "Unauthorized: Token expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := Authenticate(manager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/events", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.False(t, called)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			failure := decodeFailure(t, rec)
			require.Equal(t, tt.code, failure.Code)
			require.Equal(t, tt.message, failure.Message)
		})
	}
}

func TestAuthenticateUnknownVerifierError(t *testing.T) {
	verifier := stubVerifier{verify: func(context.Context, string) (auth.Identity, error) {
		return auth.Identity{}, errors.New("keyset unavailable")
	}}

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec := httptest.NewRecorder()
	Authenticate(verifier)(okHandler()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	failure := decodeFailure(t, rec)
	require.Equal(t, apperror.CodeTokenInvalid, failure.Code)
	require.Equal(t, "Unauthorized: Invalid token", failure.Message)
}

func TestAuthenticatePassesAppErrors(t *testing.T) {
	verifier := stubVerifier{verify: func(context.Context, string) (auth.Identity, error) {
		return auth.Identity{}, apperror.Authentication("Unauthorized: Account disabled", "ACCOUNT_DISABLED")
	}}

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec := httptest.NewRecorder()
	Authenticate(verifier)(okHandler()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "ACCOUNT_DISABLED", decodeFailure(t, rec).Code)
}
