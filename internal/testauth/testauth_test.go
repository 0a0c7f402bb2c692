package testauth

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Togather-Foundation/eventplanner/internal/auth"
	"github.com/stretchr/testify/require"
)

func TestNewTestAuthenticator_JWT(t *testing.T) {
	ta, err := NewTestAuthenticator(Config{
		Mode:    AuthModeJWT,
		Secret:  "test_secret",
		Role:    auth.RoleOrganizer,
		Subject: "organizer-1",
	})
	require.NoError(t, err)

	header := ta.GetAuthHeader()
	require.True(t, strings.HasPrefix(header, "Bearer "))

	identity, err := auth.NewJWTManager("test_secret", time.Hour, DevIssuer).
		Verify(context.Background(), strings.TrimPrefix(header, "Bearer "))
	require.NoError(t, err)
	require.Equal(t, auth.Identity{UID: "organizer-1", Role: auth.RoleOrganizer}, identity)
}

func TestNewTestAuthenticator_None(t *testing.T) {
	ta, err := NewTestAuthenticator(Config{Mode: AuthModeNone})
	require.NoError(t, err)
	require.Empty(t, ta.GetAuthHeader())

	req, _ := http.NewRequest(http.MethodGet, "http://localhost/api/v1/events", nil)
	ta.AddAuth(req)
	require.Empty(t, req.Header.Get("Authorization"))
}

func TestNewTestAuthenticator_UnknownMode(t *testing.T) {
	_, err := NewTestAuthenticator(Config{Mode: "apikey"})
	require.ErrorContains(t, err, "unknown auth mode")
}

func TestDevJWTTokenUsesEnvSecret(t *testing.T) {
	t.Setenv("DEV_JWT_SECRET", "secret-from-env")

	token, err := DevJWTToken(auth.RoleUser, "")
	require.NoError(t, err)

	identity, err := auth.NewJWTManager("secret-from-env", time.Hour, DevIssuer).Verify(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, DevSubject, identity.UID)
	require.Equal(t, auth.RoleUser, identity.Role)
}

func TestAddAuthNilRequest(t *testing.T) {
	ta, err := NewTestAuthenticator(Config{})
	require.NoError(t, err)
	ta.AddAuth(nil)
}
