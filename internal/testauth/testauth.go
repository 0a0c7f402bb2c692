// Package testauth mints bearer tokens for tests, load runs and local
// development. It must never be wired into the production request path.
//
// Tokens are signed with the well-known development secret unless one is
// given, so they are only accepted by a server running with that secret.
package testauth

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Togather-Foundation/eventplanner/internal/auth"
)

// AuthMode determines how to authenticate requests.
type AuthMode string

const (
	// AuthModeJWT signs a JWT with the configured secret
	AuthModeJWT AuthMode = "jwt"
	// AuthModeNone sends no credentials
	AuthModeNone AuthMode = "none"
)

const (
	// DevJWTSecret matches the JWT_SECRET in .env.example.
	DevJWTSecret = "dev_jwt_secret_change_me_in_production"
	DevIssuer    = "eventplanner"
	DevSubject   = "test-user"
)

// TestAuthenticator adds authentication to outgoing HTTP requests.
type TestAuthenticator struct {
	mode  AuthMode
	token string
}

// Config configures the test authenticator.
type Config struct {
	Mode AuthMode

	// Secret defaults to DEV_JWT_SECRET, then DevJWTSecret.
	Secret string
	// Issuer defaults to DevIssuer.
	Issuer  string
	Role    auth.Role
	Subject string
	// Expiry defaults to 24h. A negative value mints an already expired token.
	Expiry time.Duration
}

// NewTestAuthenticator creates a new test authenticator with the given config.
func NewTestAuthenticator(cfg Config) (*TestAuthenticator, error) {
	if cfg.Mode == "" {
		cfg.Mode = AuthModeJWT
	}

	switch cfg.Mode {
	case AuthModeJWT:
		token, err := Token(cfg)
		if err != nil {
			return nil, err
		}
		return &TestAuthenticator{mode: cfg.Mode, token: token}, nil
	case AuthModeNone:
		return &TestAuthenticator{mode: cfg.Mode}, nil
	default:
		return nil, fmt.Errorf("unknown auth mode: %s", cfg.Mode)
	}
}

// Token signs a JWT for cfg, applying the same defaults as NewTestAuthenticator.
func Token(cfg Config) (string, error) {
	secret := cfg.Secret
	if secret == "" {
		secret = os.Getenv("DEV_JWT_SECRET")
	}
	if secret == "" {
		secret = DevJWTSecret
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = DevIssuer
	}
	role := cfg.Role
	if role == "" {
		role = auth.RoleAdmin
	}
	subject := cfg.Subject
	if subject == "" {
		subject = DevSubject
	}
	expiry := cfg.Expiry
	if expiry == 0 {
		expiry = 24 * time.Hour
	}

	token, err := auth.NewJWTManager(secret, expiry, issuer).Generate(subject, role)
	if err != nil {
		return "", fmt.Errorf("failed to generate JWT: %w", err)
	}
	return token, nil
}

// AddAuth adds authentication headers to an HTTP request.
func (ta *TestAuthenticator) AddAuth(req *http.Request) {
	if req == nil {
		return
	}
	if header := ta.GetAuthHeader(); header != "" {
		req.Header.Set("Authorization", header)
	}
}

// GetAuthHeader returns the Authorization header value without modifying the request.
func (ta *TestAuthenticator) GetAuthHeader() string {
	if ta.mode != AuthModeJWT {
		return ""
	}
	return "Bearer " + ta.token
}

// DevJWTToken generates a development token for ad-hoc testing.
func DevJWTToken(role auth.Role, subject string) (string, error) {
	return Token(Config{Role: role, Subject: subject})
}
