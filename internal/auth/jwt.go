package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier checks a bearer credential and resolves the caller.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// Verification failure codes surfaced to clients.
const (
	CodeTokenExpired          = "TOKEN_EXPIRED"
	CodeTokenMalformed        = "TOKEN_MALFORMED"
	CodeTokenSignatureInvalid = "TOKEN_SIGNATURE_INVALID"
	CodeTokenClaimsInvalid    = "TOKEN_CLAIMS_INVALID"
	CodeTokenInvalid          = "TOKEN_INVALID"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// VerifyError is a recognized credential failure with a client-facing code.
type VerifyError struct {
	Code    string
	Message string
	Err     error
}

func (e *VerifyError) Error() string { return e.Message }

func (e *VerifyError) Unwrap() error { return e.Err }

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	secret []byte
	expiry time.Duration
	issuer string
	now    func() time.Time
}

var _ Verifier = (*JWTManager)(nil)

func NewJWTManager(secret string, expiry time.Duration, issuer string) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		expiry: expiry,
		issuer: issuer,
		now:    time.Now,
	}
}

// WithNow returns a copy of m that reads time from now. Used by tests.
func (m *JWTManager) WithNow(now func() time.Time) *JWTManager {
	clone := *m
	clone.now = now
	return &clone
}

func (m *JWTManager) Generate(subject string, role Role) (string, error) {
	if subject == "" || role == "" {
		return "", ErrInvalidToken
	}

	now := m.now()
	claims := &Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *JWTManager) Validate(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, &VerifyError{Code: CodeTokenInvalid, Message: "Invalid token", Err: ErrInvalidToken}
	}
	return claims, nil
}

// Verify implements Verifier. Tokens must carry a subject and a known role.
func (m *JWTManager) Verify(ctx context.Context, token string) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}
	claims, err := m.Validate(token)
	if err != nil {
		return Identity{}, err
	}
	if claims.Subject == "" {
		return Identity{}, &VerifyError{Code: CodeTokenClaimsInvalid, Message: "Token has no subject", Err: ErrInvalidToken}
	}
	role, ok := ParseRole(claims.Role)
	if !ok {
		return Identity{}, &VerifyError{Code: CodeTokenClaimsInvalid, Message: "Token role is not recognized", Err: ErrInvalidToken}
	}
	return Identity{UID: claims.Subject, Role: role}, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return &VerifyError{Code: CodeTokenExpired, Message: "Token expired", Err: err}
	case errors.Is(err, jwt.ErrTokenMalformed):
		return &VerifyError{Code: CodeTokenMalformed, Message: "Malformed token", Err: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return &VerifyError{Code: CodeTokenSignatureInvalid, Message: "Invalid token signature", Err: err}
	case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenInvalidClaims),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing), errors.Is(err, jwt.ErrTokenNotValidYet),
		errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return &VerifyError{Code: CodeTokenClaimsInvalid, Message: "Invalid token claims", Err: err}
	default:
		return &VerifyError{Code: CodeTokenInvalid, Message: "Invalid token", Err: err}
	}
}

func TokenFromHeader(authHeader string) (string, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(parts[1]), nil
}
