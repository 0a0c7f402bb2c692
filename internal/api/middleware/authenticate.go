package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/Togather-Foundation/eventplanner/internal/api/envelope"
	"github.com/Togather-Foundation/eventplanner/internal/apperror"
	"github.com/Togather-Foundation/eventplanner/internal/auth"
	"github.com/rs/zerolog"
)

// Authenticate resolves the bearer token to an auth.Identity and stores it in the
// request context. Failures are reported as 401 and the request goes no further.
func Authenticate(verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := authenticate(r.Context(), verifier, r.Header.Get("Authorization"))
			if err != nil {
				envelope.WriteError(w, r, err)
				return
			}

			ctx := auth.WithIdentity(r.Context(), identity)
			logger := zerolog.Ctx(ctx).With().Str("uid", identity.UID).Logger()
			ctx = logger.WithContext(ctx)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(ctx context.Context, verifier auth.Verifier, header string) (auth.Identity, error) {
	token, err := auth.TokenFromHeader(header)
	if err != nil || token == "" {
		return auth.Identity{}, apperror.Authentication("Unauthorized: No token provided", apperror.CodeTokenNotFound)
	}

	identity, err := verifier.Verify(ctx, token)
	if err == nil {
		return identity, nil
	}

	if appErr, ok := apperror.As(err); ok {
		return auth.Identity{}, appErr
	}
	var verifyErr *auth.VerifyError
	if errors.As(err, &verifyErr) {
		return auth.Identity{}, apperror.Authentication("Unauthorized: "+verifyErr.Message, verifyErr.Code).Wrap(err)
	}
	return auth.Identity{}, apperror.Authentication("Unauthorized: Invalid token", apperror.CodeTokenInvalid).Wrap(err)
}
