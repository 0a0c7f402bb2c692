package middleware

import (
	"net/http"
	"slices"

	"github.com/Togather-Foundation/eventplanner/internal/api/envelope"
	"github.com/Togather-Foundation/eventplanner/internal/apperror"
	"github.com/Togather-Foundation/eventplanner/internal/auth"
)

type AuthorizeOptions struct {
	HasRole []auth.Role
	// AllowSameUser admits a caller whose uid equals the {id} path value,
	// regardless of role.
	AllowSameUser bool
}

// Authorize guards a route by role. Options are copied, so the guard can be
// shared across routes and goroutines.
func Authorize(opts AuthorizeOptions) func(http.Handler) http.Handler {
	opts.HasRole = slices.Clone(opts.HasRole)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, _ := auth.IdentityFromContext(r.Context())
			if err := CheckAccess(identity, PathValue(r, "id"), opts); err != nil {
				envelope.WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CheckAccess evaluates, in order: same user, missing role, allowed role.
func CheckAccess(identity auth.Identity, pathID string, opts AuthorizeOptions) error {
	if opts.AllowSameUser && pathID != "" && identity.UID == pathID {
		return nil
	}
	if identity.Role == "" {
		return apperror.Authorization("Forbidden: No role found", apperror.CodeRoleNotFound)
	}
	if auth.HasRole(identity.Role, opts.HasRole...) {
		return nil
	}
	return apperror.Authorization("Forbidden: Insufficient permissions", apperror.CodeInsufficientRole)
}
