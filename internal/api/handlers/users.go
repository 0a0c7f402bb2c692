package handlers

import (
	"net/http"

	"github.com/Togather-Foundation/eventplanner/internal/api/envelope"
	"github.com/Togather-Foundation/eventplanner/internal/apperror"
	"github.com/Togather-Foundation/eventplanner/internal/auth"
)

// Identity answers GET /users/{id}. The caller sees their own identity; an
// admin looking up someone else only learns the uid, since roles live in the
// token and not in the store.
func Identity(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFromContext(r.Context())
	id := pathParam(r, "id")

	var data auth.Identity
	switch {
	case caller.UID == id:
		data = caller
	case auth.IsAdmin(caller.Role):
		data = auth.Identity{UID: id}
	default:
		envelope.WriteError(w, r, apperror.Authorization("Forbidden: Insufficient permissions", apperror.CodeInsufficientRole))
		return
	}
	envelope.WriteSuccess(w, http.StatusOK, data, "Identity retrieved successfully")
}
