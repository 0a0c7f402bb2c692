// Package handlers holds the HTTP controllers. Request bodies arrive already
// decoded and validated by middleware.Validate; handlers map them onto the
// domain services and write the response envelope.
package handlers

import (
	"net/http"

	"github.com/Togather-Foundation/eventplanner/internal/api/envelope"
	"github.com/Togather-Foundation/eventplanner/internal/api/middleware"
	"github.com/Togather-Foundation/eventplanner/internal/apperror"
)

// emptyData is the payload of delete responses.
var emptyData = struct{}{}

func pathParam(r *http.Request, name string) string {
	return middleware.PathValue(r, name)
}

// body returns the validated request value, or a 500 when the route was
// registered without the matching Validate middleware.
func body[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	value, ok := middleware.Body[T](r)
	if !ok {
		envelope.WriteError(w, r, apperror.New(http.StatusInternalServerError, "Internal Server Error", apperror.CodeInternal))
	}
	return value, ok
}
