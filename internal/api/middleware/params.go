package middleware

import (
	"net/http"
	"strings"
)

// PathValue returns the named path wildcard with surrounding whitespace removed.
// Guards and handlers read ids through it so they agree on the value.
func PathValue(r *http.Request, name string) string {
	return strings.TrimSpace(r.PathValue(name))
}
