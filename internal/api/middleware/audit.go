package middleware

import (
	"net"
	"net/http"

	"github.com/Togather-Foundation/eventplanner/internal/audit"
	"github.com/Togather-Foundation/eventplanner/internal/auth"
)

// Audit records each state-changing request (anything but GET, HEAD and OPTIONS)
// with the caller, the path parameters named in params and the response status.
// It must run after Authenticate so the identity is known.
func Audit(logger *audit.Logger, params ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			rw := &responseWriter{ResponseWriter: w}
			next.ServeHTTP(rw, r)

			status := rw.status
			if status == 0 {
				status = http.StatusOK
			}
			identity, _ := auth.IdentityFromContext(r.Context())

			resource := make(map[string]string, len(params))
			for _, name := range params {
				if value := PathValue(r, name); value != "" {
					resource[name] = value
				}
			}

			action := r.Pattern
			if action == "" {
				action = r.Method + " " + r.URL.Path
			}

			logger.Log(audit.Entry{
				Action:     action,
				Actor:      identity.UID,
				Role:       string(identity.Role),
				Resource:   resource,
				IPAddress:  remoteIP(r.RemoteAddr),
				RequestID:  GetRequestID(r.Context()),
				HTTPStatus: status,
			})
		})
	}
}

func remoteIP(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
