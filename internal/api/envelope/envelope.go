// Package envelope writes the uniform JSON response bodies and is the single
// terminal handler for request errors.
package envelope

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Togather-Foundation/eventplanner/internal/apperror"
	"github.com/rs/zerolog"
)

const (
	contentType   = "application/json"
	statusSuccess = "success"
	statusError   = "error"
)

type Success struct {
	Status  string `json:"status"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

type Failure struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

var internalFailure = Failure{
	Status:  statusError,
	Message: "Internal Server Error",
	Code:    apperror.CodeInternal,
}

// WriteSuccess writes {status:"success", data, message}.
func WriteSuccess(w http.ResponseWriter, status int, data any, message string) {
	write(w, status, Success{Status: statusSuccess, Data: data, Message: message})
}

// WriteError maps err onto the error envelope. An *apperror.Error anywhere in
// the chain is reported with its status, message and code. Anything else is
// logged and reported as a generic 500 so internals never reach the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	logger := zerolog.Ctx(r.Context())

	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		logger.Error().
			Err(err).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg("unhandled error")
		write(w, http.StatusInternalServerError, internalFailure)
		return
	}

	event := logger.Warn()
	if appErr.Status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.
		Err(err).
		Int("status", appErr.Status).
		Str("code", appErr.Code).
		Str("path", r.URL.Path).
		Str("method", r.Method).
		Msg(appErr.Message)

	write(w, appErr.Status, Failure{Status: statusError, Message: appErr.Message, Code: appErr.Code})
}

// NotFound is the fallback for unmatched routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, apperror.NotFound("Route "+r.Method+" "+r.URL.Path+" not found", apperror.CodeRouteNotFound))
}

func write(w http.ResponseWriter, status int, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		payload, _ = json.Marshal(internalFailure)
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
