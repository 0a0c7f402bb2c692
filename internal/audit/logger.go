// Package audit records who changed what through the API.
package audit

import (
	"time"

	"github.com/rs/zerolog"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Entry is one state-changing API call.
type Entry struct {
	Timestamp  time.Time
	Action     string            // route pattern, e.g. "DELETE /api/v1/events/{id}"
	Actor      string            // caller uid
	Role       string
	Resource   map[string]string // path parameters naming the target
	IPAddress  string
	RequestID  string
	HTTPStatus int
}

// Status classifies the entry by its response code.
func (e Entry) Status() string {
	if e.HTTPStatus >= 400 {
		return StatusFailure
	}
	return StatusSuccess
}

// Logger writes audit entries as structured log lines tagged component=audit.
type Logger struct {
	logger zerolog.Logger
	now    func() time.Time
}

func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{
		logger: logger.With().Str("component", "audit").Logger(),
		now:    time.Now,
	}
}

// Log writes entry. Failures are logged at warn level.
func (l *Logger) Log(entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now().UTC()
	}

	event := l.logger.Info()
	if entry.Status() == StatusFailure {
		event = l.logger.Warn()
	}

	resource := zerolog.Dict()
	for key, value := range entry.Resource {
		resource = resource.Str(key, value)
	}

	event.
		Time("at", entry.Timestamp).
		Str("action", entry.Action).
		Str("actor", entry.Actor).
		Str("role", entry.Role).
		Dict("resource", resource).
		Str("ip_address", entry.IPAddress).
		Str("request_id", entry.RequestID).
		Int("http_status", entry.HTTPStatus).
		Str("status", entry.Status()).
		Msg("audit")
}
