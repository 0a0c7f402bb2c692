// Package notify delivers upcoming-event notices to an event's attendees.
package notify

import (
	"context"

	"github.com/Togather-Foundation/eventplanner/internal/domain/attendees"
	"github.com/Togather-Foundation/eventplanner/internal/domain/events"
	"github.com/Togather-Foundation/eventplanner/internal/metrics"
	"github.com/rs/zerolog"
)

const (
	ChannelLog    = "log"
	ChannelResend = "resend"
)

// Notifier is told about each event starting soon together with its attendees.
type Notifier interface {
	NotifyUpcoming(ctx context.Context, event events.Event, list []attendees.Attendee) error
}

// LogNotifier only records the notice. It is the default when no mail provider is configured.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "notify").Logger()}
}

func (n *LogNotifier) NotifyUpcoming(ctx context.Context, event events.Event, list []attendees.Attendee) error {
	n.logger.Info().
		Str("event_id", event.ID).
		Str("date", event.Date).
		Int("attendees", len(list)).
		Msg("upcoming event notice")
	metrics.NotificationsSent.WithLabelValues(ChannelLog, "success").Inc()
	return nil
}
