package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/Togather-Foundation/eventplanner/internal/clock"
	"github.com/Togather-Foundation/eventplanner/internal/domain/attendees"
	"github.com/Togather-Foundation/eventplanner/internal/domain/events"
	"github.com/Togather-Foundation/eventplanner/internal/metrics"
	"github.com/Togather-Foundation/eventplanner/internal/notify"
	"github.com/riverqueue/river"
	"github.com/rs/zerolog"
)

// UpcomingEventsTimeout bounds a single run of the check.
const UpcomingEventsTimeout = 5 * time.Minute

// UpcomingEventsArgs enqueues one upcoming-events check.
type UpcomingEventsArgs struct{}

func (UpcomingEventsArgs) Kind() string { return JobKindUpcomingEvents }

// EventSource lists events starting within the upcoming window after now.
type EventSource interface {
	Upcoming(ctx context.Context, now time.Time) ([]events.Event, error)
}

// AttendeeSource lists the attendees of one event.
type AttendeeSource interface {
	ListByEvent(ctx context.Context, eventID string) ([]attendees.Attendee, error)
}

// UpcomingEventsCheck reports events starting in the next 24 hours and hands each
// one, with its attendees, to the Notifier. Attendees and Notifier are optional.
type UpcomingEventsCheck struct {
	Events    EventSource
	Attendees AttendeeSource
	Notifier  notify.Notifier
	Clock     clock.Clock
	Logger    zerolog.Logger
}

func (c *UpcomingEventsCheck) Kind() string { return JobKindUpcomingEvents }

// Run performs one check. Every attendee list is read before the first
// notification goes out, so a listing error fails the run with nothing sent.
// Notification failures are logged and counted but do not fail the run: a retry
// would remind again every attendee that was already notified.
func (c *UpcomingEventsCheck) Run(ctx context.Context) error {
	if c.Events == nil {
		return fmt.Errorf("upcoming events check: event source not configured")
	}
	clk := c.Clock
	if clk == nil {
		clk = clock.NewSystem()
	}

	c.Logger.Info().Msg("Running upcoming event check...")
	upcoming, err := c.Events.Upcoming(ctx, clk.Now())
	if err != nil {
		return fmt.Errorf("list upcoming events: %w", err)
	}
	metrics.UpcomingEventsFound.Set(float64(len(upcoming)))

	if len(upcoming) == 0 {
		c.Logger.Info().Msg("No events in the next 24 hours.")
		return nil
	}

	recipients, err := c.recipients(ctx, upcoming)
	if err != nil {
		return err
	}

	for i, event := range upcoming {
		c.Logger.Info().Str("event_id", event.ID).Msgf("Event happening soon: %s on %s", event.Title, event.Date)
		if c.Notifier == nil {
			continue
		}
		if err := c.Notifier.NotifyUpcoming(ctx, event, recipients[i]); err != nil {
			metrics.UpcomingNotifyFailures.Inc()
			c.Logger.Error().Err(err).Str("event_id", event.ID).Msg("notify attendees failed")
		}
	}
	return nil
}

// recipients returns the attendee list of each event, index-aligned with list.
func (c *UpcomingEventsCheck) recipients(ctx context.Context, list []events.Event) ([][]attendees.Attendee, error) {
	out := make([][]attendees.Attendee, len(list))
	if c.Notifier == nil || c.Attendees == nil {
		return out, nil
	}
	for i, event := range list {
		found, err := c.Attendees.ListByEvent(ctx, event.ID)
		if err != nil {
			return nil, fmt.Errorf("list attendees of %s: %w", event.ID, err)
		}
		out[i] = found
	}
	return out, nil
}

// UpcomingEventsWorker runs the check as a River job.
type UpcomingEventsWorker struct {
	river.WorkerDefaults[UpcomingEventsArgs]
	Check *UpcomingEventsCheck
}

func (UpcomingEventsWorker) Kind() string { return JobKindUpcomingEvents }

func (w *UpcomingEventsWorker) Timeout(*river.Job[UpcomingEventsArgs]) time.Duration {
	return UpcomingEventsTimeout
}

func (w *UpcomingEventsWorker) Work(ctx context.Context, job *river.Job[UpcomingEventsArgs]) error {
	if job == nil {
		return fmt.Errorf("upcoming events job missing")
	}
	if w.Check == nil {
		return fmt.Errorf("upcoming events check not configured")
	}
	return w.Check.Run(ctx)
}
