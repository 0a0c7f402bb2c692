package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/Togather-Foundation/eventplanner/internal/clock"
	"github.com/Togather-Foundation/eventplanner/internal/metrics"
	"github.com/riverqueue/river"
	"github.com/rs/zerolog"
)

// DailyAt is a River periodic schedule firing once a day at Hour:Minute UTC.
type DailyAt struct {
	Hour   int
	Minute int
}

var _ river.PeriodicSchedule = DailyAt{}

// Next returns the first Hour:Minute strictly after current.
func (d DailyAt) Next(current time.Time) time.Time {
	current = current.UTC()
	next := time.Date(current.Year(), current.Month(), current.Day(), d.Hour, d.Minute, 0, 0, time.UTC)
	if !next.After(current) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// ScheduledJob is work RunDaily can drive without a job queue.
type ScheduledJob interface {
	Kind() string
	Run(ctx context.Context) error
}

// RunDaily runs job at every instant produced by schedule until ctx is done.
// It replaces the River periodic job when no Postgres database is available.
// Failed runs are logged and counted; the loop keeps going.
func RunDaily(ctx context.Context, schedule river.PeriodicSchedule, clk clock.Clock, logger zerolog.Logger, job ScheduledJob) error {
	return runScheduled(ctx, schedule, clk, logger, job, sleep)
}

type waitFunc func(ctx context.Context, d time.Duration) error

func runScheduled(ctx context.Context, schedule river.PeriodicSchedule, clk clock.Clock, logger zerolog.Logger, job ScheduledJob, wait waitFunc) error {
	logger = logger.With().Str("component", "jobs").Str("kind", job.Kind()).Logger()
	for {
		next := schedule.Next(clk.Now())
		logger.Debug().Time("next_run", next).Msg("scheduled job waiting")

		if err := wait(ctx, next.Sub(clk.Now())); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		err := job.Run(ctx)
		metrics.RecordJobResult(job.Kind(), err)
		if err != nil {
			logger.Error().Err(err).Msg("scheduled job failed")
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
