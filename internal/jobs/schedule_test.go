package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Togather-Foundation/eventplanner/internal/clock"
	"github.com/Togather-Foundation/eventplanner/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestDailyAtNext(t *testing.T) {
	midnight := DailyAt{}

	tests := []struct {
		name     string
		schedule DailyAt
		current  time.Time
		want     time.Time
	}{
		{
			name:     "later the same day rolls to next midnight",
			schedule: midnight,
			current:  time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC),
			want:     time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "exactly at the slot moves a full day",
			schedule: midnight,
			current:  time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC),
			want:     time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "before the slot fires the same day",
			schedule: DailyAt{Hour: 6, Minute: 15},
			current:  time.Date(2026, 5, 1, 6, 14, 59, 0, time.UTC),
			want:     time.Date(2026, 5, 1, 6, 15, 0, 0, time.UTC),
		},
		{
			name:     "month boundary",
			schedule: midnight,
			current:  time.Date(2026, 5, 31, 23, 59, 0, 0, time.UTC),
			want:     time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "non-UTC input is computed in UTC",
			schedule: midnight,
			current:  time.Date(2026, 5, 1, 22, 0, 0, 0, time.FixedZone("EST", -5*3600)),
			want:     time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.schedule.Next(tt.current))
		})
	}
}

type stubJob struct {
	kind string
	run  func(ctx context.Context) error
}

func (s stubJob) Kind() string                  { return s.kind }
func (s stubJob) Run(ctx context.Context) error { return s.run(ctx) }

func TestRunScheduledRunsAtEachSlot(t *testing.T) {
	clk := clock.NewManual(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var waits []time.Duration
	wait := func(ctx context.Context, d time.Duration) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		waits = append(waits, d)
		clk.Advance(d)
		return nil
	}

	var runs []time.Time
	job := stubJob{kind: "test_scheduled", run: func(ctx context.Context) error {
		runs = append(runs, clk.Now())
		if len(runs) == 2 {
			cancel()
			return errors.New("second run fails")
		}
		return nil
	}}

	beforeOK := testutil.ToFloat64(metrics.JobsCompleted.WithLabelValues("test_scheduled", "success"))
	beforeErr := testutil.ToFloat64(metrics.JobsCompleted.WithLabelValues("test_scheduled", "error"))

	err := runScheduled(ctx, DailyAt{}, clk, zerolog.Nop(), job, wait)
	require.NoError(t, err)

	require.Equal(t, []time.Duration{15 * time.Hour, 24 * time.Hour}, waits)
	require.Equal(t, []time.Time{
		time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC),
	}, runs)
	require.Equal(t, beforeOK+1, testutil.ToFloat64(metrics.JobsCompleted.WithLabelValues("test_scheduled", "success")))
	require.Equal(t, beforeErr+1, testutil.ToFloat64(metrics.JobsCompleted.WithLabelValues("test_scheduled", "error")))
}

func TestRunDailyStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	job := stubJob{kind: "test_cancel", run: func(context.Context) error {
		t.Error("job should not run before its slot")
		return nil
	}}
	go func() {
		done <- RunDaily(ctx, DailyAt{}, clock.NewSystem(), zerolog.Nop(), job)
	}()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("RunDaily did not return after cancel")
	}
}

func TestSleepHonorsContext(t *testing.T) {
	require.NoError(t, sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)
	require.ErrorIs(t, sleep(ctx, 0), context.Canceled)
}
