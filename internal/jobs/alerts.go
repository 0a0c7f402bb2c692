package jobs

import (
	"context"
	"fmt"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/rs/zerolog"
)

// AlertFunc is invoked when a job fails or panics.
type AlertFunc func(ctx context.Context, job *rivertype.JobRow, err error)

// AlertingErrorHandler logs job failures and forwards them for alerting.
// A failure on the last allowed attempt is logged at error level, earlier
// ones at warn since River will retry them.
type AlertingErrorHandler struct {
	Logger zerolog.Logger
	Notify AlertFunc
}

func NewAlertingErrorHandler(logger zerolog.Logger, notify AlertFunc) *AlertingErrorHandler {
	return &AlertingErrorHandler{
		Logger: logger.With().Str("component", "jobs").Logger(),
		Notify: notify,
	}
}

func (h *AlertingErrorHandler) HandleError(ctx context.Context, job *rivertype.JobRow, err error) *river.ErrorHandlerResult {
	h.event(job).Err(err).Msg("job failed")
	if h.Notify != nil {
		h.Notify(ctx, job, err)
	}
	return nil
}

func (h *AlertingErrorHandler) HandlePanic(ctx context.Context, job *rivertype.JobRow, panicVal any, trace string) *river.ErrorHandlerResult {
	panicErr := fmt.Errorf("panic: %v", panicVal)
	h.event(job).Err(panicErr).Str("trace", trace).Msg("job panicked")
	if h.Notify != nil {
		h.Notify(ctx, job, panicErr)
	}
	return nil
}

func (h *AlertingErrorHandler) event(job *rivertype.JobRow) *zerolog.Event {
	e := h.Logger.Warn()
	if job.MaxAttempts > 0 && job.Attempt >= job.MaxAttempts {
		e = h.Logger.Error().Bool("final_attempt", true)
	}
	return e.
		Int64("job_id", job.ID).
		Str("kind", job.Kind).
		Int("attempt", job.Attempt)
}
