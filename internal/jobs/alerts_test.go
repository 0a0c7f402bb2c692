package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/riverqueue/river/rivertype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func decodeLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	buf.Reset()
	return entry
}

func TestAlertingErrorHandlerHandleError(t *testing.T) {
	var buf bytes.Buffer
	var alerted []error
	h := NewAlertingErrorHandler(zerolog.New(&buf), func(ctx context.Context, job *rivertype.JobRow, err error) {
		alerted = append(alerted, err)
	})

	job := &rivertype.JobRow{ID: 7, Kind: JobKindUpcomingEvents, Attempt: 1, MaxAttempts: 3}
	require.Nil(t, h.HandleError(context.Background(), job, errors.New("store down")))

	entry := decodeLogLine(t, &buf)
	require.Equal(t, "warn", entry["level"])
	require.Equal(t, "job failed", entry["message"])
	require.Equal(t, "store down", entry["error"])
	require.EqualValues(t, 7, entry["job_id"])
	require.Equal(t, "jobs", entry["component"])

	job.Attempt = 3
	h.HandleError(context.Background(), job, errors.New("store down"))
	entry = decodeLogLine(t, &buf)
	require.Equal(t, "error", entry["level"])
	require.Equal(t, true, entry["final_attempt"])

	require.Len(t, alerted, 2)
}

func TestAlertingErrorHandlerHandlePanic(t *testing.T) {
	var buf bytes.Buffer
	var alerted error
	h := NewAlertingErrorHandler(zerolog.New(&buf), func(ctx context.Context, job *rivertype.JobRow, err error) {
		alerted = err
	})

	job := &rivertype.JobRow{ID: 9, Kind: JobKindUpcomingEvents, Attempt: 1, MaxAttempts: 1}
	require.Nil(t, h.HandlePanic(context.Background(), job, "boom", "goroutine 1"))

	entry := decodeLogLine(t, &buf)
	require.Equal(t, "job panicked", entry["message"])
	require.Equal(t, "panic: boom", entry["error"])
	require.Equal(t, "goroutine 1", entry["trace"])
	require.EqualError(t, alerted, "panic: boom")
}

func TestAlertingErrorHandlerWithoutNotify(t *testing.T) {
	h := NewAlertingErrorHandler(zerolog.Nop(), nil)
	job := &rivertype.JobRow{Kind: JobKindUpcomingEvents}
	require.Nil(t, h.HandleError(context.Background(), job, errors.New("x")))
	require.Nil(t, h.HandlePanic(context.Background(), job, "x", ""))
}
