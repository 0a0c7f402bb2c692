package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSystemClockIsUTC(t *testing.T) {
	now := NewSystem().Now()
	require.Equal(t, time.UTC, now.Location())
	require.WithinDuration(t, time.Now(), now, time.Second)
}

func TestManualClockAdvance(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	c := NewManual(start)

	require.True(t, start.Equal(c.Now()))
	require.Equal(t, time.UTC, c.Now().Location())

	next := c.Advance(90 * time.Minute)
	require.True(t, start.Add(90*time.Minute).Equal(next))
	require.Equal(t, next, c.Now())
}
