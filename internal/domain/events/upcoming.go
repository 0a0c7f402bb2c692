package events

import (
	"sort"
	"time"
)

// UpcomingWindow is how far ahead the daily check looks.
const UpcomingWindow = 24 * time.Hour

// Upcoming returns the events whose date d satisfies now < d <= now+window,
// ordered by date. Events with unparseable dates are skipped.
func Upcoming(list []Event, now time.Time, window time.Duration) []Event {
	type dated struct {
		event Event
		at    time.Time
	}
	end := now.Add(window)
	matches := make([]dated, 0)
	for _, event := range list {
		at, err := ParseDate(event.Date)
		if err != nil {
			continue
		}
		if at.After(now) && !at.After(end) {
			matches = append(matches, dated{event: event, at: at})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].at.Before(matches[j].at) })

	out := make([]Event, len(matches))
	for i, m := range matches {
		out[i] = m.event
	}
	return out
}
