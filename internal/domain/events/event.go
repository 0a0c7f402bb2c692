// Package events holds the event entity and its service.
package events

import (
	"fmt"
	"time"

	"github.com/Togather-Foundation/eventplanner/internal/storage"
)

// Document keys.
const (
	fieldTitle       = "title"
	fieldDate        = "date"
	fieldLocation    = "location"
	fieldDescription = "description"
	fieldCreatedAt   = "createdAt"
	fieldUpdatedAt   = "updatedAt"
)

type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Date        string    `json:"date"`
	Location    string    `json:"location"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateInput carries the fields of a new event. Description is optional.
type CreateInput struct {
	Title       string
	Date        string
	Location    string
	Description *string
}

// UpdateInput is a partial update; nil fields keep their stored value.
type UpdateInput struct {
	Title       *string
	Date        *string
	Location    *string
	Description *string
}

// Decode turns a stored document into an Event.
func Decode(doc storage.Document) (Event, error) {
	var (
		event = Event{ID: doc.ID}
		err   error
	)
	if event.Title, err = doc.String(fieldTitle); err != nil {
		return Event{}, err
	}
	if event.Date, err = doc.String(fieldDate); err != nil {
		return Event{}, err
	}
	if event.Location, err = doc.String(fieldLocation); err != nil {
		return Event{}, err
	}
	if event.Description, err = doc.OptionalString(fieldDescription); err != nil {
		return Event{}, err
	}
	if event.CreatedAt, err = doc.Time(fieldCreatedAt); err != nil {
		return Event{}, err
	}
	if event.UpdatedAt, err = doc.Time(fieldUpdatedAt); err != nil {
		return Event{}, err
	}
	return event, nil
}

func (e Event) document() map[string]any {
	data := map[string]any{
		fieldTitle:     e.Title,
		fieldDate:      e.Date,
		fieldLocation:  e.Location,
		fieldCreatedAt: e.CreatedAt,
		fieldUpdatedAt: e.UpdatedAt,
	}
	if e.Description != "" {
		data[fieldDescription] = e.Description
	}
	return data
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate parses an ISO-8601 event date. Values without a zone are read as UTC.
func ParseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO-8601 date %q", value)
}
