// Package attendees manages event registrations. Every attendee belongs to
// exactly one event and is only reachable through that event.
package attendees

import (
	"time"

	"github.com/Togather-Foundation/eventplanner/internal/storage"
)

const (
	fieldEventID      = "eventId"
	fieldName         = "name"
	fieldEmail        = "email"
	fieldRegisteredAt = "registeredAt"
)

type Attendee struct {
	ID           string    `json:"id"`
	EventID      string    `json:"eventId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registeredAt"`
}

type CreateInput struct {
	Name  string
	Email string
}

// UpdateInput is a partial update; nil fields keep their stored value.
type UpdateInput struct {
	Name  *string
	Email *string
}

func Decode(doc storage.Document) (Attendee, error) {
	var (
		attendee = Attendee{ID: doc.ID}
		err      error
	)
	if attendee.EventID, err = doc.String(fieldEventID); err != nil {
		return Attendee{}, err
	}
	if attendee.Name, err = doc.String(fieldName); err != nil {
		return Attendee{}, err
	}
	if attendee.Email, err = doc.String(fieldEmail); err != nil {
		return Attendee{}, err
	}
	if attendee.RegisteredAt, err = doc.Time(fieldRegisteredAt); err != nil {
		return Attendee{}, err
	}
	return attendee, nil
}

func (a Attendee) document() map[string]any {
	return map[string]any{
		fieldEventID:      a.EventID,
		fieldName:         a.Name,
		fieldEmail:        a.Email,
		fieldRegisteredAt: a.RegisteredAt,
	}
}
