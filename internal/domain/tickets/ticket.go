// Package tickets issues tickets that tie an attendee to the event they registered for.
package tickets

import (
	"time"

	"github.com/Togather-Foundation/eventplanner/internal/storage"
)

type Type string

const (
	TypeVIP     Type = "VIP"
	TypeRegular Type = "Regular"
	TypeStudent Type = "Student"
)

type Status string

const (
	StatusPurchased Status = "purchased"
	StatusReserved  Status = "reserved"
	StatusCancelled Status = "cancelled"
)

const (
	fieldEventID    = "eventId"
	fieldAttendeeID = "attendeeId"
	fieldType       = "type"
	fieldPrice      = "price"
	fieldStatus     = "status"
	fieldCreatedAt  = "createdAt"
	fieldUpdatedAt  = "updatedAt"
)

type Ticket struct {
	ID         string    `json:"id"`
	EventID    string    `json:"eventId"`
	AttendeeID string    `json:"attendeeId"`
	Type       Type      `json:"type"`
	Price      float64   `json:"price"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type CreateInput struct {
	EventID    string
	AttendeeID string
	Type       Type
	Price      float64
	Status     Status
}

// UpdateInput is a partial update; the event and attendee of a ticket never change.
type UpdateInput struct {
	Type   *Type
	Price  *float64
	Status *Status
}

// ListFilter narrows List by reference. Empty fields match everything.
type ListFilter struct {
	EventID    string
	AttendeeID string
}

func Decode(doc storage.Document) (Ticket, error) {
	var (
		ticket = Ticket{ID: doc.ID}
		err    error
		raw    string
	)
	if ticket.EventID, err = doc.String(fieldEventID); err != nil {
		return Ticket{}, err
	}
	if ticket.AttendeeID, err = doc.String(fieldAttendeeID); err != nil {
		return Ticket{}, err
	}
	if raw, err = doc.String(fieldType); err != nil {
		return Ticket{}, err
	}
	ticket.Type = Type(raw)
	if ticket.Price, err = doc.Float(fieldPrice); err != nil {
		return Ticket{}, err
	}
	if raw, err = doc.String(fieldStatus); err != nil {
		return Ticket{}, err
	}
	ticket.Status = Status(raw)
	if ticket.CreatedAt, err = doc.Time(fieldCreatedAt); err != nil {
		return Ticket{}, err
	}
	if ticket.UpdatedAt, err = doc.Time(fieldUpdatedAt); err != nil {
		return Ticket{}, err
	}
	return ticket, nil
}

func (t Ticket) document() map[string]any {
	return map[string]any{
		fieldEventID:    t.EventID,
		fieldAttendeeID: t.AttendeeID,
		fieldType:       string(t.Type),
		fieldPrice:      t.Price,
		fieldStatus:     string(t.Status),
		fieldCreatedAt:  t.CreatedAt,
		fieldUpdatedAt:  t.UpdatedAt,
	}
}
