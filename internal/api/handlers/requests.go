package handlers

import (
	"strings"

	"github.com/Togather-Foundation/eventplanner/internal/domain/attendees"
	"github.com/Togather-Foundation/eventplanner/internal/domain/events"
	"github.com/Togather-Foundation/eventplanner/internal/domain/tickets"
	"github.com/Togather-Foundation/eventplanner/internal/sanitize"
	"github.com/go-playground/validator/v10"
)

// RegisterValidations adds the custom tags used by the request types below.
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := events.ParseDate(fl.Field().String())
		return err == nil
	})
}

func sanitizeOptional(value *string) {
	if value != nil {
		*value = sanitize.Text(*value)
	}
}

type EventCreateRequest struct {
	Title       string  `json:"title" validate:"required,min=3,max=100" label:"Title"`
	Date        string  `json:"date" validate:"required,isodate" label:"Date"`
	Location    string  `json:"location" validate:"required,min=3,max=200" label:"Location"`
	Description *string `json:"description" validate:"omitnil,max=500" label:"Description"`
}

func (r *EventCreateRequest) Normalize() {
	r.Title = sanitize.Text(r.Title)
	r.Location = sanitize.Text(r.Location)
	sanitizeOptional(r.Description)
}

func (r EventCreateRequest) input() events.CreateInput {
	return events.CreateInput{
		Title:       r.Title,
		Date:        r.Date,
		Location:    r.Location,
		Description: r.Description,
	}
}

type EventUpdateRequest struct {
	Title       *string `json:"title" validate:"omitnil,min=3,max=100" label:"Title"`
	Date        *string `json:"date" validate:"omitnil,isodate" label:"Date"`
	Location    *string `json:"location" validate:"omitnil,min=3,max=200" label:"Location"`
	Description *string `json:"description" validate:"omitnil,max=500" label:"Description"`
}

func (r *EventUpdateRequest) Normalize() {
	sanitizeOptional(r.Title)
	sanitizeOptional(r.Location)
	sanitizeOptional(r.Description)
}

func (r EventUpdateRequest) input() events.UpdateInput {
	return events.UpdateInput{
		Title:       r.Title,
		Date:        r.Date,
		Location:    r.Location,
		Description: r.Description,
	}
}

type AttendeeCreateRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=100" label:"Name"`
	Email string `json:"email" validate:"required,email" label:"Email"`
}

func (r *AttendeeCreateRequest) Normalize() {
	r.Name = sanitize.Text(r.Name)
	r.Email = strings.TrimSpace(r.Email)
}

func (r AttendeeCreateRequest) input() attendees.CreateInput {
	return attendees.CreateInput{Name: r.Name, Email: r.Email}
}

type AttendeeUpdateRequest struct {
	Name  *string `json:"name" validate:"omitnil,min=2,max=100" label:"Name"`
	Email *string `json:"email" validate:"omitnil,email" label:"Email"`
}

func (r *AttendeeUpdateRequest) Normalize() {
	sanitizeOptional(r.Name)
	if r.Email != nil {
		*r.Email = strings.TrimSpace(*r.Email)
	}
}

func (r AttendeeUpdateRequest) input() attendees.UpdateInput {
	return attendees.UpdateInput{Name: r.Name, Email: r.Email}
}

type TicketCreateRequest struct {
	EventID    string   `json:"eventId" validate:"required" label:"eventId"`
	AttendeeID string   `json:"attendeeId" validate:"required" label:"attendeeId"`
	Type       string   `json:"type" validate:"required,oneof=VIP Regular Student" label:"Ticket type"`
	Price      *float64 `json:"price" validate:"required,min=0" label:"Price"`
	Status     string   `json:"status" validate:"required,oneof=purchased reserved cancelled" label:"Status"`
}

func (r TicketCreateRequest) input() tickets.CreateInput {
	in := tickets.CreateInput{
		EventID:    r.EventID,
		AttendeeID: r.AttendeeID,
		Type:       tickets.Type(r.Type),
		Status:     tickets.Status(r.Status),
	}
	if r.Price != nil {
		in.Price = *r.Price
	}
	return in
}

type TicketUpdateRequest struct {
	Type   *string  `json:"type" validate:"omitnil,oneof=VIP Regular Student" label:"Ticket type"`
	Price  *float64 `json:"price" validate:"omitnil,min=0" label:"Price"`
	Status *string  `json:"status" validate:"omitnil,oneof=purchased reserved cancelled" label:"Status"`
}

func (r TicketUpdateRequest) input() tickets.UpdateInput {
	var in tickets.UpdateInput
	if r.Type != nil {
		t := tickets.Type(*r.Type)
		in.Type = &t
	}
	in.Price = r.Price
	if r.Status != nil {
		s := tickets.Status(*r.Status)
		in.Status = &s
	}
	return in
}
