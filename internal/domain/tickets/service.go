package tickets

import (
	"context"
	"errors"
	"fmt"

	"github.com/Togather-Foundation/eventplanner/internal/apperror"
	"github.com/Togather-Foundation/eventplanner/internal/clock"
	"github.com/Togather-Foundation/eventplanner/internal/domain/attendees"
	"github.com/Togather-Foundation/eventplanner/internal/storage"
	"github.com/rs/zerolog"
)

type EventLookup interface {
	Exists(ctx context.Context, id string) error
}

type AttendeeLookup interface {
	GetForEvent(ctx context.Context, eventID, attendeeID string) (attendees.Attendee, error)
}

type Service struct {
	store     storage.DocumentStore
	events    EventLookup
	attendees AttendeeLookup
	clock     clock.Clock
	logger    zerolog.Logger
}

func NewService(store storage.DocumentStore, events EventLookup, attendees AttendeeLookup, clk clock.Clock, logger zerolog.Logger) *Service {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &Service{
		store:     store,
		events:    events,
		attendees: attendees,
		clock:     clk,
		logger:    logger.With().Str("component", "tickets").Logger(),
	}
}

func notFound(id string) *apperror.Error {
	return apperror.NotFound(fmt.Sprintf("Ticket with ID %s not found", id), apperror.CodeTicketNotFound)
}

// Create issues a ticket after checking that the event exists and that the
// attendee is registered for that same event. The event is always checked first.
//
// The checks and the write are not atomic: an event or attendee deleted after
// its check still yields a ticket referencing it. The store has no
// multi-document transactions to close that window.
func (s *Service) Create(ctx context.Context, in CreateInput) (Ticket, error) {
	if err := s.events.Exists(ctx, in.EventID); err != nil {
		return Ticket{}, err
	}
	if _, err := s.attendees.GetForEvent(ctx, in.EventID, in.AttendeeID); err != nil {
		return Ticket{}, err
	}

	now := s.clock.Now()
	ticket := Ticket{
		EventID:    in.EventID,
		AttendeeID: in.AttendeeID,
		Type:       in.Type,
		Price:      in.Price,
		Status:     in.Status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	id, err := s.store.Create(ctx, storage.CollectionTickets, ticket.document())
	if err != nil {
		return Ticket{}, fmt.Errorf("create ticket: %w", err)
	}
	ticket.ID = id

	s.logger.Info().
		Str("ticket_id", id).
		Str("event_id", in.EventID).
		Str("attendee_id", in.AttendeeID).
		Msg("ticket created")
	return ticket, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Ticket, error) {
	var (
		docs []storage.Document
		err  error
	)
	switch {
	case filter.EventID != "":
		docs, err = s.store.Find(ctx, storage.CollectionTickets, fieldEventID, filter.EventID)
	case filter.AttendeeID != "":
		docs, err = s.store.Find(ctx, storage.CollectionTickets, fieldAttendeeID, filter.AttendeeID)
	default:
		docs, err = s.store.GetAll(ctx, storage.CollectionTickets)
	}
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}

	out := make([]Ticket, 0, len(docs))
	for _, doc := range docs {
		ticket, err := Decode(doc)
		if err != nil {
			return nil, fmt.Errorf("list tickets: %w", err)
		}
		if filter.AttendeeID != "" && ticket.AttendeeID != filter.AttendeeID {
			continue
		}
		out = append(out, ticket)
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Ticket, error) {
	doc, err := s.store.GetByID(ctx, storage.CollectionTickets, id)
	if errors.Is(err, storage.ErrNotFound) {
		return Ticket{}, notFound(id)
	}
	if err != nil {
		return Ticket{}, fmt.Errorf("get ticket %s: %w", id, err)
	}
	ticket, err := Decode(doc)
	if err != nil {
		return Ticket{}, fmt.Errorf("get ticket %s: %w", id, err)
	}
	return ticket, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Ticket, error) {
	ticket, err := s.GetByID(ctx, id)
	if err != nil {
		return Ticket{}, err
	}
	if in.Type != nil {
		ticket.Type = *in.Type
	}
	if in.Price != nil {
		ticket.Price = *in.Price
	}
	if in.Status != nil {
		ticket.Status = *in.Status
	}
	ticket.UpdatedAt = s.clock.Now()

	if err := s.store.Update(ctx, storage.CollectionTickets, id, ticket.document()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Ticket{}, notFound(id)
		}
		return Ticket{}, fmt.Errorf("update ticket %s: %w", id, err)
	}

	s.logger.Info().Str("ticket_id", id).Msg("ticket updated")
	return ticket, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, storage.CollectionTickets, id); err != nil {
		return fmt.Errorf("delete ticket %s: %w", id, err)
	}

	s.logger.Info().Str("ticket_id", id).Msg("ticket deleted")
	return nil
}
