package attendees

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Togather-Foundation/eventplanner/internal/apperror"
	"github.com/Togather-Foundation/eventplanner/internal/clock"
	"github.com/Togather-Foundation/eventplanner/internal/sanitize"
	"github.com/Togather-Foundation/eventplanner/internal/storage"
	"github.com/rs/zerolog"
)

// EventLookup resolves the parent event. *events.Service satisfies it.
type EventLookup interface {
	Exists(ctx context.Context, id string) error
}

type Service struct {
	store  storage.DocumentStore
	events EventLookup
	clock  clock.Clock
	logger zerolog.Logger
}

func NewService(store storage.DocumentStore, events EventLookup, clk clock.Clock, logger zerolog.Logger) *Service {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &Service{
		store:  store,
		events: events,
		clock:  clk,
		logger: logger.With().Str("component", "attendees").Logger(),
	}
}

func notFound(attendeeID string) *apperror.Error {
	return apperror.NotFound(fmt.Sprintf("Attendee with ID %s not found", attendeeID), apperror.CodeAttendeeNotFound)
}

func wrongEvent(eventID string) *apperror.Error {
	return apperror.NotFound(fmt.Sprintf("Attendee does not belong to event ID %s", eventID), apperror.CodeAttendeeNotFound)
}

func nameRequired() *apperror.Error {
	return apperror.Validation("Name is required")
}

// Create registers an attendee for an existing event.
func (s *Service) Create(ctx context.Context, eventID string, in CreateInput) (Attendee, error) {
	if err := s.events.Exists(ctx, eventID); err != nil {
		return Attendee{}, err
	}

	attendee := Attendee{
		EventID:      eventID,
		Name:         sanitize.Text(in.Name),
		Email:        strings.TrimSpace(in.Email),
		RegisteredAt: s.clock.Now(),
	}
	if attendee.Name == "" {
		return Attendee{}, nameRequired()
	}
	id, err := s.store.Create(ctx, storage.CollectionAttendees, attendee.document())
	if err != nil {
		return Attendee{}, fmt.Errorf("create attendee: %w", err)
	}
	attendee.ID = id

	s.logger.Info().Str("event_id", eventID).Str("attendee_id", id).Msg("attendee registered")
	return attendee, nil
}

// ListByEvent returns the event's attendees in id order. The event must exist.
func (s *Service) ListByEvent(ctx context.Context, eventID string) ([]Attendee, error) {
	if err := s.events.Exists(ctx, eventID); err != nil {
		return nil, err
	}
	docs, err := s.store.Find(ctx, storage.CollectionAttendees, fieldEventID, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendees for event %s: %w", eventID, err)
	}
	out := make([]Attendee, 0, len(docs))
	for _, doc := range docs {
		attendee, err := Decode(doc)
		if err != nil {
			return nil, fmt.Errorf("list attendees for event %s: %w", eventID, err)
		}
		out = append(out, attendee)
	}
	return out, nil
}

// GetForEvent loads an attendee and checks it belongs to eventID. A missing
// attendee and one registered for another event both yield ATTENDEE_NOT_FOUND,
// with different messages.
func (s *Service) GetForEvent(ctx context.Context, eventID, attendeeID string) (Attendee, error) {
	doc, err := s.store.GetByID(ctx, storage.CollectionAttendees, attendeeID)
	if errors.Is(err, storage.ErrNotFound) {
		return Attendee{}, notFound(attendeeID)
	}
	if err != nil {
		return Attendee{}, fmt.Errorf("get attendee %s: %w", attendeeID, err)
	}
	attendee, err := Decode(doc)
	if err != nil {
		return Attendee{}, fmt.Errorf("get attendee %s: %w", attendeeID, err)
	}
	if attendee.EventID != eventID {
		return Attendee{}, wrongEvent(eventID)
	}
	return attendee, nil
}

func (s *Service) Update(ctx context.Context, eventID, attendeeID string, in UpdateInput) (Attendee, error) {
	attendee, err := s.GetForEvent(ctx, eventID, attendeeID)
	if err != nil {
		return Attendee{}, err
	}
	if in.Name != nil {
		attendee.Name = sanitize.Text(*in.Name)
		if attendee.Name == "" {
			return Attendee{}, nameRequired()
		}
	}
	if in.Email != nil {
		attendee.Email = strings.TrimSpace(*in.Email)
	}

	if err := s.store.Update(ctx, storage.CollectionAttendees, attendeeID, attendee.document()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Attendee{}, notFound(attendeeID)
		}
		return Attendee{}, fmt.Errorf("update attendee %s: %w", attendeeID, err)
	}

	s.logger.Info().Str("event_id", eventID).Str("attendee_id", attendeeID).Msg("attendee updated")
	return attendee, nil
}

func (s *Service) Delete(ctx context.Context, eventID, attendeeID string) error {
	if _, err := s.GetForEvent(ctx, eventID, attendeeID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, storage.CollectionAttendees, attendeeID); err != nil {
		return fmt.Errorf("delete attendee %s: %w", attendeeID, err)
	}

	s.logger.Info().Str("event_id", eventID).Str("attendee_id", attendeeID).Msg("attendee removed")
	return nil
}
