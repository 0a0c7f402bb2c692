package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Togather-Foundation/eventplanner/internal/apperror"
	"github.com/Togather-Foundation/eventplanner/internal/clock"
	"github.com/Togather-Foundation/eventplanner/internal/sanitize"
	"github.com/Togather-Foundation/eventplanner/internal/storage"
	"github.com/rs/zerolog"
)

type Service struct {
	store  storage.DocumentStore
	clock  clock.Clock
	logger zerolog.Logger
}

func NewService(store storage.DocumentStore, clk clock.Clock, logger zerolog.Logger) *Service {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &Service{
		store:  store,
		clock:  clk,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

// NotFoundError is the client-visible error for an unknown event id.
func NotFoundError(id string) *apperror.Error {
	return apperror.NotFound(fmt.Sprintf("Event with ID %s not found", id), apperror.CodeEventNotFound)
}

// requireText rejects a required field that sanitizing left empty.
func requireText(label, value string) error {
	if value == "" {
		return apperror.Validation(label + " is required")
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]Event, error) {
	docs, err := s.store.GetAll(ctx, storage.CollectionEvents)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	out := make([]Event, 0, len(docs))
	for _, doc := range docs {
		event, err := Decode(doc)
		if err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		out = append(out, event)
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Event, error) {
	doc, err := s.store.GetByID(ctx, storage.CollectionEvents, id)
	if errors.Is(err, storage.ErrNotFound) {
		return Event{}, NotFoundError(id)
	}
	if err != nil {
		return Event{}, fmt.Errorf("get event %s: %w", id, err)
	}
	event, err := Decode(doc)
	if err != nil {
		return Event{}, fmt.Errorf("get event %s: %w", id, err)
	}
	return event, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Event, error) {
	now := s.clock.Now()
	event := Event{
		Title:     sanitize.Text(in.Title),
		Date:      in.Date,
		Location:  sanitize.Text(in.Location),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Description != nil {
		event.Description = sanitize.Text(*in.Description)
	}
	if err := requireText("Title", event.Title); err != nil {
		return Event{}, err
	}
	if err := requireText("Location", event.Location); err != nil {
		return Event{}, err
	}

	id, err := s.store.Create(ctx, storage.CollectionEvents, event.document())
	if err != nil {
		return Event{}, fmt.Errorf("create event: %w", err)
	}
	event.ID = id

	s.logger.Info().Str("event_id", id).Msg("event created")
	return event, nil
}

// Update merges the non-nil fields of in into the stored event. An unknown id
// returns a not-found error without writing.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Event, error) {
	event, err := s.GetByID(ctx, id)
	if err != nil {
		return Event{}, err
	}

	if in.Title != nil {
		event.Title = sanitize.Text(*in.Title)
		if err := requireText("Title", event.Title); err != nil {
			return Event{}, err
		}
	}
	if in.Date != nil {
		event.Date = *in.Date
	}
	if in.Location != nil {
		event.Location = sanitize.Text(*in.Location)
		if err := requireText("Location", event.Location); err != nil {
			return Event{}, err
		}
	}
	if in.Description != nil {
		event.Description = sanitize.Text(*in.Description)
	}
	event.UpdatedAt = s.clock.Now()

	if err := s.store.Update(ctx, storage.CollectionEvents, id, event.document()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Event{}, NotFoundError(id)
		}
		return Event{}, fmt.Errorf("update event %s: %w", id, err)
	}

	s.logger.Info().Str("event_id", id).Msg("event updated")
	return event, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, storage.CollectionEvents, id); err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}

	s.logger.Info().Str("event_id", id).Msg("event deleted")
	return nil
}

// Upcoming lists the events starting within UpcomingWindow after now.
func (s *Service) Upcoming(ctx context.Context, now time.Time) ([]Event, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return Upcoming(all, now, UpcomingWindow), nil
}

// Exists returns a not-found error when id does not resolve.
func (s *Service) Exists(ctx context.Context, id string) error {
	_, err := s.GetByID(ctx, id)
	return err
}
