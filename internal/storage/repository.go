package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a document id does not resolve in its collection.
	ErrNotFound = errors.New("document not found")

	// ErrMalformedDocument is returned when a stored document cannot be decoded into its entity.
	ErrMalformedDocument = errors.New("malformed document")
)

// Collection names shared by the domain services.
const (
	CollectionEvents    = "events"
	CollectionAttendees = "attendees"
	CollectionTickets   = "tickets"
)

// DocumentStore is the generic document collection adapter the domain services run on.
//
// Documents are JSON-compatible maps keyed by store-assigned ids. Update replaces the
// whole document and fails with ErrNotFound when the id is absent; Delete of an absent
// id is a no-op, so callers that need a "not found" signal must read first.
type DocumentStore interface {
	Create(ctx context.Context, collection string, data map[string]any) (string, error)
	GetAll(ctx context.Context, collection string) ([]Document, error)
	GetByID(ctx context.Context, collection, id string) (Document, error)
	Find(ctx context.Context, collection, field string, value any) ([]Document, error)
	Update(ctx context.Context, collection, id string, data map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	Ping(ctx context.Context) error
}
