// Package storagetest provides DocumentStore doubles for service and handler tests.
package storagetest

import (
	"context"
	"sync"

	"github.com/Togather-Foundation/eventplanner/internal/storage"
)

// Call records one write against the store.
type Call struct {
	Op         string
	Collection string
	ID         string
}

// Spy wraps another store, records writes, and runs optional hooks before
// delegating. A hook returning an error aborts the call with that error.
type Spy struct {
	Next storage.DocumentStore

	BeforeCreate  func(ctx context.Context, collection string, data map[string]any) error
	BeforeGetByID func(ctx context.Context, collection, id string) error
	BeforeFind    func(ctx context.Context, collection, field string, value any) error
	BeforeUpdate  func(ctx context.Context, collection, id string) error

	mu    sync.Mutex
	calls []Call
}

var _ storage.DocumentStore = (*Spy)(nil)

func NewSpy(next storage.DocumentStore) *Spy {
	return &Spy{Next: next}
}

// Writes returns the recorded create, update and delete calls in order.
func (s *Spy) Writes() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *Spy) record(op, collection, id string) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Op: op, Collection: collection, ID: id})
	s.mu.Unlock()
}

func (s *Spy) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	if s.BeforeCreate != nil {
		if err := s.BeforeCreate(ctx, collection, data); err != nil {
			return "", err
		}
	}
	id, err := s.Next.Create(ctx, collection, data)
	if err == nil {
		s.record("create", collection, id)
	}
	return id, err
}

func (s *Spy) GetAll(ctx context.Context, collection string) ([]storage.Document, error) {
	return s.Next.GetAll(ctx, collection)
}

func (s *Spy) GetByID(ctx context.Context, collection, id string) (storage.Document, error) {
	if s.BeforeGetByID != nil {
		if err := s.BeforeGetByID(ctx, collection, id); err != nil {
			return storage.Document{}, err
		}
	}
	return s.Next.GetByID(ctx, collection, id)
}

func (s *Spy) Find(ctx context.Context, collection, field string, value any) ([]storage.Document, error) {
	if s.BeforeFind != nil {
		if err := s.BeforeFind(ctx, collection, field, value); err != nil {
			return nil, err
		}
	}
	return s.Next.Find(ctx, collection, field, value)
}

func (s *Spy) Update(ctx context.Context, collection, id string, data map[string]any) error {
	if s.BeforeUpdate != nil {
		if err := s.BeforeUpdate(ctx, collection, id); err != nil {
			return err
		}
	}
	s.record("update", collection, id)
	return s.Next.Update(ctx, collection, id, data)
}

func (s *Spy) Delete(ctx context.Context, collection, id string) error {
	s.record("delete", collection, id)
	return s.Next.Delete(ctx, collection, id)
}

func (s *Spy) Ping(ctx context.Context) error {
	return s.Next.Ping(ctx)
}
