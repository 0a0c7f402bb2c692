// Package memory provides an in-process DocumentStore used by tests and by the
// server when STORE_DRIVER=memory.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/Togather-Foundation/eventplanner/internal/domain/ids"
	"github.com/Togather-Foundation/eventplanner/internal/storage"
)

var _ storage.DocumentStore = (*Store)(nil)

type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
	newID       func() (string, error)
}

func New() *Store {
	return &Store{
		collections: make(map[string]map[string]map[string]any),
		newID:       ids.NewULID,
	}
}

func (s *Store) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id, err := s.newID()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]map[string]any)
		s.collections[collection] = docs
	}
	docs[id] = copyMap(data)
	return id, nil
}

func (s *Store) GetAll(ctx context.Context, collection string) ([]storage.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(collection, func(map[string]any) bool { return true }), nil
}

func (s *Store) GetByID(ctx context.Context, collection, id string) (storage.Document, error) {
	if err := ctx.Err(); err != nil {
		return storage.Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.collections[collection][id]
	if !ok {
		return storage.Document{}, storage.ErrNotFound
	}
	return storage.Document{ID: id, Data: copyMap(data)}, nil
}

func (s *Store) Find(ctx context.Context, collection, field string, value any) ([]storage.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(collection, func(data map[string]any) bool {
		candidate, ok := data[field]
		return ok && reflect.DeepEqual(candidate, value)
	}), nil
}

func (s *Store) Update(ctx context.Context, collection, id string, data map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.collections[collection]
	if _, ok := docs[id]; !ok {
		return storage.ErrNotFound
	}
	docs[id] = copyMap(data)
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], id)
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// collect must be called with s.mu held. Results are ordered by id, which for
// ULIDs is creation order.
func (s *Store) collect(collection string, match func(map[string]any) bool) []storage.Document {
	docs := s.collections[collection]
	out := make([]storage.Document, 0, len(docs))
	for id, data := range docs {
		if match(data) {
			out = append(out, storage.Document{ID: id, Data: copyMap(data)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func copyMap(in map[string]any) map[string]any {
	if in == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		return copyMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}
