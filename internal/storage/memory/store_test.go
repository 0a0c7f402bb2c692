package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/Togather-Foundation/eventplanner/internal/storage"
	"github.com/stretchr/testify/require"
)

func TestStoreCreateAndGetByID(t *testing.T) {
	ctx := context.Background()
	store := New()

	input := map[string]any{"title": "Launch", "tags": []any{"a"}}
	id, err := store.Create(ctx, "events", input)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	input["title"] = "mutated after create"

	doc, err := store.GetByID(ctx, "events", id)
	require.NoError(t, err)
	require.Equal(t, id, doc.ID)
	require.Equal(t, "Launch", doc.Data["title"])

	doc.Data["tags"].([]any)[0] = "changed"
	again, err := store.GetByID(ctx, "events", id)
	require.NoError(t, err)
	require.Equal(t, []any{"a"}, again.Data["tags"])
}

func TestStoreGetByIDMissing(t *testing.T) {
	_, err := New().GetByID(context.Background(), "events", "nope")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStoreGetAllIsOrderedAndScoped(t *testing.T) {
	ctx := context.Background()
	store := New()

	first, err := store.Create(ctx, "events", map[string]any{"n": 1})
	require.NoError(t, err)
	second, err := store.Create(ctx, "events", map[string]any{"n": 2})
	require.NoError(t, err)
	_, err = store.Create(ctx, "tickets", map[string]any{"n": 3})
	require.NoError(t, err)

	docs, err := store.GetAll(ctx, "events")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, first, docs[0].ID)
	require.Equal(t, second, docs[1].ID)

	empty, err := store.GetAll(ctx, "attendees")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestStoreFind(t *testing.T) {
	ctx := context.Background()
	store := New()

	_, err := store.Create(ctx, "attendees", map[string]any{"eventId": "E1", "name": "Ada"})
	require.NoError(t, err)
	_, err = store.Create(ctx, "attendees", map[string]any{"eventId": "E2", "name": "Grace"})
	require.NoError(t, err)

	docs, err := store.Find(ctx, "attendees", "eventId", "E1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "Ada", docs[0].Data["name"])
}

func TestStoreUpdateReplacesWholeDocument(t *testing.T) {
	ctx := context.Background()
	store := New()

	id, err := store.Create(ctx, "tickets", map[string]any{"status": "reserved", "price": 10.0})
	require.NoError(t, err)

	require.NoError(t, store.Update(ctx, "tickets", id, map[string]any{"status": "purchased"}))

	doc, err := store.GetByID(ctx, "tickets", id)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"status": "purchased"}, doc.Data)

	require.ErrorIs(t, store.Update(ctx, "tickets", "missing", map[string]any{}), storage.ErrNotFound)
}

func TestStoreDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := New()

	id, err := store.Create(ctx, "events", map[string]any{})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "events", id))
	require.NoError(t, store.Delete(ctx, "events", id))

	_, err = store.GetByID(ctx, "events", id)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStoreHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Create(ctx, "events", map[string]any{})
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, New().Ping(ctx), context.Canceled)
}

func TestStoreConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	store := New()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := store.Create(ctx, "events", map[string]any{"n": n})
			require.NoError(t, err)
		}(i)
	}
	wg.Wait()

	docs, err := store.GetAll(ctx, "events")
	require.NoError(t, err)
	require.Len(t, docs, 32)
}
