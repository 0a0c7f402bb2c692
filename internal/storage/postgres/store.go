package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Togather-Foundation/eventplanner/internal/domain/ids"
	"github.com/Togather-Foundation/eventplanner/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ storage.DocumentStore = (*Store)(nil)

// Store keeps every collection in a single jsonb table keyed by (collection, id).
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres store: pool is nil")
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	payload, err := encode(data)
	if err != nil {
		return "", err
	}
	id, err := ids.NewULID()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}

	const query = `INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)`
	if _, err := s.pool.Exec(ctx, query, collection, id, payload); err != nil {
		return "", fmt.Errorf("insert %s document: %w", collection, err)
	}
	return id, nil
}

func (s *Store) GetAll(ctx context.Context, collection string) ([]storage.Document, error) {
	const query = `SELECT id, data FROM documents WHERE collection = $1 ORDER BY id`
	rows, err := s.pool.Query(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s documents: %w", collection, err)
	}
	return scanDocuments(rows)
}

func (s *Store) GetByID(ctx context.Context, collection, id string) (storage.Document, error) {
	const query = `SELECT id, data FROM documents WHERE collection = $1 AND id = $2`
	var (
		docID string
		raw   []byte
	)
	if err := s.pool.QueryRow(ctx, query, collection, id).Scan(&docID, &raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.Document{}, storage.ErrNotFound
		}
		return storage.Document{}, fmt.Errorf("get %s document: %w", collection, err)
	}
	return decode(docID, raw)
}

func (s *Store) Find(ctx context.Context, collection, field string, value any) ([]storage.Document, error) {
	filter, err := encode(map[string]any{field: value})
	if err != nil {
		return nil, err
	}
	const query = `SELECT id, data FROM documents WHERE collection = $1 AND data @> $2::jsonb ORDER BY id`
	rows, err := s.pool.Query(ctx, query, collection, filter)
	if err != nil {
		return nil, fmt.Errorf("find %s documents: %w", collection, err)
	}
	return scanDocuments(rows)
}

func (s *Store) Update(ctx context.Context, collection, id string, data map[string]any) error {
	payload, err := encode(data)
	if err != nil {
		return err
	}
	const query = `UPDATE documents SET data = $3::jsonb, updated_at = now() WHERE collection = $1 AND id = $2`
	tag, err := s.pool.Exec(ctx, query, collection, id, payload)
	if err != nil {
		return fmt.Errorf("update %s document: %w", collection, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	const query = `DELETE FROM documents WHERE collection = $1 AND id = $2`
	if _, err := s.pool.Exec(ctx, query, collection, id); err != nil {
		return fmt.Errorf("delete %s document: %w", collection, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func scanDocuments(rows pgx.Rows) ([]storage.Document, error) {
	defer rows.Close()
	docs := make([]storage.Document, 0)
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc, err := decode(id, raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func encode(data map[string]any) ([]byte, error) {
	if data == nil {
		data = map[string]any{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return payload, nil
}

func decode(id string, raw []byte) (storage.Document, error) {
	data := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return storage.Document{}, fmt.Errorf("%w: %s: %v", storage.ErrMalformedDocument, id, err)
		}
	}
	return storage.Document{ID: id, Data: data}, nil
}
