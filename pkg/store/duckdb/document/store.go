package document

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Store is the local persistence adapter for named JSON values (branding,
// template, cached session token). Load returns the provided default when no
// value has ever been saved under the name.
type Store interface {
	Load(ctx context.Context, name string, def json.RawMessage) (json.RawMessage, error)
	Save(ctx context.Context, name string, body json.RawMessage) error
	Delete(ctx context.Context, name string) error
}

type defaultStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &defaultStore{db: db}, nil
}

func (s *defaultStore) Load(ctx context.Context, name string, def json.RawMessage) (json.RawMessage, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE name = ?`, name).Scan(&body)
	if err == sql.ErrNoRows {
		return def, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load document %q: %w", name, err)
	}
	return body, nil
}

func (s *defaultStore) Save(ctx context.Context, name string, body json.RawMessage) error {
	if !json.Valid(body) {
		return fmt.Errorf("save document %q: body is not valid JSON", name)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (name, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		name, []byte(body), time.Now())
	if err != nil {
		return fmt.Errorf("save document %q: %w", name, err)
	}
	return nil
}

// Delete removes a named value; deleting a missing name is not an error.
func (s *defaultStore) Delete(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete document %q: %w", name, err)
	}
	return nil
}
