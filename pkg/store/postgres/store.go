package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ledgerline/ledgerline/pkg/models/store"
)

// undefinedTable is the Postgres error code raised when the profiles
// relation has never been created, i.e. the backend is unprovisioned.
const undefinedTable = "42P01"

// Store is the remote profile backend.
type Store interface {
	Probe(ctx context.Context) error
	Get(ctx context.Context, id string) (*store.ProfileRow, error)
	Insert(ctx context.Context, row store.ProfileRow) (*store.ProfileRow, error)
	List(ctx context.Context) ([]store.ProfileRow, error)
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

// Open connects to the remote backend with the pgx stdlib driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	return db, nil
}

// Probe issues a minimal read used only to detect an unprovisioned backend.
func (s *defaultStore) Probe(ctx context.Context) error {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM profiles LIMIT 1`).Scan(&id)
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
		return fmt.Errorf("probe profiles: %w", store.ErrSchemaMissing)
	}
	return fmt.Errorf("probe profiles: %w", err)
}

func (s *defaultStore) Get(ctx context.Context, id string) (*store.ProfileRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, role, created_at
		FROM profiles WHERE id = $1`, id)

	var p store.ProfileRow
	err := row.Scan(&p.ID, &p.Email, &p.DisplayName, &p.Role, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get profile %s: %w", id, store.ErrProfileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", id, err)
	}
	return &p, nil
}

func (s *defaultStore) Insert(ctx context.Context, row store.ProfileRow) (*store.ProfileRow, error) {
	inserted := store.ProfileRow{}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO profiles (id, email, display_name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, display_name, role, created_at`,
		row.ID, row.Email, row.DisplayName, row.Role,
	).Scan(&inserted.ID, &inserted.Email, &inserted.DisplayName, &inserted.Role, &inserted.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert profile %s: %w", row.ID, err)
	}
	return &inserted, nil
}

func (s *defaultStore) List(ctx context.Context) ([]store.ProfileRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, display_name, role, created_at
		FROM profiles ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]store.ProfileRow, 0)
	for rows.Next() {
		var p store.ProfileRow
		if err := rows.Scan(&p.ID, &p.Email, &p.DisplayName, &p.Role, &p.CreatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
