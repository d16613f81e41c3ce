package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline/pkg/models/store"
)

func setupMock(t *testing.T) (Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := NewStore(db)
	require.NoError(t, err)
	return s, mock
}

func profileColumns() []string {
	return []string{"id", "email", "display_name", "role", "created_at"}
}

func TestProbe(t *testing.T) {
	t.Run("provisioned with rows", func(t *testing.T) {
		s, mock := setupMock(t)
		mock.ExpectQuery(`SELECT id FROM profiles`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u1"))

		assert.NoError(t, s.Probe(context.Background()))
	})

	t.Run("provisioned but empty", func(t *testing.T) {
		s, mock := setupMock(t)
		mock.ExpectQuery(`SELECT id FROM profiles`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		assert.NoError(t, s.Probe(context.Background()))
	})

	t.Run("relation missing maps to ErrSchemaMissing", func(t *testing.T) {
		s, mock := setupMock(t)
		mock.ExpectQuery(`SELECT id FROM profiles`).
			WillReturnError(&pgconn.PgError{Code: "42P01", Message: `relation "profiles" does not exist`})

		err := s.Probe(context.Background())
		assert.ErrorIs(t, err, store.ErrSchemaMissing)
	})

	t.Run("other errors pass through", func(t *testing.T) {
		s, mock := setupMock(t)
		mock.ExpectQuery(`SELECT id FROM profiles`).
			WillReturnError(errors.New("connection refused"))

		err := s.Probe(context.Background())
		require.Error(t, err)
		assert.NotErrorIs(t, err, store.ErrSchemaMissing)
	})
}

func TestGet(t *testing.T) {
	created := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		s, mock := setupMock(t)
		mock.ExpectQuery(`SELECT id, email, display_name, role, created_at`).
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows(profileColumns()).
				AddRow("u1", "a@b.co", "Ada", "admin", created))

		row, err := s.Get(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, &store.ProfileRow{
			ID: "u1", Email: "a@b.co", DisplayName: "Ada", Role: "admin", CreatedAt: created,
		}, row)
	})

	t.Run("no rows maps to ErrProfileNotFound", func(t *testing.T) {
		s, mock := setupMock(t)
		mock.ExpectQuery(`SELECT id, email, display_name, role, created_at`).
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows(profileColumns()))

		_, err := s.Get(context.Background(), "ghost")
		assert.ErrorIs(t, err, store.ErrProfileNotFound)
	})
}

func TestInsert_ReturnsInsertedRow(t *testing.T) {
	s, mock := setupMock(t)
	created := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO profiles`).
		WithArgs("u2", "jane@corp.io", "jane", "staff").
		WillReturnRows(sqlmock.NewRows(profileColumns()).
			AddRow("u2", "jane@corp.io", "jane", "staff", created))

	row, err := s.Insert(context.Background(), store.ProfileRow{
		ID: "u2", Email: "jane@corp.io", DisplayName: "jane", Role: "staff",
	})

	require.NoError(t, err)
	assert.Equal(t, "staff", row.Role)
	assert.Equal(t, created, row.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList(t *testing.T) {
	s, mock := setupMock(t)
	created := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, email, display_name, role, created_at`).
		WillReturnRows(sqlmock.NewRows(profileColumns()).
			AddRow("u1", "a@b.co", "Ada", "admin", created).
			AddRow("u2", "jane@corp.io", "jane", "staff", created.Add(time.Hour)))

	rows, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "admin", rows[0].Role)
}
