package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/pkg/models/domain"
)

// Store persists the product catalog in the local DuckDB file. Prices are
// stored as decimal strings to keep amounts exact.
type Store interface {
	Add(ctx context.Context, p domain.Product) error
	Update(ctx context.Context, p domain.Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Product, error)
}

var ErrNotFound = sql.ErrNoRows

type defaultStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &defaultStore{db: db}, nil
}

func (s *defaultStore) Add(ctx context.Context, p domain.Product) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, price, description, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Price.String(), p.Description, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (s *defaultStore) Update(ctx context.Context, p domain.Product) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products SET name = ?, price = ?, description = ? WHERE id = ?`,
		p.Name, p.Price.String(), p.Description, p.ID)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *defaultStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *defaultStore) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, price, description, created_at FROM products ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var (
			p         domain.Product
			price     string
			desc      sql.NullString
			createdAt time.Time
		)
		if err := rows.Scan(&p.ID, &p.Name, &price, &desc, &createdAt); err != nil {
			return nil, err
		}
		p.Price, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("parse price for product %s: %w", p.ID, err)
		}
		p.Description = desc.String
		p.CreatedAt = createdAt
		products = append(products, p)
	}
	return products, rows.Err()
}
