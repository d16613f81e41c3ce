package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const InvoiceTableSchema = `
	CREATE TABLE IF NOT EXISTS invoices (
		id VARCHAR PRIMARY KEY,
		number VARCHAR NOT NULL,
		issue_date VARCHAR NOT NULL,
		bill_to JSON NOT NULL,
		line_items JSON NOT NULL,
		notes VARCHAR,
		created_by VARCHAR,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`

const ProductTableSchema = `
	CREATE TABLE IF NOT EXISTS products (
		id VARCHAR PRIMARY KEY,
		name VARCHAR NOT NULL,
		price VARCHAR NOT NULL,
		description VARCHAR,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`

// documents holds named JSON values (branding, template, cached session).
const DocumentTableSchema = `
	CREATE TABLE IF NOT EXISTS documents (
		name VARCHAR PRIMARY KEY,
		body JSON NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`

var bootQueries = []string{
	InvoiceTableSchema,
	ProductTableSchema,
	DocumentTableSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}

type txKey struct{}

// WithTransaction attaches tx to ctx so store writes join an enclosing
// transaction.
func WithTransaction(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func GetTransaction(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}
