package invoice

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ledgerline/ledgerline/pkg/models/domain"
	"github.com/ledgerline/ledgerline/pkg/store/duckdb"
)

// Store persists invoices in the local DuckDB file. Invoices are immutable
// records: Update replaces the row wholesale.
type Store interface {
	Add(ctx context.Context, inv domain.Invoice) error
	Update(ctx context.Context, inv domain.Invoice) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.Invoice, error)
	List(ctx context.Context) ([]domain.Invoice, error)
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

func (s *defaultStore) Add(ctx context.Context, inv domain.Invoice) error {
	billTo, lineItems, err := marshalInvoice(inv)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO invoices (id, number, issue_date, bill_to, line_items, notes, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.exec(ctx, query,
		inv.ID, inv.Number, inv.IssueDate, billTo, lineItems, inv.Notes, inv.CreatedByID, inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (s *defaultStore) Update(ctx context.Context, inv domain.Invoice) error {
	billTo, lineItems, err := marshalInvoice(inv)
	if err != nil {
		return err
	}

	query := `
		UPDATE invoices
		SET number = ?, issue_date = ?, bill_to = ?, line_items = ?, notes = ?
		WHERE id = ?`

	res, err := s.exec(ctx, query, inv.Number, inv.IssueDate, billTo, lineItems, inv.Notes, inv.ID)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *defaultStore) Delete(ctx context.Context, id string) error {
	res, err := s.exec(ctx, `DELETE FROM invoices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *defaultStore) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, number, issue_date, bill_to, line_items, notes, created_by, created_at
		FROM invoices WHERE id = ?`, id)

	inv, err := scanInvoice(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

func (s *defaultStore) List(ctx context.Context) ([]domain.Invoice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, number, issue_date, bill_to, line_items, notes, created_by, created_at
		FROM invoices
		ORDER BY issue_date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]domain.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows.Scan)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

func (s *defaultStore) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	if tx := duckdb.GetTransaction(ctx); tx != nil {
		return tx.ExecContext(ctx, query, args...)
	}
	return s.db.ExecContext(ctx, query, args...)
}

func marshalInvoice(inv domain.Invoice) (billTo, lineItems []byte, err error) {
	billTo, err = json.Marshal(inv.BillTo)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal bill_to: %w", err)
	}
	lineItems, err = json.Marshal(inv.LineItems)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal line_items: %w", err)
	}
	return billTo, lineItems, nil
}

func scanInvoice(scan func(...interface{}) error) (*domain.Invoice, error) {
	var (
		inv          domain.Invoice
		billToRaw    []byte
		lineItemsRaw []byte
		notes        sql.NullString
		createdBy    sql.NullString
		createdAt    time.Time
	)

	err := scan(&inv.ID, &inv.Number, &inv.IssueDate, &billToRaw, &lineItemsRaw, &notes, &createdBy, &createdAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(billToRaw, &inv.BillTo); err != nil {
		return nil, fmt.Errorf("unmarshal bill_to: %w", err)
	}
	if err := json.Unmarshal(lineItemsRaw, &inv.LineItems); err != nil {
		return nil, fmt.Errorf("unmarshal line_items: %w", err)
	}
	inv.Notes = notes.String
	inv.CreatedByID = createdBy.String
	inv.CreatedAt = createdAt
	return &inv, nil
}
