package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillTo identifies the invoiced customer. Name is free text and doubles as
// the unique-customer key in reports; it is intentionally not normalized, so
// case or whitespace variants count as distinct customers.
type BillTo struct {
	Name    string
	Email   string
	Address string
}

type LineItem struct {
	Product  string
	Quantity int
	Price    decimal.Decimal
}

// Amount is quantity x price for a single line.
func (li LineItem) Amount() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Invoice is immutable once created; edits replace the record wholesale.
// IssueDate is a canonical zero-padded YYYY-MM-DD string with no time
// component and is the grouping key for all reporting.
type Invoice struct {
	ID          string
	Number      string
	IssueDate   string
	BillTo      BillTo
	LineItems   []LineItem
	Notes       string
	CreatedByID string
	CreatedAt   time.Time
}

// Total is the flat sum of line amounts. No tax, discount or currency.
func (i Invoice) Total() decimal.Decimal {
	total := decimal.Zero
	for _, li := range i.LineItems {
		total = total.Add(li.Amount())
	}
	return total
}

type Product struct {
	ID          string
	Name        string
	Price       decimal.Decimal
	Description string
	CreatedAt   time.Time
}
