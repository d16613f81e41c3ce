package domain

import "github.com/shopspring/decimal"

// PeriodStat is a derived report row for one calendar period. Period is a
// zero-padded YYYY-MM-DD string for daily rows and YYYY-MM for monthly rows.
// Rows are ephemeral: recomputed from the invoice set on demand, never
// persisted.
type PeriodStat struct {
	Period          string
	Count           int
	UniqueCustomers int
	Total           decimal.Decimal
}

// CustomerCounts holds distinct-customer cardinalities relative to a
// reference instant's calendar day, month and year.
type CustomerCounts struct {
	Day   int
	Month int
	Year  int
}
