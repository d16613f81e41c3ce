package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/pkg/models/domain"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// The engine is a pure reduction over the invoice set: no persistence, no
// caching, no shared state. Callers recompute rows on every request and may
// call any function here concurrently.

type bucket struct {
	count     int
	customers map[string]struct{}
	total     decimal.Decimal
}

func newBucket() *bucket {
	return &bucket{customers: map[string]struct{}{}, total: decimal.Zero}
}

func (b *bucket) add(inv domain.Invoice) {
	b.count++
	b.customers[inv.BillTo.Name] = struct{}{}
	b.total = b.total.Add(inv.Total())
}

// Daily groups invoices by issue date and returns one row per day, most
// recent first.
func Daily(invoices []domain.Invoice) []domain.PeriodStat {
	buckets := map[string]*bucket{}
	for _, inv := range invoices {
		key := dayKey(inv.IssueDate)
		if buckets[key] == nil {
			buckets[key] = newBucket()
		}
		buckets[key].add(inv)
	}
	return materialize(buckets, dayLayout)
}

// Monthly groups invoices by calendar month of their issue date and returns
// one row per month, most recent first.
func Monthly(invoices []domain.Invoice) []domain.PeriodStat {
	buckets := map[string]*bucket{}
	for _, inv := range invoices {
		key := monthKey(inv.IssueDate)
		if buckets[key] == nil {
			buckets[key] = newBucket()
		}
		buckets[key].add(inv)
	}
	return materialize(buckets, monthLayout)
}

// Compute returns both groupings in one pass over the result helpers.
func Compute(invoices []domain.Invoice) (daily, monthly []domain.PeriodStat) {
	return Daily(invoices), Monthly(invoices)
}

// CustomerCounts returns distinct bill-to names with an invoice on ref's
// calendar day, within ref's calendar month, and within ref's calendar year.
func CustomerCounts(invoices []domain.Invoice, ref time.Time) domain.CustomerCounts {
	day := ref.Format(dayLayout)
	month := ref.Format(monthLayout)
	year := ref.Format("2006")

	daySet := map[string]struct{}{}
	monthSet := map[string]struct{}{}
	yearSet := map[string]struct{}{}

	for _, inv := range invoices {
		dk := dayKey(inv.IssueDate)
		mk := monthKey(inv.IssueDate)
		if dk == day {
			daySet[inv.BillTo.Name] = struct{}{}
		}
		if mk == month {
			monthSet[inv.BillTo.Name] = struct{}{}
		}
		if len(mk) >= 4 && mk[:4] == year {
			yearSet[inv.BillTo.Name] = struct{}{}
		}
	}

	return domain.CustomerCounts{
		Day:   len(daySet),
		Month: len(monthSet),
		Year:  len(yearSet),
	}
}

// dayKey is the issue date string as-is: it already is the canonical
// zero-padded YYYY-MM-DD bucket key.
func dayKey(issueDate string) string {
	return issueDate
}

// monthKey derives YYYY-MM by parsing the issue date as a local calendar
// date. Local parsing keeps an invoice in the same bucket regardless of the
// viewer's offset from UTC. A malformed date is not an error: its raw seven
// byte prefix is the bucket key, deterministically.
func monthKey(issueDate string) string {
	if t, err := time.ParseInLocation(dayLayout, issueDate, time.Local); err == nil {
		return t.Format(monthLayout)
	}
	if len(issueDate) > len(monthLayout) {
		return issueDate[:len(monthLayout)]
	}
	return issueDate
}

// materialize turns buckets into rows sorted most recent first. Ordering
// compares parsed dates rather than relying on the lexical order of the
// zero-padded keys; unparseable keys fall back to byte comparison and sort
// after any valid date.
func materialize(buckets map[string]*bucket, layout string) []domain.PeriodStat {
	rows := make([]domain.PeriodStat, 0, len(buckets))
	for key, b := range buckets {
		rows = append(rows, domain.PeriodStat{
			Period:          key,
			Count:           b.count,
			UniqueCustomers: len(b.customers),
			Total:           b.total,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return periodAfter(rows[i].Period, rows[j].Period, layout)
	})
	return rows
}

func periodAfter(a, b, layout string) bool {
	ta, errA := time.ParseInLocation(layout, a, time.Local)
	tb, errB := time.ParseInLocation(layout, b, time.Local)
	switch {
	case errA == nil && errB == nil:
		return ta.After(tb)
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a > b
	}
}
