package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline/pkg/models/domain"
)

func TestReporter_PeriodStats(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewReporter(&buf)

	err := reporter.PeriodStats("Daily revenue", []domain.PeriodStat{
		{Period: "2025-04-02", Count: 1, UniqueCustomers: 1, Total: decimal.RequireFromString("25")},
		{Period: "2025-03-01", Count: 2, UniqueCustomers: 2, Total: decimal.RequireFromString("150")},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Daily revenue")
	assert.Contains(t, out, "2025-04-02")
	assert.Contains(t, out, "150")
	assert.Contains(t, out, "| Period")
}

func TestReporter_CustomerCounts(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewReporter(&buf)

	ref := time.Date(2025, 4, 2, 12, 0, 0, 0, time.UTC)
	err := reporter.CustomerCounts(ref, domain.CustomerCounts{Day: 1, Month: 2, Year: 3})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Customers as of 2025-04-02")
	assert.Contains(t, out, "This month")
}
