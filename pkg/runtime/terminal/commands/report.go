package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerline/ledgerline/pkg/models/domain"
	"github.com/ledgerline/ledgerline/pkg/services/report"
	"github.com/ledgerline/ledgerline/pkg/store/duckdb"
	"github.com/ledgerline/ledgerline/pkg/store/duckdb/invoice"
)

// Renderer abstracts the output format so the commands stay agnostic of how
// rows end up on the terminal.
type Renderer interface {
	PeriodStats(title string, rows []domain.PeriodStat) error
	CustomerCounts(ref time.Time, counts domain.CustomerCounts) error
}

// NewReportCmd builds the report command group. Reports read the local
// invoice database directly; no server has to be running.
func NewReportCmd(plain, table Renderer) *cobra.Command {
	var (
		dbPath string
		format string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Derive revenue reports from the local invoice database",
	}

	cmd.PersistentFlags().StringVar(&dbPath, "db", "ledgerline.db", "Path to the local database file")
	cmd.PersistentFlags().StringVar(&format, "format", "table", "Output format: table or plain")

	renderer := func() (Renderer, error) {
		switch format {
		case "table":
			return table, nil
		case "plain":
			return plain, nil
		default:
			return nil, fmt.Errorf("unknown format %q", format)
		}
	}

	loadInvoices := func(cmd *cobra.Command) ([]domain.Invoice, error) {
		db, err := duckdb.NewDB(duckdb.Settings{DbPath: dbPath})
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		store, err := invoice.NewStore(db)
		if err != nil {
			return nil, err
		}
		return store.List(cmd.Context())
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "daily",
		Short: "Invoices grouped by issue date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := renderer()
			if err != nil {
				return err
			}
			invoices, err := loadInvoices(cmd)
			if err != nil {
				return err
			}
			return r.PeriodStats("Daily revenue", report.Daily(invoices))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "monthly",
		Short: "Invoices grouped by calendar month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := renderer()
			if err != nil {
				return err
			}
			invoices, err := loadInvoices(cmd)
			if err != nil {
				return err
			}
			return r.PeriodStats("Monthly revenue", report.Monthly(invoices))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "customers",
		Short: "Distinct customers today, this month and this year",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := renderer()
			if err != nil {
				return err
			}
			invoices, err := loadInvoices(cmd)
			if err != nil {
				return err
			}
			now := time.Now()
			return r.CustomerCounts(now, report.CustomerCounts(invoices, now))
		},
	})

	return cmd
}
