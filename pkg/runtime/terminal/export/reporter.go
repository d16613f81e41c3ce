package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/ledgerline/ledgerline/pkg/models/domain"
)

type TableConfig struct {
	PeriodWidth    int
	CountWidth     int
	CustomersWidth int
	TotalWidth     int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		PeriodWidth:    12,
		CountWidth:     10,
		CustomersWidth: 12,
		TotalWidth:     16,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func (c *Reporter) PeriodStats(title string, rows []domain.PeriodStat) error {
	funcMap := template.FuncMap{
		"formatRow": func(period string, count interface{}, customers interface{}, total string) string {
			return fmt.Sprintf("| %-*s | %-*v | %-*v | %-*s |",
				c.config.PeriodWidth, period,
				c.config.CountWidth, count,
				c.config.CustomersWidth, customers,
				c.config.TotalWidth, total)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.PeriodWidth+2),
				strings.Repeat("-", c.config.CountWidth+2),
				strings.Repeat("-", c.config.CustomersWidth+2),
				strings.Repeat("-", c.config.TotalWidth+2))
		},
	}

	tmpl := `
{{.Title}}

{{separator}}
{{formatRow "Period" "Invoices" "Customers" "Total"}}
{{separator}}
{{range .Rows}}{{formatRow .Period .Count .UniqueCustomers (print .Total)}}
{{end}}{{separator}}
`

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, struct {
		Title string
		Rows  []domain.PeriodStat
	}{Title: title, Rows: rows})
}

func (c *Reporter) CustomerCounts(ref time.Time, counts domain.CustomerCounts) error {
	funcMap := template.FuncMap{
		"formatRow": func(name string, value int) string {
			return fmt.Sprintf("| %-*s | %-*d |",
				c.config.PeriodWidth, name,
				c.config.CountWidth, value)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+",
				strings.Repeat("-", c.config.PeriodWidth+2),
				strings.Repeat("-", c.config.CountWidth+2))
		},
	}

	tmpl := `
Customers as of {{.Ref.Format "2006-01-02"}}

{{separator}}
{{formatRow "Today" .Counts.Day}}
{{formatRow "This month" .Counts.Month}}
{{formatRow "This year" .Counts.Year}}
{{separator}}
`

	t, err := template.New("customers").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, struct {
		Ref    time.Time
		Counts domain.CustomerCounts
	}{Ref: ref, Counts: counts})
}
