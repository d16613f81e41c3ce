package terminal

import (
	"fmt"
	"io"
	"os"
	"text/template"
	"time"

	"github.com/ledgerline/ledgerline/pkg/models/domain"
)

// Reporter outputs reports to the console in a plain text form
type Reporter struct {
	writer io.Writer
}

// NewReporter creates a new console reporter
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (c *Reporter) PeriodStats(title string, rows []domain.PeriodStat) error {
	tmpl := `
{{.Title}}
{{range .Rows}}
- {{.Period}}: {{.Count}} invoice(s), {{.UniqueCustomers}} customer(s), total {{.Total}}
{{end}}
`
	t, err := template.New("report").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, struct {
		Title string
		Rows  []domain.PeriodStat
	}{Title: title, Rows: rows})
}

func (c *Reporter) CustomerCounts(ref time.Time, counts domain.CustomerCounts) error {
	tmpl := `
Customers as of {{.Ref.Format "2006-01-02"}}
Today: {{.Counts.Day}}
This month: {{.Counts.Month}}
This year: {{.Counts.Year}}
`
	t, err := template.New("customers").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, struct {
		Ref    time.Time
		Counts domain.CustomerCounts
	}{Ref: ref, Counts: counts})
}
