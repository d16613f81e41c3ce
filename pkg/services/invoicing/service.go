package invoicing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ledgerline/ledgerline/pkg/models/domain"
	"github.com/ledgerline/ledgerline/pkg/store/duckdb/document"
	"github.com/ledgerline/ledgerline/pkg/store/duckdb/invoice"
)

const templateDocument = "template"

// Service owns invoice lifecycle: validation, numbering and wholesale
// replacement on edit. Reporting reads the same List output; totals are
// always derived, never stored.
type Service struct {
	invoices invoice.Store
	docs     document.Store
}

func NewService(invoices invoice.Store, docs document.Store) *Service {
	return &Service{invoices: invoices, docs: docs}
}

func (s *Service) Create(ctx context.Context, draft domain.Invoice, createdBy string) (*domain.Invoice, error) {
	if err := validate(draft); err != nil {
		return nil, err
	}

	draft.ID = uuid.NewString()
	draft.CreatedByID = createdBy
	draft.CreatedAt = time.Now()
	if draft.Number == "" {
		draft.Number = s.nextNumber(ctx, draft.IssueDate)
	}

	if err := s.invoices.Add(ctx, draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (s *Service) Update(ctx context.Context, inv domain.Invoice) error {
	if err := validate(inv); err != nil {
		return err
	}
	return s.invoices.Update(ctx, inv)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.invoices.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	return s.invoices.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.Invoice, error) {
	return s.invoices.List(ctx)
}

func validate(inv domain.Invoice) error {
	if inv.IssueDate == "" {
		return fmt.Errorf("issue date is required")
	}
	if inv.BillTo.Name == "" {
		return fmt.Errorf("bill-to name is required")
	}
	if len(inv.LineItems) == 0 {
		return fmt.Errorf("at least one line item is required")
	}
	for i, li := range inv.LineItems {
		if li.Quantity <= 0 {
			return fmt.Errorf("line %d: quantity must be positive", i+1)
		}
		if li.Price.IsNegative() {
			return fmt.Errorf("line %d: price must not be negative", i+1)
		}
	}
	return nil
}

// nextNumber builds a number from the configured template prefix and the
// issue date. A failure to read the template is not fatal; the default
// prefix applies.
func (s *Service) nextNumber(ctx context.Context, issueDate string) string {
	prefix := "INV-"
	if body, err := s.docs.Load(ctx, templateDocument, nil); err == nil && body != nil {
		var tmpl domain.Template
		if err := json.Unmarshal(body, &tmpl); err == nil && tmpl.NumberPrefix != "" {
			prefix = tmpl.NumberPrefix
		}
	} else if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to load template for numbering")
	}

	compact := strings.ReplaceAll(issueDate, "-", "")
	return fmt.Sprintf("%s%s-%s", prefix, compact, uuid.NewString()[:8])
}
