package invoice

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ledgerline/ledgerline/pkg/adapters"
	"github.com/ledgerline/ledgerline/pkg/models/api"
	"github.com/ledgerline/ledgerline/pkg/models/domain"
	"github.com/ledgerline/ledgerline/pkg/services/directory"
	"github.com/ledgerline/ledgerline/pkg/services/invoicing"
	"github.com/ledgerline/ledgerline/pkg/services/report"
	"github.com/ledgerline/ledgerline/pkg/services/session"
	invoicestore "github.com/ledgerline/ledgerline/pkg/store/duckdb/invoice"
)

type Handler struct {
	invoicing *invoicing.Service
	users     *directory.Service
	sessions  *session.Controller
}

func NewHandler(svc *invoicing.Service, users *directory.Service, sessions *session.Controller) *Handler {
	return &Handler{invoicing: svc, users: users, sessions: sessions}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	invoices, err := h.invoicing.List(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to list invoices")
		respondError(ctx, w, http.StatusInternalServerError, "failed to list invoices", "")
		return
	}

	h.users.Refresh(ctx)
	response := make([]api.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		response = append(response, adapters.MapDomainInvoiceToApi(inv, h.users.DisplayName(inv.CreatedByID)))
	}
	respond(ctx, w, http.StatusOK, response)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	inv, err := h.invoicing.Get(ctx, id)
	if err != nil {
		if errors.Is(err, invoicestore.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "invoice not found", "")
			return
		}
		zerolog.Ctx(ctx).Error().Err(err).Str("id", id).Msg("failed to load invoice")
		respondError(ctx, w, http.StatusInternalServerError, "failed to load invoice", "")
		return
	}

	h.users.Refresh(ctx)
	respond(ctx, w, http.StatusOK, adapters.MapDomainInvoiceToApi(*inv, h.users.DisplayName(inv.CreatedByID)))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snap := h.sessions.Snapshot()
	if snap.State != session.StateLoggedIn {
		respondError(ctx, w, http.StatusUnauthorized, "not signed in", "")
		return
	}

	var body api.Invoice
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	draft, err := adapters.MapApiInvoiceToDomain(body)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error(), "")
		return
	}

	created, err := h.invoicing.Create(ctx, draft, snap.Identity.ID)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error(), "")
		return
	}

	respond(ctx, w, http.StatusCreated,
		adapters.MapDomainInvoiceToApi(*created, snap.Identity.DisplayName))
}

// Update replaces the invoice wholesale. Author and creation time are kept
// from the stored record, not from the request.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	existing, err := h.invoicing.Get(ctx, id)
	if err != nil {
		if errors.Is(err, invoicestore.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "invoice not found", "")
			return
		}
		zerolog.Ctx(ctx).Error().Err(err).Str("id", id).Msg("failed to load invoice")
		respondError(ctx, w, http.StatusInternalServerError, "failed to load invoice", "")
		return
	}

	var body api.Invoice
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	next, err := adapters.MapApiInvoiceToDomain(body)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error(), "")
		return
	}
	next.ID = existing.ID
	next.CreatedByID = existing.CreatedByID
	next.CreatedAt = existing.CreatedAt
	if next.Number == "" {
		next.Number = existing.Number
	}

	if err := h.invoicing.Update(ctx, next); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error(), "")
		return
	}

	h.users.Refresh(ctx)
	respond(ctx, w, http.StatusOK, adapters.MapDomainInvoiceToApi(next, h.users.DisplayName(next.CreatedByID)))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.invoicing.Delete(ctx, id); err != nil {
		if errors.Is(err, invoicestore.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "invoice not found", "")
			return
		}
		zerolog.Ctx(ctx).Error().Err(err).Str("id", id).Msg("failed to delete invoice")
		respondError(ctx, w, http.StatusInternalServerError, "failed to delete invoice", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DailyReport and MonthlyReport recompute their rows from the full invoice
// set on every request.
func (h *Handler) DailyReport(w http.ResponseWriter, r *http.Request) {
	h.report(w, r, report.Daily)
}

func (h *Handler) MonthlyReport(w http.ResponseWriter, r *http.Request) {
	h.report(w, r, report.Monthly)
}

func (h *Handler) CustomerReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	invoices, err := h.invoicing.List(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to list invoices")
		respondError(ctx, w, http.StatusInternalServerError, "failed to compute report", "")
		return
	}

	counts := report.CustomerCounts(invoices, time.Now())
	respond(ctx, w, http.StatusOK, api.CustomerCounts{
		Day:   counts.Day,
		Month: counts.Month,
		Year:  counts.Year,
	})
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request, group func([]domain.Invoice) []domain.PeriodStat) {
	ctx := r.Context()

	invoices, err := h.invoicing.List(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to list invoices")
		respondError(ctx, w, http.StatusInternalServerError, "failed to compute report", "")
		return
	}

	stats := group(invoices)
	response := make([]api.PeriodStat, 0, len(stats))
	for _, s := range stats {
		response = append(response, adapters.MapDomainStatToApi(s))
	}
	respond(ctx, w, http.StatusOK, response)
}
