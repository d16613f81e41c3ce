package invoice

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline/pkg/models/api"
	"github.com/ledgerline/ledgerline/pkg/models/domain"
	"github.com/ledgerline/ledgerline/pkg/models/store"
	"github.com/ledgerline/ledgerline/pkg/services/directory"
	"github.com/ledgerline/ledgerline/pkg/services/invoicing"
	"github.com/ledgerline/ledgerline/pkg/services/session"
	invoicestore "github.com/ledgerline/ledgerline/pkg/store/duckdb/invoice"
)

type memInvoices struct {
	mu   sync.Mutex
	byID map[string]domain.Invoice
}

func newMemInvoices() *memInvoices { return &memInvoices{byID: map[string]domain.Invoice{}} }

func (m *memInvoices) Add(_ context.Context, inv domain.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[inv.ID] = inv
	return nil
}

func (m *memInvoices) Update(_ context.Context, inv domain.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[inv.ID]; !ok {
		return invoicestore.ErrNotFound
	}
	m.byID[inv.ID] = inv
	return nil
}

func (m *memInvoices) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return invoicestore.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memInvoices) Get(_ context.Context, id string) (*domain.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv, ok := m.byID[id]; ok {
		return &inv, nil
	}
	return nil, invoicestore.ErrNotFound
}

func (m *memInvoices) List(_ context.Context) ([]domain.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Invoice, 0, len(m.byID))
	for _, inv := range m.byID {
		out = append(out, inv)
	}
	return out, nil
}

type memDocs struct{}

func (memDocs) Load(_ context.Context, _ string, def json.RawMessage) (json.RawMessage, error) {
	return def, nil
}
func (memDocs) Save(_ context.Context, _ string, _ json.RawMessage) error { return nil }

func (memDocs) Delete(_ context.Context, _ string) error { return nil }

type fakeProfiles struct {
	rows []store.ProfileRow
}

func (f *fakeProfiles) Probe(_ context.Context) error { return nil }

func (f *fakeProfiles) Get(_ context.Context, id string) (*store.ProfileRow, error) {
	for i := range f.rows {
		if f.rows[i].ID == id {
			return &f.rows[i], nil
		}
	}
	return nil, store.ErrProfileNotFound
}

func (f *fakeProfiles) Insert(_ context.Context, row store.ProfileRow) (*store.ProfileRow, error) {
	f.rows = append(f.rows, row)
	return &row, nil
}

func (f *fakeProfiles) List(_ context.Context) ([]store.ProfileRow, error) {
	return f.rows, nil
}

type fakeAuth struct {
	session *domain.Session
}

func (f *fakeAuth) CurrentSession(_ context.Context) (*domain.Session, error) {
	return f.session, nil
}
func (f *fakeAuth) SignOut(_ context.Context) error { return nil }

func (f *fakeAuth) Subscribe(func(*domain.Session)) func() { return func() {} }

type env struct {
	handler  *Handler
	invoices *memInvoices
}

func newEnv(t *testing.T, signedIn bool) *env {
	t.Helper()

	profiles := &fakeProfiles{rows: []store.ProfileRow{{
		ID:          "user-1",
		Email:       "owner@example.com",
		DisplayName: "Owner",
		Role:        "staff",
		CreatedAt:   time.Now(),
	}}}

	auth := &fakeAuth{}
	if signedIn {
		auth.session = &domain.Session{
			UserID:    "user-1",
			Email:     "owner@example.com",
			ExpiresAt: time.Now().Add(time.Hour),
		}
	}

	ctrl := session.NewController(profiles, auth)
	logger := zerolog.New(zerolog.NewTestWriter(t))
	ctrl.Run(logger.WithContext(context.Background()))
	t.Cleanup(ctrl.Close)

	invoices := newMemInvoices()
	svc := invoicing.NewService(invoices, memDocs{})

	return &env{
		handler:  NewHandler(svc, directory.NewService(profiles), ctrl),
		invoices: invoices,
	}
}

func request(method, path, id string, body interface{}) *http.Request {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if id != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	return req
}

func TestHandler_Get_NotFound(t *testing.T) {
	e := newEnv(t, false)

	rec := httptest.NewRecorder()
	e.handler.Get(rec, request(http.MethodGet, "/api/v1/invoices/missing", "missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Create_RequiresSession(t *testing.T) {
	e := newEnv(t, false)

	rec := httptest.NewRecorder()
	e.handler.Create(rec, request(http.MethodPost, "/api/v1/invoices", "", api.Invoice{}))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_Create_RejectsBadPrice(t *testing.T) {
	e := newEnv(t, true)

	rec := httptest.NewRecorder()
	e.handler.Create(rec, request(http.MethodPost, "/api/v1/invoices", "", api.Invoice{
		IssueDate: "2025-03-01",
		BillTo:    api.BillTo{Name: "Acme"},
		LineItems: []api.LineItem{{Product: "Widget", Quantity: 1, Price: "abc"}},
	}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Create_SetsAuthor(t *testing.T) {
	e := newEnv(t, true)

	rec := httptest.NewRecorder()
	e.handler.Create(rec, request(http.MethodPost, "/api/v1/invoices", "", api.Invoice{
		IssueDate: "2025-03-01",
		BillTo:    api.BillTo{Name: "Acme"},
		LineItems: []api.LineItem{{Product: "Widget", Quantity: 2, Price: "19.99"}},
	}))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created api.Invoice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "user-1", created.CreatedByID)
	assert.Equal(t, "Owner", created.CreatedBy)
	assert.Equal(t, "39.98", created.Total)
}

func TestHandler_Update_PreservesAuthorAndNumber(t *testing.T) {
	e := newEnv(t, true)

	createdAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, e.invoices.Add(context.Background(), domain.Invoice{
		ID:          "inv-1",
		Number:      "INV-20250301-abc",
		IssueDate:   "2025-03-01",
		BillTo:      domain.BillTo{Name: "Acme"},
		LineItems:   []domain.LineItem{{Product: "Widget", Quantity: 1, Price: decimal.RequireFromString("10")}},
		CreatedByID: "user-1",
		CreatedAt:   createdAt,
	}))

	rec := httptest.NewRecorder()
	e.handler.Update(rec, request(http.MethodPut, "/api/v1/invoices/inv-1", "inv-1", api.Invoice{
		IssueDate:   "2025-03-02",
		BillTo:      api.BillTo{Name: "Acme"},
		LineItems:   []api.LineItem{{Product: "Widget", Quantity: 3, Price: "10"}},
		CreatedByID: "someone-else",
	}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err := e.invoices.Get(context.Background(), "inv-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", stored.CreatedByID)
	assert.Equal(t, "INV-20250301-abc", stored.Number)
	assert.Equal(t, createdAt, stored.CreatedAt)
	assert.Equal(t, "2025-03-02", stored.IssueDate)
}

func TestHandler_Delete_NotFound(t *testing.T) {
	e := newEnv(t, false)

	rec := httptest.NewRecorder()
	e.handler.Delete(rec, request(http.MethodDelete, "/api/v1/invoices/missing", "missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Reports(t *testing.T) {
	e := newEnv(t, false)

	add := func(id, date, customer, price string) {
		require.NoError(t, e.invoices.Add(context.Background(), domain.Invoice{
			ID:        id,
			IssueDate: date,
			BillTo:    domain.BillTo{Name: customer},
			LineItems: []domain.LineItem{{Product: "Widget", Quantity: 1, Price: decimal.RequireFromString(price)}},
		}))
	}
	add("a", "2025-03-01", "Acme", "100")
	add("b", "2025-03-01", "Globex", "50")
	add("c", "2025-04-02", "Acme", "25")

	rec := httptest.NewRecorder()
	e.handler.DailyReport(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/daily", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var daily []api.PeriodStat
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &daily))
	require.Len(t, daily, 2)
	assert.Equal(t, api.PeriodStat{Period: "2025-04-02", Count: 1, UniqueCustomers: 1, Total: "25"}, daily[0])
	assert.Equal(t, api.PeriodStat{Period: "2025-03-01", Count: 2, UniqueCustomers: 2, Total: "150"}, daily[1])

	rec = httptest.NewRecorder()
	e.handler.MonthlyReport(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/monthly", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var monthly []api.PeriodStat
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &monthly))
	require.Len(t, monthly, 2)
	assert.Equal(t, "2025-04", monthly[0].Period)
	assert.Equal(t, "2025-03", monthly[1].Period)
}
