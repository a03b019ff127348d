package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"invoice-management-backend/internal/models"
	"invoice-management-backend/internal/validation"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockInvoiceService struct {
	invoices   []models.Invoice
	created    *models.Invoice
	updated    *models.Invoice
	err        error
	calls      int
	lastQuery  models.ListQuery
	lastCreate models.CreateInvoiceDTO
	lastUpdate models.UpdateInvoiceDTO
	lastID     uuid.UUID
}

func (m *mockInvoiceService) GetAll(ctx context.Context, q models.ListQuery) ([]models.Invoice, error) {
	m.calls++
	m.lastQuery = q
	return m.invoices, m.err
}

func (m *mockInvoiceService) Create(ctx context.Context, dto models.CreateInvoiceDTO) (*models.Invoice, error) {
	m.calls++
	m.lastCreate = dto
	if m.err != nil {
		return nil, m.err
	}
	return m.created, nil
}

func (m *mockInvoiceService) Update(ctx context.Context, id uuid.UUID, dto models.UpdateInvoiceDTO) (*models.Invoice, error) {
	m.calls++
	m.lastID = id
	m.lastUpdate = dto
	if m.err != nil {
		return nil, m.err
	}
	return m.updated, nil
}

func (m *mockInvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	m.calls++
	m.lastID = id
	return m.err
}

func newTestRouter(svc InvoiceService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewInvoiceHandler(svc, validation.New(), nil)
	r.GET("/invoices", h.List)
	r.POST("/invoices", h.Create)
	r.PATCH("/invoices/:id", h.Update)
	r.DELETE("/invoices/:id", h.Delete)
	r.GET("/health", Health(func() time.Time {
		return time.Date(2025, 1, 2, 3, 4, 5, 6_000_000, time.UTC)
	}))
	return r
}

func perform(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type errorBody struct {
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func sampleInvoice() models.Invoice {
	return models.Invoice{
		ID:         uuid.MustParse("3f1c2b9e-8a4d-4c1e-9a77-0d6e1f2a3b4c"),
		ClientName: "Acme",
		Amount:     150,
		Status:     models.InvoiceStatusDraft,
		DueDate:    "2025-01-01",
		CreatedAt:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestListInvoices(t *testing.T) {
	svc := &mockInvoiceService{invoices: []models.Invoice{sampleInvoice()}}
	w := perform(newTestRouter(svc), http.MethodGet, "/invoices?sortBy=amount&ascending=true", "")

	require.Equal(t, http.StatusOK, w.Code)
	var got []models.Invoice
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, svc.invoices, got)
	assert.Equal(t, models.ListQuery{SortBy: models.SortByAmount, Ascending: true}, svc.lastQuery)
}

func TestListInvoicesEmptyIsArray(t *testing.T) {
	w := perform(newTestRouter(&mockInvoiceService{invoices: []models.Invoice{}}), http.MethodGet, "/invoices", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListInvoicesBadSort(t *testing.T) {
	svc := &mockInvoiceService{}
	w := perform(newTestRouter(svc), http.MethodGet, "/invoices?sortBy=bogus", "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, validation.SummaryInvalidQuery, decodeError(t, w).Error)
	assert.Zero(t, svc.calls)
}

func TestListInvoicesPersistenceFailure(t *testing.T) {
	svc := &mockInvoiceService{err: &models.PersistenceError{Code: "42P01", Message: `relation "invoices" does not exist`}}
	w := perform(newTestRouter(svc), http.MethodGet, "/invoices", "")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, `relation "invoices" does not exist`, body.Error)
	assert.JSONEq(t, `{"code":"42P01"}`, string(body.Details))
}

func TestCreateInvoice(t *testing.T) {
	inv := sampleInvoice()
	svc := &mockInvoiceService{created: &inv}
	w := perform(newTestRouter(svc), http.MethodPost, "/invoices",
		`{"client_name":"Acme","amount":150,"due_date":"2025-01-01"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{
		"id":"3f1c2b9e-8a4d-4c1e-9a77-0d6e1f2a3b4c",
		"client_name":"Acme",
		"amount":150,
		"status":"draft",
		"due_date":"2025-01-01",
		"created_at":"2025-01-01T00:00:00Z"
	}`, w.Body.String())
	assert.Equal(t, models.CreateInvoiceDTO{ClientName: "Acme", Amount: 150, DueDate: "2025-01-01"}, svc.lastCreate)
}

func TestCreateInvoiceValidationNeverReachesService(t *testing.T) {
	svc := &mockInvoiceService{}
	w := perform(newTestRouter(svc), http.MethodPost, "/invoices",
		`{"client_name":"Acme","amount":0,"due_date":"2025-01-01"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, validation.SummaryInvalidBody, body.Error)
	assert.JSONEq(t, `[{"field":"amount","message":"Amount must be a positive number"}]`, string(body.Details))
	assert.Zero(t, svc.calls)
}

func TestCreateInvoiceNotConfigured(t *testing.T) {
	svc := &mockInvoiceService{err: &models.ConfigurationError{Message: "Invoice database is not configured."}}
	w := perform(newTestRouter(svc), http.MethodPost, "/invoices",
		`{"client_name":"Acme","amount":1,"due_date":"2025-01-01"}`)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "Invoice database is not configured.", body.Error)
	assert.Empty(t, body.Details)
}

func TestUpdateInvoice(t *testing.T) {
	inv := sampleInvoice()
	inv.ClientName = "Updated Client"
	inv.Amount = 3000
	svc := &mockInvoiceService{updated: &inv}

	w := perform(newTestRouter(svc), http.MethodPatch, "/invoices/"+inv.ID.String(),
		`{"client_name":"Updated Client","amount":3000}`)

	require.Equal(t, http.StatusOK, w.Code)
	var got models.Invoice
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Updated Client", got.ClientName)
	assert.Equal(t, inv.ID, svc.lastID)
	require.NotNil(t, svc.lastUpdate.Amount)
	assert.Equal(t, 3000.0, *svc.lastUpdate.Amount)
	assert.Nil(t, svc.lastUpdate.Status)
}

func TestUpdateInvoiceBadID(t *testing.T) {
	svc := &mockInvoiceService{}
	w := perform(newTestRouter(svc), http.MethodPatch, "/invoices/not-a-uuid", `{"client_name":"X"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "Invalid invoice ID", body.Error)
	assert.JSONEq(t, `[{"field":"id","message":"Invoice ID must be a valid UUID"}]`, string(body.Details))
	assert.Zero(t, svc.calls)
}

func TestUpdateInvoiceUnknownField(t *testing.T) {
	svc := &mockInvoiceService{}
	w := perform(newTestRouter(svc), http.MethodPatch, "/invoices/"+uuid.NewString(), `{"notes":"x"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, svc.calls)
}

func TestUpdateInvoiceNotFound(t *testing.T) {
	svc := &mockInvoiceService{err: &models.NotFoundError{Resource: "invoice", ID: "x"}}
	w := perform(newTestRouter(svc), http.MethodPatch, "/invoices/"+uuid.NewString(), `{"client_name":"Test"}`)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Invoice not found"}`, w.Body.String())
}

func TestDeleteInvoice(t *testing.T) {
	svc := &mockInvoiceService{}
	id := uuid.New()
	w := perform(newTestRouter(svc), http.MethodDelete, "/invoices/"+id.String(), "")

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, id, svc.lastID)
}

func TestDeleteInvoiceBadID(t *testing.T) {
	svc := &mockInvoiceService{}
	w := perform(newTestRouter(svc), http.MethodDelete, "/invoices/123", "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid invoice ID", decodeError(t, w).Error)
	assert.Zero(t, svc.calls)
}

func TestDeleteInvoicePersistenceFailure(t *testing.T) {
	svc := &mockInvoiceService{err: &models.PersistenceError{
		Code: "23503", Message: "update or delete violates foreign key", Details: "Key is still referenced", Hint: "remove payments first",
	}}
	w := perform(newTestRouter(svc), http.MethodDelete, "/invoices/"+uuid.NewString(), "")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.JSONEq(t, `{"code":"23503","details":"Key is still referenced","hint":"remove payments first"}`, string(body.Details))
}

func TestUnexpectedErrorIsOpaque(t *testing.T) {
	svc := &mockInvoiceService{err: errors.New("boom")}
	w := perform(newTestRouter(svc), http.MethodDelete, "/invoices/"+uuid.NewString(), "")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}

func TestHealth(t *testing.T) {
	w := perform(newTestRouter(&mockInvoiceService{}), http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","timestamp":"2025-01-02T03:04:05.006Z"}`, w.Body.String())
}
