package invoice

import (
	"context"

	"invoice-management-backend/internal/logger"
	"invoice-management-backend/internal/models"
	"invoice-management-backend/internal/repository"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// Gateway is the persistence surface the service needs. The gorm-backed
// repository.InvoiceRepository satisfies it; tests substitute a fake.
type Gateway interface {
	Configured() bool
	List(ctx context.Context, q models.ListQuery) ([]models.Invoice, error)
	Insert(ctx context.Context, dto models.CreateInvoiceDTO) (*models.Invoice, error)
	Update(ctx context.Context, id uuid.UUID, dto models.UpdateInvoiceDTO) (*models.Invoice, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type InvoiceService struct {
	gateway Gateway
	log     *logger.Logger
}

func NewInvoiceService(gateway Gateway, log *logger.Logger) *InvoiceService {
	if log == nil {
		log = logger.NewNop()
	}
	return &InvoiceService{
		gateway: gateway,
		log:     log.With("component", "invoice_service"),
	}
}

// GetAll lists invoices. It never fails because storage is missing or
// unreachable: in that case it logs a warning and returns an empty list.
func (s *InvoiceService) GetAll(ctx context.Context, q models.ListQuery) ([]models.Invoice, error) {
	if q.SortBy == "" {
		q.SortBy = models.SortByCreatedAt
	}
	if !s.configured() {
		s.log.Warnw("invoice database not configured, returning empty list")
		return []models.Invoice{}, nil
	}

	s.log.Infow("fetching invoices", "sort_by", q.SortBy, "ascending", q.Ascending)
	invoices, err := s.gateway.List(ctx, q)
	if err != nil {
		var pe *models.PersistenceError
		if errors.As(err, &pe) && pe.Unavailable() {
			s.log.Warnw("invoice database unavailable, returning empty list",
				"code", pe.Code, "message", pe.Message, "details", pe.Details)
			return []models.Invoice{}, nil
		}
		return nil, s.persistenceFailure("fetch invoices", err)
	}
	if invoices == nil {
		invoices = []models.Invoice{}
	}

	s.log.Infow("fetched invoices", "count", len(invoices))
	return invoices, nil
}

// Create stores a new invoice, defaulting the status to draft.
func (s *InvoiceService) Create(ctx context.Context, dto models.CreateInvoiceDTO) (*models.Invoice, error) {
	if dto.Status == "" {
		dto.Status = models.DefaultInvoiceStatus
	}
	if !s.configured() {
		return nil, s.notConfigured("create invoice")
	}

	s.log.Infow("creating invoice", "client_name", dto.ClientName, "amount", dto.Amount,
		"status", dto.Status, "due_date", dto.DueDate)
	invoice, err := s.gateway.Insert(ctx, dto)
	if err != nil {
		return nil, s.persistenceFailure("create invoice", err)
	}

	s.log.Infow("invoice created", "id", invoice.ID)
	return invoice, nil
}

// Update applies a partial update. Fields absent from dto keep their stored
// values; in particular status is never reset to draft here.
func (s *InvoiceService) Update(ctx context.Context, id uuid.UUID, dto models.UpdateInvoiceDTO) (*models.Invoice, error) {
	if !s.configured() {
		return nil, s.notConfigured("update invoice")
	}

	s.log.Infow("updating invoice", "id", id, "fields", len(dto.Columns()))
	invoice, err := s.gateway.Update(ctx, id, dto)
	if errors.Is(err, repository.ErrNoRows) {
		s.log.Infow("invoice to update not found", "id", id)
		return nil, &models.NotFoundError{Resource: "invoice", ID: id.String()}
	}
	if err != nil {
		return nil, s.persistenceFailure("update invoice", err)
	}

	s.log.Infow("invoice updated", "id", invoice.ID)
	return invoice, nil
}

// Delete removes an invoice. Deleting an id that does not exist succeeds.
func (s *InvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	if !s.configured() {
		return s.notConfigured("delete invoice")
	}

	s.log.Infow("deleting invoice", "id", id)
	n, err := s.gateway.Delete(ctx, id)
	if err != nil {
		return s.persistenceFailure("delete invoice", err)
	}
	if n == 0 {
		s.log.Infow("invoice already absent", "id", id)
		return nil
	}

	s.log.Infow("invoice deleted", "id", id)
	return nil
}

func (s *InvoiceService) configured() bool {
	return s.gateway != nil && s.gateway.Configured()
}

func (s *InvoiceService) notConfigured(op string) error {
	s.log.Warnw("invoice database not configured", "operation", op)
	return &models.ConfigurationError{
		Message: "Invoice database is not configured. Set SUPABASE_DB_URL and SUPABASE_SERVICE_KEY.",
	}
}

// persistenceFailure logs err with every diagnostic field the gateway gave
// and makes sure only the taxonomy types leave the service.
func (s *InvoiceService) persistenceFailure(op string, err error) error {
	var ce *models.ConfigurationError
	if errors.As(err, &ce) {
		s.log.Warnw("invoice database not configured", "operation", op)
		return ce
	}

	var pe *models.PersistenceError
	if !errors.As(err, &pe) {
		pe = &models.PersistenceError{
			Code:    models.PersistenceCodeUnknown,
			Message: err.Error(),
			Err:     err,
		}
	}
	s.log.Errorw("invoice persistence failed",
		"operation", op,
		"code", pe.Code,
		"message", pe.Message,
		"details", pe.Details,
		"hint", pe.Hint,
	)
	return pe
}
