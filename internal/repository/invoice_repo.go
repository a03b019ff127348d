package repository

import (
	"context"
	"time"

	"invoice-management-backend/internal/models"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNoRows is returned by Update when no invoice has the given id.
var ErrNoRows = errors.New("no rows affected")

// InvoiceRepository is the gateway to the invoices table. A repository built
// without a database is unconfigured: every call fails with a
// ConfigurationError and Configured reports false.
type InvoiceRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewInvoiceRepository(db *gorm.DB, timeout time.Duration) *InvoiceRepository {
	return &InvoiceRepository{db: db, timeout: timeout}
}

func (r *InvoiceRepository) Configured() bool {
	return r != nil && r.db != nil
}

// List returns every invoice ordered by q.SortBy.
func (r *InvoiceRepository) List(ctx context.Context, q models.ListQuery) ([]models.Invoice, error) {
	if !r.Configured() {
		return nil, errNotConfigured
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if q.SortBy == "" {
		q.SortBy = models.SortByCreatedAt
	}

	var invoices []models.Invoice
	err := r.db.WithContext(ctx).
		Order(clause.OrderByColumn{
			Column: clause.Column{Name: string(q.SortBy)},
			Desc:   !q.Ascending,
		}).
		Find(&invoices).Error
	if err != nil {
		return nil, normalizeError(ctx, err)
	}
	return invoices, nil
}

// Insert stores a new invoice and returns the row as written. The id and
// created_at are assigned here, never taken from the caller.
func (r *InvoiceRepository) Insert(ctx context.Context, dto models.CreateInvoiceDTO) (*models.Invoice, error) {
	if !r.Configured() {
		return nil, errNotConfigured
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	invoice := &models.Invoice{
		ID:         uuid.New(),
		ClientName: dto.ClientName,
		Amount:     dto.Amount,
		Status:     dto.Status,
		DueDate:    dto.DueDate,
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(invoice).Error; err != nil {
		return nil, normalizeError(ctx, err)
	}
	return invoice, nil
}

// Update writes only the supplied fields of dto to the invoice with the given
// id and returns the resulting row, or ErrNoRows when the id does not exist.
func (r *InvoiceRepository) Update(ctx context.Context, id uuid.UUID, dto models.UpdateInvoiceDTO) (*models.Invoice, error) {
	if !r.Configured() {
		return nil, errNotConfigured
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	// gorm skips the statement entirely for an empty SET list, so an empty
	// patch is answered with the current row.
	if dto.IsEmpty() {
		var invoice models.Invoice
		err := r.db.WithContext(ctx).Where("id = ?", id).Take(&invoice).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoRows
		}
		if err != nil {
			return nil, normalizeError(ctx, err)
		}
		return &invoice, nil
	}

	var updated []models.Invoice
	res := r.db.WithContext(ctx).
		Model(&updated).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(dto.Columns())
	if res.Error != nil {
		return nil, normalizeError(ctx, res.Error)
	}
	if res.RowsAffected == 0 || len(updated) == 0 {
		return nil, ErrNoRows
	}
	return &updated[0], nil
}

// Delete removes the invoice with the given id and reports how many rows
// went away. Zero is not an error.
func (r *InvoiceRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	if !r.Configured() {
		return 0, errNotConfigured
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Invoice{})
	if res.Error != nil {
		return 0, normalizeError(ctx, res.Error)
	}
	return res.RowsAffected, nil
}

func (r *InvoiceRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}
