package handler

import (
	"context"
	"net/http"

	"invoice-management-backend/internal/logger"
	"invoice-management-backend/internal/models"
	"invoice-management-backend/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxBodyBytes = 100 << 10

// InvoiceService is what the handler needs from the invoice service layer.
type InvoiceService interface {
	GetAll(ctx context.Context, q models.ListQuery) ([]models.Invoice, error)
	Create(ctx context.Context, dto models.CreateInvoiceDTO) (*models.Invoice, error)
	Update(ctx context.Context, id uuid.UUID, dto models.UpdateInvoiceDTO) (*models.Invoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type InvoiceHandler struct {
	service   InvoiceService
	validator *validation.Validator
	log       *logger.Logger
}

func NewInvoiceHandler(s InvoiceService, v *validation.Validator, log *logger.Logger) *InvoiceHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &InvoiceHandler{service: s, validator: v, log: log}
}

// List handles GET /invoices?sortBy=&ascending=
func (h *InvoiceHandler) List(c *gin.Context) {
	q, err := h.validator.ValidateListQuery(c.Request.URL.Query())
	if err != nil {
		h.respondError(c, err)
		return
	}

	invoices, err := h.service.GetAll(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if invoices == nil {
		invoices = []models.Invoice{}
	}
	c.JSON(http.StatusOK, invoices)
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}
	dto, err := h.validator.ValidateCreate(body)
	if err != nil {
		h.respondError(c, err)
		return
	}

	invoice, err := h.service.Create(c.Request.Context(), dto)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

// Update handles PATCH /invoices/:id
func (h *InvoiceHandler) Update(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}
	id, dto, err := h.validator.ValidateUpdate(c.Param("id"), body)
	if err != nil {
		h.respondError(c, err)
		return
	}

	invoice, err := h.service.Update(c.Request.Context(), id, dto)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// Delete handles DELETE /invoices/:id
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, err := h.validator.ValidateDelete(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *InvoiceHandler) readBody(c *gin.Context) ([]byte, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	body, err := c.GetRawData()
	if err != nil {
		h.respondError(c, &models.ValidationError{
			Summary: validation.SummaryInvalidBody,
			Fields:  []models.FieldError{{Field: "body", Message: "Request body could not be read"}},
		})
		return nil, false
	}
	return body, true
}
