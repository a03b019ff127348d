package handler

import (
	"net/http"

	"invoice-management-backend/internal/models"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// PersistenceDetails passes the storage engine's diagnostics through to the
// client unchanged.
type PersistenceDetails struct {
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

// respondError is the only place that turns an error into a status code.
func (h *InvoiceHandler) respondError(c *gin.Context, err error) {
	var (
		ve *models.ValidationError
		nf *models.NotFoundError
		ce *models.ConfigurationError
		pe *models.PersistenceError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ve.Summary, Details: ve.Fields})
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Invoice not found"})
	case errors.As(err, &ce):
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: ce.Message})
	case errors.As(err, &pe):
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   pe.Message,
			Details: PersistenceDetails{Code: pe.Code, Details: pe.Details, Hint: pe.Hint},
		})
	default:
		h.log.Errorw("unexpected error", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}
