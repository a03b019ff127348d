package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"invoice-management-backend/internal/models"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Summaries used as the top-level "error" of a 400 response.
const (
	SummaryInvalidBody  = "Invalid invoice data"
	SummaryInvalidID    = "Invalid invoice ID"
	SummaryInvalidQuery = "Invalid query parameters"
)

// Field order in error lists follows the invoice shape.
var invoiceFields = []string{"client_name", "amount", "status", "due_date"}

type createInvoiceRequest struct {
	ClientName *string               `json:"client_name" validate:"required,min=1"`
	Amount     *float64              `json:"amount" validate:"required,gt=0"`
	Status     *models.InvoiceStatus `json:"status" validate:"omitempty,oneof=draft sent paid overdue"`
	DueDate    *string               `json:"due_date" validate:"required,min=1"`
}

type updateInvoiceRequest struct {
	ClientName *string               `json:"client_name" validate:"omitempty,min=1"`
	Amount     *float64              `json:"amount" validate:"omitempty,gt=0"`
	Status     *models.InvoiceStatus `json:"status" validate:"omitempty,oneof=draft sent paid overdue"`
	DueDate    *string               `json:"due_date" validate:"omitempty,min=1"`
}

// Validator checks raw request input before it reaches the invoice service.
// It never talks to storage. Every failing field is reported, not just the
// first one.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// ValidateCreate parses a create body. Keys outside the invoice shape,
// including id and created_at, are dropped.
func (v *Validator) ValidateCreate(body []byte) (models.CreateInvoiceDTO, error) {
	raw, bodyErr := decodeObject(body)
	if bodyErr != nil {
		return models.CreateInvoiceDTO{}, invalid(SummaryInvalidBody, []models.FieldError{*bodyErr})
	}

	var typeErrs fieldErrors
	req := createInvoiceRequest{
		ClientName: decodeField[string](raw, "client_name", &typeErrs),
		Amount:     decodeField[float64](raw, "amount", &typeErrs),
		Status:     decodeStatus(raw, &typeErrs),
		DueDate:    decodeField[string](raw, "due_date", &typeErrs),
	}

	errs := v.collect(req, typeErrs)
	if len(errs) > 0 {
		return models.CreateInvoiceDTO{}, invalid(SummaryInvalidBody, errs)
	}

	dto := models.CreateInvoiceDTO{
		ClientName: *req.ClientName,
		Amount:     *req.Amount,
		DueDate:    *req.DueDate,
	}
	if req.Status != nil {
		dto.Status = *req.Status
	}
	return dto, nil
}

// ValidateUpdate parses the path id and a partial update body. Unknown keys
// are rejected.
func (v *Validator) ValidateUpdate(pathID string, body []byte) (uuid.UUID, models.UpdateInvoiceDTO, error) {
	var errs []models.FieldError

	id, idErr := parseID(pathID)
	if idErr != nil {
		errs = append(errs, *idErr)
	}

	raw, bodyErr := decodeObject(body)
	if bodyErr != nil {
		errs = append(errs, *bodyErr)
		return uuid.Nil, models.UpdateInvoiceDTO{}, invalid(updateSummary(idErr), errs)
	}

	var typeErrs fieldErrors
	req := updateInvoiceRequest{
		ClientName: decodeField[string](raw, "client_name", &typeErrs),
		Amount:     decodeField[float64](raw, "amount", &typeErrs),
		Status:     decodeStatus(raw, &typeErrs),
		DueDate:    decodeField[string](raw, "due_date", &typeErrs),
	}
	errs = append(errs, v.collect(req, typeErrs)...)

	unknown := lo.Filter(lo.Keys(raw), func(key string, _ int) bool {
		return !lo.Contains(invoiceFields, key)
	})
	sort.Strings(unknown)
	for _, key := range unknown {
		errs = append(errs, models.FieldError{Field: key, Message: fmt.Sprintf("Unrecognized field %q", key)})
	}

	if len(errs) > 0 {
		return uuid.Nil, models.UpdateInvoiceDTO{}, invalid(updateSummary(idErr), errs)
	}

	return id, models.UpdateInvoiceDTO{
		ClientName: req.ClientName,
		Amount:     req.Amount,
		Status:     req.Status,
		DueDate:    req.DueDate,
	}, nil
}

// ValidateDelete parses the path id of a delete request.
func (v *Validator) ValidateDelete(pathID string) (uuid.UUID, error) {
	id, idErr := parseID(pathID)
	if idErr != nil {
		return uuid.Nil, invalid(SummaryInvalidID, []models.FieldError{*idErr})
	}
	return id, nil
}

// ValidateListQuery parses sortBy and ascending. Both are optional and
// default to created_at descending; other query keys are ignored.
func (v *Validator) ValidateListQuery(query url.Values) (models.ListQuery, error) {
	q := models.DefaultListQuery()
	var errs []models.FieldError

	if values, ok := query["sortBy"]; ok {
		col := models.SortColumn(firstValue(values))
		if lo.Contains(models.SortColumns, col) {
			q.SortBy = col
		} else {
			names := lo.Map(models.SortColumns, func(c models.SortColumn, _ int) string { return string(c) })
			errs = append(errs, models.FieldError{
				Field:   "sortBy",
				Message: "sortBy must be one of: " + strings.Join(names, ", "),
			})
		}
	}

	if values, ok := query["ascending"]; ok {
		switch firstValue(values) {
		case "true":
			q.Ascending = true
		case "false":
			q.Ascending = false
		default:
			errs = append(errs, models.FieldError{
				Field:   "ascending",
				Message: `ascending must be "true" or "false"`,
			})
		}
	}

	if len(errs) > 0 {
		return models.ListQuery{}, invalid(SummaryInvalidQuery, errs)
	}
	return q, nil
}

// fieldErrors holds at most one message per field, keyed by JSON name.
type fieldErrors map[string]string

func (f *fieldErrors) add(field, message string) {
	if *f == nil {
		*f = make(fieldErrors)
	}
	if _, exists := (*f)[field]; !exists {
		(*f)[field] = message
	}
}

// collect runs the struct rules and merges them with decode failures. A field
// that failed to decode is not reported a second time as missing.
func (v *Validator) collect(req interface{}, typeErrs fieldErrors) []models.FieldError {
	all := make(fieldErrors, len(typeErrs))
	for field, msg := range typeErrs {
		all.add(field, msg)
	}

	if err := v.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			all.add("body", err.Error())
		}
		for _, fe := range verrs {
			all.add(fe.Field(), ruleMessage(fe.Field(), fe.Tag()))
		}
	}

	out := make([]models.FieldError, 0, len(all))
	for _, field := range append([]string{"body"}, invoiceFields...) {
		if msg, ok := all[field]; ok {
			out = append(out, models.FieldError{Field: field, Message: msg})
		}
	}
	return out
}

func ruleMessage(field, tag string) string {
	switch field {
	case "client_name":
		return "Client name is required"
	case "due_date":
		return "Due date is required"
	case "amount":
		if tag == "required" {
			return "Amount is required"
		}
		return "Amount must be a positive number"
	case "status":
		return "Status must be one of: " + statusList()
	}
	return fmt.Sprintf("%s failed the %q rule", field, tag)
}

func typeMessage(field string) string {
	switch field {
	case "client_name":
		return "Client name must be a string"
	case "amount":
		return "Amount must be a number"
	case "status":
		return "Status must be one of: " + statusList()
	case "due_date":
		return "Due date must be a string"
	}
	return field + " has the wrong type"
}

func statusList() string {
	names := lo.Map(models.InvoiceStatuses, func(s models.InvoiceStatus, _ int) string { return string(s) })
	return strings.Join(names, ", ")
}

// decodeObject accepts an empty body as {} and rejects anything that is not
// a JSON object.
func decodeObject(body []byte) (map[string]json.RawMessage, *models.FieldError) {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]json.RawMessage{}, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return nil, &models.FieldError{Field: "body", Message: "Request body must be a JSON object"}
	}
	return raw, nil
}

// decodeField returns nil when name is absent. JSON null and values of the
// wrong type are recorded in errs.
func decodeField[T any](raw map[string]json.RawMessage, name string, errs *fieldErrors) *T {
	data, ok := raw[name]
	if !ok {
		return nil
	}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		errs.add(name, typeMessage(name))
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		errs.add(name, typeMessage(name))
		return nil
	}
	return &v
}

func decodeStatus(raw map[string]json.RawMessage, errs *fieldErrors) *models.InvoiceStatus {
	s := decodeField[string](raw, "status", errs)
	if s == nil {
		return nil
	}
	status := models.InvoiceStatus(*s)
	return &status
}

func parseID(pathID string) (uuid.UUID, *models.FieldError) {
	if pathID == "" {
		return uuid.Nil, &models.FieldError{Field: "id", Message: "Invoice ID is required"}
	}
	// uuid.Parse also takes braces, urn: prefixes and the 32-digit form;
	// only the canonical hyphenated form is accepted on the wire.
	id, err := uuid.Parse(pathID)
	if err != nil || len(pathID) != 36 {
		return uuid.Nil, &models.FieldError{Field: "id", Message: "Invoice ID must be a valid UUID"}
	}
	return id, nil
}

func updateSummary(idErr *models.FieldError) string {
	if idErr != nil {
		return SummaryInvalidID
	}
	return SummaryInvalidBody
}

func invalid(summary string, fields []models.FieldError) error {
	return &models.ValidationError{Summary: summary, Fields: fields}
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
