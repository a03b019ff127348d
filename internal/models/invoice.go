package models

import (
	"time"

	"github.com/google/uuid"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// DefaultInvoiceStatus is applied on create when the client sends no status.
const DefaultInvoiceStatus = InvoiceStatusDraft

// InvoiceStatuses lists every accepted status, in display order.
var InvoiceStatuses = []InvoiceStatus{
	InvoiceStatusDraft,
	InvoiceStatusSent,
	InvoiceStatusPaid,
	InvoiceStatusOverdue,
}

func (s InvoiceStatus) Valid() bool {
	for _, v := range InvoiceStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Invoice is the persisted row of the invoices table. ID and CreatedAt are
// assigned by the persistence layer and never taken from a client payload.
type Invoice struct {
	ID         uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ClientName string        `gorm:"type:text;not null" json:"client_name"`
	Amount     float64       `gorm:"not null" json:"amount"`
	Status     InvoiceStatus `gorm:"type:text;not null;index" json:"status"`
	DueDate    string        `gorm:"type:text;not null" json:"due_date"`
	CreatedAt  time.Time     `gorm:"not null;index" json:"created_at"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// CreateInvoiceDTO is Invoice without id and created_at. An empty Status
// means the client did not send one.
type CreateInvoiceDTO struct {
	ClientName string        `json:"client_name"`
	Amount     float64       `json:"amount"`
	Status     InvoiceStatus `json:"status,omitempty"`
	DueDate    string        `json:"due_date"`
}

// UpdateInvoiceDTO carries only the fields the client supplied; nil fields
// are left untouched in storage.
type UpdateInvoiceDTO struct {
	ClientName *string        `json:"client_name,omitempty"`
	Amount     *float64       `json:"amount,omitempty"`
	Status     *InvoiceStatus `json:"status,omitempty"`
	DueDate    *string        `json:"due_date,omitempty"`
}

// IsEmpty reports whether the update carries no field at all.
func (d UpdateInvoiceDTO) IsEmpty() bool {
	return d.ClientName == nil && d.Amount == nil && d.Status == nil && d.DueDate == nil
}

// Columns returns the supplied fields keyed by column name.
func (d UpdateInvoiceDTO) Columns() map[string]interface{} {
	cols := make(map[string]interface{}, 4)
	if d.ClientName != nil {
		cols["client_name"] = *d.ClientName
	}
	if d.Amount != nil {
		cols["amount"] = *d.Amount
	}
	if d.Status != nil {
		cols["status"] = string(*d.Status)
	}
	if d.DueDate != nil {
		cols["due_date"] = *d.DueDate
	}
	return cols
}

// SortColumn is a column the invoice listing may be ordered by.
type SortColumn string

const (
	SortByID         SortColumn = "id"
	SortByClientName SortColumn = "client_name"
	SortByAmount     SortColumn = "amount"
	SortByStatus     SortColumn = "status"
	SortByDueDate    SortColumn = "due_date"
	SortByCreatedAt  SortColumn = "created_at"
)

var SortColumns = []SortColumn{
	SortByID,
	SortByClientName,
	SortByAmount,
	SortByStatus,
	SortByDueDate,
	SortByCreatedAt,
}

// ListQuery orders an invoice listing. Zero values fall back to
// created_at descending.
type ListQuery struct {
	SortBy    SortColumn
	Ascending bool
}

func DefaultListQuery() ListQuery {
	return ListQuery{SortBy: SortByCreatedAt, Ascending: false}
}
