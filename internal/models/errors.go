package models

import (
	"fmt"
	"strings"
)

// FieldError is a single rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when client input fails validation. It always
// carries every failing field, not only the first one.
type ValidationError struct {
	Summary string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("%s: %s", e.Summary, strings.Join(parts, "; "))
}

// NotFoundError is returned when an update targets a row that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ConfigurationError means the persistence gateway was never configured.
// It is a deployment problem, not something a retry can fix.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// Persistence error codes that are not Postgres SQLSTATEs.
const (
	PersistenceCodeUnavailable = "unavailable"
	PersistenceCodeTimeout     = "timeout"
	PersistenceCodeUnknown     = "unknown"
)

// PersistenceError is the normalized form of every failure reported by the
// storage engine. Code is a SQLSTATE for server-side errors or one of the
// PersistenceCode constants.
type PersistenceError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
	Err     error  `json:"-"`
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error %s: %s", e.Code, e.Message)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Unavailable reports whether the storage engine could not be reached at all,
// as opposed to rejecting the statement.
func (e *PersistenceError) Unavailable() bool {
	if e.Code == PersistenceCodeUnavailable || e.Code == PersistenceCodeTimeout {
		return true
	}
	// SQLSTATE class 08: connection exception.
	return strings.HasPrefix(e.Code, "08")
}
