package repository

import (
	"context"
	"net"

	"invoice-management-backend/internal/models"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgconn"
)

var errNotConfigured = &models.ConfigurationError{
	Message: "Invoice database is not configured. Set SUPABASE_DB_URL and SUPABASE_SERVICE_KEY.",
}

// normalizeError turns whatever the driver returned into a PersistenceError
// so callers never need to know about pgx or gorm error types.
func normalizeError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &models.PersistenceError{
			Code:    pgErr.Code,
			Message: pgErr.Message,
			Details: pgErr.Detail,
			Hint:    pgErr.Hint,
			Err:     err,
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &models.PersistenceError{
			Code:    models.PersistenceCodeTimeout,
			Message: "database did not respond in time",
			Err:     err,
		}
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connErr) || errors.As(err, &netErr) {
		return &models.PersistenceError{
			Code:    models.PersistenceCodeUnavailable,
			Message: "database is unreachable",
			Details: err.Error(),
			Err:     err,
		}
	}

	return &models.PersistenceError{
		Code:    models.PersistenceCodeUnknown,
		Message: err.Error(),
		Err:     err,
	}
}
