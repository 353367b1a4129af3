package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"fakturo/internal/core/apperror"
)

// PostgreSQL error codes we translate into structured errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgSerializationError  = "40001"
)

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// MapConstraintError converts PostgreSQL constraint violations into
// structured errors; other errors pass through unchanged. entity and
// field describe the uniqueness domain for duplicate mapping.
func MapConstraintError(err error, entity, field, value string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return apperror.NewDuplicate(entity, field, value).WithCause(err)
	case pgForeignKeyViolation:
		return apperror.NewConflict("record is referenced by other data").
			WithDetail("entity", entity).
			WithCause(err)
	case pgSerializationError:
		return apperror.NewConflict("transaction serialization failure, retry the operation").
			WithCause(err)
	}
	return err
}
