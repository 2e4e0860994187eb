package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"github.com/user/imagewatch/internal/entity"
	"github.com/user/imagewatch/internal/repository"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// Persisted status codes. These never leave this package.
const (
	statusCodePending = 1
	statusCodeActive  = 2
	statusCodeFailed  = -1
)

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}

// mapInsertErr converts driver uniqueness errors into repository.ErrDuplicateKey.
func mapInsertErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return repository.ErrDuplicateKey
	}
	return fmt.Errorf("%w: failed to insert %s: %w", repository.ErrPersistence, what, err)
}

func statusToCode(s entity.Status) (int, error) {
	switch s {
	case entity.StatusPending:
		return statusCodePending, nil
	case entity.StatusActive:
		return statusCodeActive, nil
	case entity.StatusFailed:
		return statusCodeFailed, nil
	default:
		return 0, fmt.Errorf("unknown status %d", s)
	}
}

func statusFromCode(code int) (entity.Status, error) {
	switch code {
	case statusCodePending:
		return entity.StatusPending, nil
	case statusCodeActive:
		return entity.StatusActive, nil
	case statusCodeFailed:
		return entity.StatusFailed, nil
	default:
		return 0, fmt.Errorf("unknown status code %d", code)
	}
}

// execRequireRows validates that an exec affected at least one row.
// Returns err if non-nil, or notFoundErr if nothing changed.
func execRequireRows(result sql.Result, err, notFoundErr error) error {
	if err != nil {
		return err
	}
	n, affectedErr := result.RowsAffected()
	if affectedErr != nil {
		return affectedErr
	}
	if n == 0 {
		return notFoundErr
	}
	return nil
}
