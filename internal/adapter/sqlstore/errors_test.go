package sqlstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/imagewatch/internal/adapter/sqlstore"
	"github.com/user/imagewatch/internal/entity"
	"github.com/user/imagewatch/internal/repository"
)

func newMockStore(t *testing.T) (*sqlstore.Store, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return sqlstore.New(sqlx.NewDb(mockDB, sqlstore.DriverPostgres)), mock
}

func TestInsertLinkWithImage_MapsPostgresUniqueViolation(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO links .+ VALUES \(\$1, \$2, \$3, \$4, \$5\)`).
		WithArgs(int64(7), "http://x/a", "A", 1, sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	_, _, err := s.InsertLinkWithImage(context.Background(), entity.NewItem{
		SourceID: 7, LinkURL: "http://x/a", LinkTitle: "A", ImageURL: "http://x/a.jpg",
	})
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertLinkWithImage_OtherErrorsArePersistenceErrors(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO links`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO images`).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, _, err := s.InsertLinkWithImage(context.Background(), entity.NewItem{SourceID: 7, LinkURL: "http://x/a", ImageURL: "http://x/a.jpg"})
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrPersistence)
	assert.NotErrorIs(t, err, repository.ErrDuplicateKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateImageStatus_PersistsStatusCodes(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE images`).
		WithArgs(-1, sqlmock.AnyArg(), int64(3), 1, -1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.UpdateImageStatus(context.Background(), 3, entity.StatusFailed))
	assert.NoError(t, mock.ExpectationsWereMet())
}
