package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresWithPool(mock), mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS properties`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveProperty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO properties \(id, request, created_at\) VALUES \(\$1, \$2, \$3\)`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	p, err := s.SaveProperty(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, sampleRequest(), p.Request)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SavePrediction(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO predictions`).
		WithArgs(pgxmock.AnyArg(), "prop-1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	r, err := s.SavePrediction(context.Background(), "prop-1", samplePrediction())
	require.NoError(t, err)
	assert.Equal(t, "prop-1", r.PropertyID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SavePrediction_UnknownProperty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO predictions`).
		WithArgs(pgxmock.AnyArg(), "missing", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	_, err := s.SavePrediction(context.Background(), "missing", samplePrediction())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetProperty(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	created := time.Date(2024, 12, 16, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, request, created_at FROM properties WHERE id = \$1`).
		WithArgs("prop-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "request", "created_at"}).
			AddRow("prop-1", []byte(`{"squareFootage":2500,"yearBuilt":2015,"bedrooms":4,"bathrooms":3,"garage":2,"propertyType":"single-family","neighborhood":"suburbs","hasPool":true,"hasFireplace":true,"hasHardwoodFloors":true,"recentlyUpdated":false}`), created))

	p, err := s.GetProperty(context.Background(), "prop-1")
	require.NoError(t, err)
	assert.Equal(t, sampleRequest(), p.Request)
	assert.Equal(t, created, p.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetPrediction_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, property_id, result, created_at FROM predictions WHERE id = \$1`).
		WithArgs("nonexistent").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetPrediction(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetPrediction_BadJSON(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, property_id, result, created_at FROM predictions`).
		WithArgs("pred-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "property_id", "result", "created_at"}).
			AddRow("pred-1", "prop-1", []byte(`{not json`), time.Now()))

	_, err := s.GetPrediction(context.Background(), "pred-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
	assert.NoError(t, mock.ExpectationsWereMet())
}
