package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/YuminosukeSato/houseprice/pipeline"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS properties (
	id         TEXT PRIMARY KEY,
	request    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS predictions (
	id          TEXT PRIMARY KEY,
	property_id TEXT NOT NULL REFERENCES properties(id),
	result      TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_predictions_property_id ON predictions(property_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return errors.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveProperty(ctx context.Context, req pipeline.PredictionRequest) (*Property, error) {
	data, err := encode("sqlite", req)
	if err != nil {
		return nil, err
	}
	p := &Property{ID: uuid.NewString(), Request: req, CreatedAt: time.Now().UTC()}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO properties (id, request, created_at) VALUES (?, ?, ?)`,
		p.ID, string(data), p.CreatedAt,
	)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite: insert property")
	}
	return p, nil
}

func (s *SQLiteStore) SavePrediction(ctx context.Context, propertyID string, result pipeline.Prediction) (*PredictionRecord, error) {
	if _, err := s.GetProperty(ctx, propertyID); err != nil {
		return nil, err
	}
	data, err := encode("sqlite", result)
	if err != nil {
		return nil, err
	}
	r := &PredictionRecord{ID: uuid.NewString(), PropertyID: propertyID, Result: result, CreatedAt: time.Now().UTC()}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO predictions (id, property_id, result, created_at) VALUES (?, ?, ?, ?)`,
		r.ID, propertyID, string(data), r.CreatedAt,
	)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite: insert prediction")
	}
	return r, nil
}

func (s *SQLiteStore) GetProperty(ctx context.Context, id string) (*Property, error) {
	var (
		p    Property
		data string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, request, created_at FROM properties WHERE id = ?`, id,
	).Scan(&p.ID, &data, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("property", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "sqlite: get property")
	}
	if err := decode("sqlite", []byte(data), &p.Request); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLiteStore) GetPrediction(ctx context.Context, id string) (*PredictionRecord, error) {
	var (
		r    PredictionRecord
		data string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, property_id, result, created_at FROM predictions WHERE id = ?`, id,
	).Scan(&r.ID, &r.PropertyID, &data, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("prediction", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "sqlite: get prediction")
	}
	if err := decode("sqlite", []byte(data), &r.Result); err != nil {
		return nil, err
	}
	return &r, nil
}
