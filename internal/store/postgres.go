package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/YuminosukeSato/houseprice/pipeline"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// Pool is the subset of *pgxpool.Pool the store needs. pgxmock satisfies it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, errors.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 1
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, errors.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS properties (
	id         TEXT PRIMARY KEY,
	request    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS predictions (
	id          TEXT PRIMARY KEY,
	property_id TEXT NOT NULL REFERENCES properties(id),
	result      JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_predictions_property_id ON predictions(property_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return errors.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveProperty(ctx context.Context, req pipeline.PredictionRequest) (*Property, error) {
	data, err := encode("postgres", req)
	if err != nil {
		return nil, err
	}
	p := &Property{ID: uuid.NewString(), Request: req, CreatedAt: time.Now().UTC()}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO properties (id, request, created_at) VALUES ($1, $2, $3)`,
		p.ID, data, p.CreatedAt,
	)
	if err != nil {
		return nil, errors.Wrap(err, "postgres: insert property")
	}
	return p, nil
}

func (s *PostgresStore) SavePrediction(ctx context.Context, propertyID string, result pipeline.Prediction) (*PredictionRecord, error) {
	data, err := encode("postgres", result)
	if err != nil {
		return nil, err
	}
	r := &PredictionRecord{ID: uuid.NewString(), PropertyID: propertyID, Result: result, CreatedAt: time.Now().UTC()}

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO predictions (id, property_id, result, created_at)
		 SELECT $1, id, $3, $4 FROM properties WHERE id = $2`,
		r.ID, propertyID, data, r.CreatedAt,
	)
	if err != nil {
		return nil, errors.Wrap(err, "postgres: insert prediction")
	}
	if tag.RowsAffected() == 0 {
		return nil, notFound("property", propertyID)
	}
	return r, nil
}

func (s *PostgresStore) GetProperty(ctx context.Context, id string) (*Property, error) {
	var (
		p    Property
		data []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, request, created_at FROM properties WHERE id = $1`, id,
	).Scan(&p.ID, &data, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("property", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "postgres: get property")
	}
	if err := decode("postgres", data, &p.Request); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) GetPrediction(ctx context.Context, id string) (*PredictionRecord, error) {
	var (
		r    PredictionRecord
		data []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, property_id, result, created_at FROM predictions WHERE id = $1`, id,
	).Scan(&r.ID, &r.PropertyID, &data, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("prediction", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "postgres: get prediction")
	}
	if err := decode("postgres", data, &r.Result); err != nil {
		return nil, err
	}
	return &r, nil
}
