// Package store records served predictions so they can be looked up later.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/YuminosukeSato/houseprice/internal/config"
	"github.com/YuminosukeSato/houseprice/pipeline"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// ErrNotFound is returned by the Get methods for unknown IDs.
var ErrNotFound = errors.New("store: not found")

// Property is a prediction request as it was received.
type Property struct {
	ID        string                     `json:"id"`
	Request   pipeline.PredictionRequest `json:"request"`
	CreatedAt time.Time                  `json:"createdAt"`
}

// PredictionRecord is a served prediction linked to its Property.
type PredictionRecord struct {
	ID         string              `json:"id"`
	PropertyID string              `json:"propertyId"`
	Result     pipeline.Prediction `json:"result"`
	CreatedAt  time.Time           `json:"createdAt"`
}

// Store defines the persistence interface for prediction history.
type Store interface {
	SaveProperty(ctx context.Context, req pipeline.PredictionRequest) (*Property, error)
	SavePrediction(ctx context.Context, propertyID string, result pipeline.Prediction) (*PredictionRecord, error)
	GetProperty(ctx context.Context, id string) (*Property, error)
	GetPrediction(ctx context.Context, id string) (*PredictionRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates the store selected by cfg.Driver and runs its migration.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case config.DriverMemory, "":
		s = NewMemory()
	case config.DriverSQLite:
		s, err = NewSQLite(cfg.DSN)
	case config.DriverPostgres:
		s, err = NewPostgres(ctx, cfg.DSN)
	default:
		return nil, errors.NewValidationError("store.driver", "must be memory, sqlite or postgres", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func notFound(entity, id string) error {
	return errors.Wrapf(ErrNotFound, "%s %s", entity, id)
}

func encode(op string, v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: marshal", op)
	}
	return b, nil
}

func decode(op string, data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "%s: unmarshal", op)
	}
	return nil
}
