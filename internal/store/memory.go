package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/YuminosukeSato/houseprice/pipeline"
)

// MemoryStore keeps records in maps. It is the default driver and loses
// everything on restart.
type MemoryStore struct {
	mu          sync.RWMutex
	properties  map[string]Property
	predictions map[string]PredictionRecord
}

// NewMemory returns an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		properties:  make(map[string]Property),
		predictions: make(map[string]PredictionRecord),
	}
}

func (s *MemoryStore) Migrate(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) SaveProperty(_ context.Context, req pipeline.PredictionRequest) (*Property, error) {
	p := Property{ID: uuid.NewString(), Request: req, CreatedAt: time.Now().UTC()}

	s.mu.Lock()
	s.properties[p.ID] = p
	s.mu.Unlock()

	return &p, nil
}

func (s *MemoryStore) SavePrediction(_ context.Context, propertyID string, result pipeline.Prediction) (*PredictionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.properties[propertyID]; !ok {
		return nil, notFound("property", propertyID)
	}
	result.FeatureImportance = append([]pipeline.FeatureImportance(nil), result.FeatureImportance...)
	r := PredictionRecord{ID: uuid.NewString(), PropertyID: propertyID, Result: result, CreatedAt: time.Now().UTC()}
	s.predictions[r.ID] = r
	return &r, nil
}

func (s *MemoryStore) GetProperty(_ context.Context, id string) (*Property, error) {
	s.mu.RLock()
	p, ok := s.properties[id]
	s.mu.RUnlock()
	if !ok {
		return nil, notFound("property", id)
	}
	return &p, nil
}

func (s *MemoryStore) GetPrediction(_ context.Context, id string) (*PredictionRecord, error) {
	s.mu.RLock()
	r, ok := s.predictions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, notFound("prediction", id)
	}
	r.Result.FeatureImportance = append([]pipeline.FeatureImportance(nil), r.Result.FeatureImportance...)
	return &r, nil
}
