package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/houseprice/internal/config"
	"github.com/YuminosukeSato/houseprice/internal/store"
	"github.com/YuminosukeSato/houseprice/pipeline"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/pkg/log"
)

const validBody = `{"squareFootage":2500,"yearBuilt":2015,"bedrooms":4,"bathrooms":3,"garage":2,
"propertyType":"single-family","neighborhood":"suburbs","hasPool":true,"hasFireplace":true,
"hasHardwoodFloors":true,"recentlyUpdated":false}`

// fakeModel returns canned results.
type fakeModel struct {
	pred       *pipeline.Prediction
	err        error
	metrics    pipeline.MetricsReport
	metricsErr error
}

func (f *fakeModel) Predict(pipeline.PredictionRequest) (*pipeline.Prediction, error) {
	if f.err != nil {
		return nil, f.err
	}
	p := *f.pred
	return &p, nil
}

func (f *fakeModel) Metrics() (pipeline.MetricsReport, error) {
	return f.metrics, f.metricsErr
}

func newFake() *fakeModel {
	return &fakeModel{
		pred: &pipeline.Prediction{
			EstimatedPrice: 9200000,
			Confidence:     0.92,
			LowerBound:     7000000,
			UpperBound:     11400000,
			FeatureImportance: []pipeline.FeatureImportance{
				{Feature: "Square Footage", Importance: 40},
			},
		},
		metrics: pipeline.MetricsReport{RSquared: 0.62, RMSE: 1800000, MAE: 1400000, LastTrained: "2024-12-16"},
	}
}

func testConfig() config.ServerConfig {
	return config.ServerConfig{Port: 0, CORSOrigins: []string{"*"}, ShutdownTimeoutSecs: 1}
}

func newTestServer(t *testing.T, m Model, cfg config.ServerConfig) (*Server, *log.TestLogger) {
	t.Helper()
	logger, _ := log.NewTestLogger(log.LevelDebug)
	return New(m, store.NewMemory(), cfg, logger), logger
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	return rr
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t, newFake(), testConfig())

	rr := do(t, s.Handler(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestPredict_RecordsAndServesHistory(t *testing.T) {
	s, logger := newTestServer(t, newFake(), testConfig())

	rr := do(t, s.Handler(), http.MethodPost, "/api/predict", validBody)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var pred pipeline.Prediction
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pred))
	assert.InDelta(t, 9200000, pred.EstimatedPrice, 1e-6)
	assert.InDelta(t, 0.92, pred.Confidence, 1e-12)

	id := rr.Header().Get(PredictionIDHeader)
	require.NotEmpty(t, id)
	assert.Equal(t, "/api/predictions/"+id, rr.Header().Get("Location"))

	rr = do(t, s.Handler(), http.MethodGet, "/api/predictions/"+id, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var view map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.Equal(t, id, view["id"])
	req := view["request"].(map[string]any)
	assert.Equal(t, "suburbs", req["neighborhood"])

	assert.True(t, logger.ContainsMessage("Request served"))
	assert.True(t, logger.ContainsField("http.status", float64(200)))
}

func TestPredict_Errors(t *testing.T) {
	tests := []struct {
		name     string
		model    *fakeModel
		body     string
		wantCode int
		wantMsg  string
	}{
		{
			name:     "malformed json",
			model:    newFake(),
			body:     `{"squareFootage":`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "wrong type",
			model:    newFake(),
			body:     strings.Replace(validBody, `"bedrooms":4`, `"bedrooms":"four"`, 1),
			wantCode: http.StatusBadRequest,
			wantMsg:  "bedrooms",
		},
		{
			name:     "not ready",
			model:    &fakeModel{err: errors.NewNotReadyError("pipeline", "predict")},
			body:     validBody,
			wantCode: http.StatusServiceUnavailable,
		},
		{
			name:     "internal",
			model:    &fakeModel{err: errors.New("boom")},
			body:     validBody,
			wantCode: http.StatusInternalServerError,
			wantMsg:  "Prediction failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, tt.model, testConfig())
			rr := do(t, s.Handler(), http.MethodPost, "/api/predict", tt.body)
			assert.Equal(t, tt.wantCode, rr.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.NotEmpty(t, body["message"])
			if tt.wantMsg != "" {
				assert.Contains(t, body["message"], tt.wantMsg)
			}
			assert.Empty(t, rr.Header().Get(PredictionIDHeader))
		})
	}
}

func TestPredict_NilPipelineIsNotReady(t *testing.T) {
	var p *pipeline.Pipeline
	s, _ := newTestServer(t, p, testConfig())

	rr := do(t, s.Handler(), http.MethodPost, "/api/predict", validBody)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = do(t, s.Handler(), http.MethodGet, "/api/model-metrics", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestModelMetrics(t *testing.T) {
	s, _ := newTestServer(t, newFake(), testConfig())

	rr := do(t, s.Handler(), http.MethodGet, "/api/model-metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var m pipeline.MetricsReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m))
	assert.Equal(t, "2024-12-16", m.LastTrained)
	assert.InDelta(t, 0.62, m.RSquared, 1e-12)
}

func TestModelMetrics_Failure(t *testing.T) {
	f := newFake()
	f.metricsErr = errors.New("disk on fire")
	s, logger := newTestServer(t, f, testConfig())

	rr := do(t, s.Handler(), http.MethodGet, "/api/model-metrics", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "Failed to retrieve model metrics")
	assert.NotContains(t, rr.Body.String(), "disk on fire")
	assert.True(t, logger.ContainsMessage("Failed to retrieve model metrics"))
}

func TestGetPrediction_NotFound(t *testing.T) {
	s, _ := newTestServer(t, newFake(), testConfig())

	rr := do(t, s.Handler(), http.MethodGet, "/api/predictions/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = 0.001
	cfg.RateBurst = 2
	s, _ := newTestServer(t, newFake(), cfg)

	assert.Equal(t, http.StatusOK, do(t, s.Handler(), http.MethodGet, "/api/model-metrics", "").Code)
	assert.Equal(t, http.StatusOK, do(t, s.Handler(), http.MethodGet, "/api/model-metrics", "").Code)

	rr := do(t, s.Handler(), http.MethodGet, "/api/model-metrics", "")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))

	// /health is outside the limiter.
	assert.Equal(t, http.StatusOK, do(t, s.Handler(), http.MethodGet, "/health", "").Code)
}

func TestCORS(t *testing.T) {
	cfg := testConfig()
	cfg.CORSOrigins = []string{"https://app.example.com"}
	s, _ := newTestServer(t, newFake(), cfg)

	r := httptest.NewRequest(http.MethodOptions, "/api/predict", nil)
	r.Header.Set("Origin", "https://app.example.com")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, r)

	assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))

	r = httptest.NewRequest(http.MethodGet, "/health", nil)
	r.Header.Set("Origin", "https://evil.example.com")
	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, r)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestPredict_WithTrainedPipeline(t *testing.T) {
	p, err := pipeline.Train(pipeline.WithSamples(1000), pipeline.WithLogger(log.NewNopLogger()))
	require.NoError(t, err)
	s, _ := newTestServer(t, p, testConfig())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewBufferString(validBody))
			rr := httptest.NewRecorder()
			s.Handler().ServeHTTP(rr, r)
			assert.Equal(t, http.StatusOK, rr.Code)
		}()
	}
	wg.Wait()
}

func TestServe_GracefulShutdown(t *testing.T) {
	s, _ := newTestServer(t, newFake(), testConfig())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
