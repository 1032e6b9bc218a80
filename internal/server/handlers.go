package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/YuminosukeSato/houseprice/internal/store"
	"github.com/YuminosukeSato/houseprice/pipeline"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/pkg/log"
)

// PredictionIDHeader carries the stored prediction's ID on POST /api/predict.
const PredictionIDHeader = "X-Prediction-Id"

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch errors.Code(err) {
	case errors.CodeInvalidInput:
		return http.StatusBadRequest
	case errors.CodeNotReady:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := statusFor(err)
	body := errorBody{Message: err.Error(), Code: errors.Code(err)}
	if status == http.StatusInternalServerError {
		s.logger.Error(fallback, err, log.RequestIDKey, middleware.GetReqID(r.Context()))
		body.Message = fallback
	}
	writeJSON(w, status, body)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	req, err := pipeline.DecodeRequest(r.Body)
	if err != nil {
		s.writeError(w, r, err, "Prediction failed")
		return
	}

	pred, err := s.model.Predict(req)
	if err != nil {
		s.writeError(w, r, err, "Prediction failed")
		return
	}

	ctx := r.Context()
	prop, err := s.store.SaveProperty(ctx, req)
	if err != nil {
		s.writeError(w, r, err, "Failed to record prediction")
		return
	}
	rec, err := s.store.SavePrediction(ctx, prop.ID, *pred)
	if err != nil {
		s.writeError(w, r, err, "Failed to record prediction")
		return
	}

	w.Header().Set(PredictionIDHeader, rec.ID)
	w.Header().Set("Location", "/api/predictions/"+rec.ID)
	writeJSON(w, http.StatusOK, pred)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := s.model.Metrics()
	if err != nil {
		s.writeError(w, r, err, "Failed to retrieve model metrics")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// predictionView is a stored prediction joined with its request.
type predictionView struct {
	ID         string                     `json:"id"`
	PropertyID string                     `json:"propertyId"`
	Request    pipeline.PredictionRequest `json:"request"`
	Result     pipeline.Prediction        `json:"result"`
	CreatedAt  string                     `json:"createdAt"`
}

func (s *Server) handleGetPrediction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()

	rec, err := s.store.GetPrediction(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody{Message: "prediction not found"})
		return
	}
	if err != nil {
		s.writeError(w, r, err, "Failed to load prediction")
		return
	}
	prop, err := s.store.GetProperty(ctx, rec.PropertyID)
	if err != nil {
		s.writeError(w, r, err, "Failed to load prediction")
		return
	}

	writeJSON(w, http.StatusOK, predictionView{
		ID:         rec.ID,
		PropertyID: rec.PropertyID,
		Request:    prop.Request,
		Result:     rec.Result,
		CreatedAt:  rec.CreatedAt.Format(time.RFC3339),
	})
}
