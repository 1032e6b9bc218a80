package pipeline

import (
	"encoding/json"
	"io"
	"math"
	"strings"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// PredictionRequest is one property to price. It mirrors a training record
// without the price.
type PredictionRequest struct {
	SquareFootage     float64 `json:"squareFootage" yaml:"squareFootage"`
	YearBuilt         int     `json:"yearBuilt" yaml:"yearBuilt"`
	Bedrooms          int     `json:"bedrooms" yaml:"bedrooms"`
	Bathrooms         float64 `json:"bathrooms" yaml:"bathrooms"`
	Garage            int     `json:"garage" yaml:"garage"`
	PropertyType      string  `json:"propertyType" yaml:"propertyType"`
	Neighborhood      string  `json:"neighborhood" yaml:"neighborhood"`
	HasPool           bool    `json:"hasPool" yaml:"hasPool"`
	HasFireplace      bool    `json:"hasFireplace" yaml:"hasFireplace"`
	HasHardwoodFloors bool    `json:"hasHardwoodFloors" yaml:"hasHardwoodFloors"`
	RecentlyUpdated   bool    `json:"recentlyUpdated" yaml:"recentlyUpdated"`
}

// Validate rejects values no property can have. Category strings are not
// checked here; unknown values are handled by the encoders.
func (r PredictionRequest) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"squareFootage", r.SquareFootage},
		{"bathrooms", r.Bathrooms},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return errors.NewMalformedInputError(f.name, "must be a finite number", f.v)
		}
		if f.v < 0 {
			return errors.NewMalformedInputError(f.name, "must not be negative", f.v)
		}
	}
	for _, f := range []struct {
		name string
		v    int
	}{
		{"yearBuilt", r.YearBuilt},
		{"bedrooms", r.Bedrooms},
		{"garage", r.Garage},
	} {
		if f.v < 0 {
			return errors.NewMalformedInputError(f.name, "must not be negative", f.v)
		}
	}
	return nil
}

// vector builds the model input in feature order.
func (r PredictionRequest) vector(propertyTypeCode, neighborhoodCode int) []float64 {
	return []float64{
		r.SquareFootage,
		float64(r.YearBuilt),
		float64(r.Bedrooms),
		r.Bathrooms,
		float64(r.Garage),
		float64(propertyTypeCode),
		float64(neighborhoodCode),
		boolToFloat(r.HasPool),
		boolToFloat(r.HasFireplace),
		boolToFloat(r.HasHardwoodFloors),
		boolToFloat(r.RecentlyUpdated),
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// wireRequest uses pointers so that absent fields can be told apart from zero values.
type wireRequest struct {
	SquareFootage     *float64 `json:"squareFootage"`
	YearBuilt         *int     `json:"yearBuilt"`
	Bedrooms          *int     `json:"bedrooms"`
	Bathrooms         *float64 `json:"bathrooms"`
	Garage            *int     `json:"garage"`
	PropertyType      *string  `json:"propertyType"`
	Neighborhood      *string  `json:"neighborhood"`
	HasPool           *bool    `json:"hasPool"`
	HasFireplace      *bool    `json:"hasFireplace"`
	HasHardwoodFloors *bool    `json:"hasHardwoodFloors"`
	RecentlyUpdated   *bool    `json:"recentlyUpdated"`
}

// DecodeRequest reads one JSON prediction request. Every field is required;
// a missing field, an unknown field or a value of the wrong type yields a
// *errors.MalformedInputError naming the field.
func DecodeRequest(r io.Reader) (PredictionRequest, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var w wireRequest
	if err := dec.Decode(&w); err != nil {
		return PredictionRequest{}, decodeError(err)
	}
	// 末尾の空白以外は受け付けない
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return PredictionRequest{}, errors.NewMalformedInputError("", "unexpected data after JSON object", nil)
	}

	missing := func(field string) error {
		return errors.NewMalformedInputError(field, "is required", nil)
	}
	switch {
	case w.SquareFootage == nil:
		return PredictionRequest{}, missing("squareFootage")
	case w.YearBuilt == nil:
		return PredictionRequest{}, missing("yearBuilt")
	case w.Bedrooms == nil:
		return PredictionRequest{}, missing("bedrooms")
	case w.Bathrooms == nil:
		return PredictionRequest{}, missing("bathrooms")
	case w.Garage == nil:
		return PredictionRequest{}, missing("garage")
	case w.PropertyType == nil:
		return PredictionRequest{}, missing("propertyType")
	case w.Neighborhood == nil:
		return PredictionRequest{}, missing("neighborhood")
	case w.HasPool == nil:
		return PredictionRequest{}, missing("hasPool")
	case w.HasFireplace == nil:
		return PredictionRequest{}, missing("hasFireplace")
	case w.HasHardwoodFloors == nil:
		return PredictionRequest{}, missing("hasHardwoodFloors")
	case w.RecentlyUpdated == nil:
		return PredictionRequest{}, missing("recentlyUpdated")
	}

	req := PredictionRequest{
		SquareFootage:     *w.SquareFootage,
		YearBuilt:         *w.YearBuilt,
		Bedrooms:          *w.Bedrooms,
		Bathrooms:         *w.Bathrooms,
		Garage:            *w.Garage,
		PropertyType:      *w.PropertyType,
		Neighborhood:      *w.Neighborhood,
		HasPool:           *w.HasPool,
		HasFireplace:      *w.HasFireplace,
		HasHardwoodFloors: *w.HasHardwoodFloors,
		RecentlyUpdated:   *w.RecentlyUpdated,
	}
	if err := req.Validate(); err != nil {
		return PredictionRequest{}, err
	}
	return req, nil
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.Is(err, io.EOF):
		return errors.NewMalformedInputError("", "request body is empty", nil)
	case errors.As(err, &typeErr):
		return errors.NewMalformedInputError(typeErr.Field, "must be of type "+typeErr.Type.String(), typeErr.Value)
	case errors.As(err, &syntaxErr):
		return errors.NewMalformedInputError("", "invalid JSON: "+syntaxErr.Error(), nil)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return errors.NewMalformedInputError(field, "is not a known field", nil)
	default:
		return errors.NewMalformedInputError("", err.Error(), nil)
	}
}
