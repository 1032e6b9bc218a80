package pipeline

import (
	"github.com/YuminosukeSato/houseprice/metrics"
	"github.com/YuminosukeSato/houseprice/preprocessing"
)

// FeatureNames are the display names of the model inputs, in feature order.
var FeatureNames = []string{
	"Square Footage",
	"Year Built",
	"Bedrooms",
	"Bathrooms",
	"Garage",
	"Property Type",
	"Location",
	"Pool",
	"Fireplace",
	"Hardwood Floors",
	"Recently Updated",
}

// FeatureImportance is one feature's share of the total absolute coefficient mass.
type FeatureImportance struct {
	Feature    string  `json:"feature" yaml:"feature"`
	Importance float64 `json:"importance" yaml:"importance"`
}

// Prediction is the result of Pipeline.Predict.
type Prediction struct {
	EstimatedPrice    float64             `json:"estimatedPrice" yaml:"estimatedPrice"`
	Confidence        float64             `json:"confidence" yaml:"confidence"`
	LowerBound        float64             `json:"lowerBound" yaml:"lowerBound"`
	UpperBound        float64             `json:"upperBound" yaml:"upperBound"`
	FeatureImportance []FeatureImportance `json:"featureImportance" yaml:"featureImportance"`

	// Encodings of the categorical inputs. Not part of the wire format.
	PropertyType preprocessing.Encoding `json:"-" yaml:"-"`
	Neighborhood preprocessing.Encoding `json:"-" yaml:"-"`
}

// UsedFallback reports whether either categorical input was unseen during training.
func (p *Prediction) UsedFallback() bool {
	return p.PropertyType.IsFallback() || p.Neighborhood.IsFallback()
}

// MetricsReport is the rounded, client-facing view of Evaluation.
type MetricsReport struct {
	RSquared    float64 `json:"rSquared" yaml:"rSquared"`
	RMSE        float64 `json:"rmse" yaml:"rmse"`
	MAE         float64 `json:"mae" yaml:"mae"`
	LastTrained string  `json:"lastTrained" yaml:"lastTrained"`
}

// Evaluation holds the unrounded held-out results.
type Evaluation struct {
	metrics.Summary

	TrainSize   int
	TestSize    int
	Actual      []float64
	Predicted   []float64
	LastTrained string
}
