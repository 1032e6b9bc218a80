// Package log defines standard attribute keys for the pricing pipeline.
//
// The keys follow a hierarchical naming convention (e.g. "model.name",
// "data.samples") to enable structured log analysis and filtering.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of estimator.
	// Examples: "LinearRegression", "StandardScaler", "LabelEncoder"
	ModelNameKey = "model.name"

	// OperationKey specifies the machine learning operation being performed.
	// Standard values: "fit", "predict", "transform", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component or package is logging.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the model lifecycle.
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"

	// CategoryKey records a categorical value seen by an encoder.
	CategoryKey = "data.category"

	// FieldKey names the request or dataset field a message refers to.
	FieldKey = "data.field"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// R2ScoreKey records R² coefficient of determination for regression.
	R2ScoreKey = "metrics.r2_score"

	// RMSEKey records root mean squared error on the held-out split.
	RMSEKey = "metrics.rmse"

	// MAEKey records mean absolute error on the held-out split.
	MAEKey = "metrics.mae"
)

// Prediction and Output Context
const (
	// EstimateKey records the point estimate of a prediction.
	EstimateKey = "preds.estimate"

	// ConfidenceKey records the reported prediction confidence.
	ConfidenceKey = "preds.confidence"

	// FallbackKey is true when a categorical input was encoded with the fallback code.
	FallbackKey = "preds.fallback"
)

// Error and Warning Context
const (
	// ErrorKey holds the error value itself.
	ErrorKey = "error"

	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// StacktraceKey contains stack trace information for debugging.
	StacktraceKey = "error.stacktrace"

	// WarningKey holds a structured warning object.
	WarningKey = "warning"
)

// Configuration and Transport
const (
	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"

	// SolverKey records the least-squares solver in use.
	SolverKey = "config.solver"

	// RequestIDKey correlates log lines of one HTTP request.
	RequestIDKey = "http.request_id"

	// StatusKey records the HTTP status code of a response.
	StatusKey = "http.status"

	// MethodKey and PathKey describe the HTTP request line.
	MethodKey = "http.method"
	PathKey   = "http.path"
)

// Standard attribute values.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
	OperationScore     = "score"
	OperationGenerate  = "generate"

	PhaseTraining   = "training"
	PhaseValidation = "validation"
	PhaseInference  = "inference"
)
