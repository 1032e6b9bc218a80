// Package houseprice estimates residential property prices with an ordinary
// least squares model trained on a seeded synthetic housing dataset.
//
// The whole pipeline is deterministic: the same seed always yields the same
// dataset, the same train/test split and therefore the same coefficients and
// metrics.
//
// # Quick Start
//
//	p, err := pipeline.Train() // seed 42, 5000 records, 80/20 split
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pred, err := p.Predict(pipeline.PredictionRequest{
//	    SquareFootage: 2500,
//	    YearBuilt:     2015,
//	    Bedrooms:      4,
//	    Bathrooms:     3,
//	    Garage:        2,
//	    PropertyType:  "single-family",
//	    Neighborhood:  "suburbs",
//	    HasPool:       true,
//	})
//
//	fmt.Println(pred.EstimatedPrice, pred.LowerBound, pred.UpperBound)
//
// # Packages
//
//   - datasets: synthetic housing generator
//   - preprocessing: LabelEncoder (with unseen-value fallback) and StandardScaler
//   - modelselection: seeded train/test split
//   - linear: LinearRegression (QR or normal equation)
//   - metrics: R², RMSE, MAE, MAPE
//   - pipeline: training, evaluation, prediction and feature importance
//   - report: charts (gonum/plot) and human-readable output
//   - core/model: estimator interfaces and base types
//   - core/parallel: row-parallel helpers
//   - pkg/errors: error types and codes (cockroachdb/errors)
//   - pkg/log: structured logging (zerolog)
//   - internal/config, internal/store, internal/server: CLI and HTTP service plumbing
//
// # Command line
//
//	houseprice --metrics
//	echo '{...}' | houseprice
//	houseprice serve --port 8080
//	houseprice plot --importance importance.png --residuals residuals.svg
//	houseprice dataset --out houses.csv
package houseprice
