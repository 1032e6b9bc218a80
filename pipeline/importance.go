package pipeline

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// computeImportance normalizes |w| to percentages and orders them descending.
// Equal values keep feature order.
func computeImportance(weights []float64) []FeatureImportance {
	abs := make([]float64, len(weights))
	for i, w := range weights {
		abs[i] = math.Abs(w)
	}
	total := floats.Sum(abs)

	pct := make([]float64, len(abs))
	for i, a := range abs {
		// 降順の安定ソートのため符号を反転させて昇順に並べる
		pct[i] = -errors.SafeDivide(a, total) * 100
	}
	inds := make([]int, len(pct))
	floats.ArgsortStable(pct, inds)

	out := make([]FeatureImportance, len(inds))
	for k, i := range inds {
		out[k] = FeatureImportance{Feature: FeatureNames[i], Importance: -pct[k]}
	}
	return out
}

// topImportance returns the first n entries rounded to one decimal.
func topImportance(all []FeatureImportance, n int) []FeatureImportance {
	if n > len(all) {
		n = len(all)
	}
	out := make([]FeatureImportance, n)
	for i := 0; i < n; i++ {
		out[i] = FeatureImportance{Feature: all[i].Feature, Importance: roundImportance(all[i].Importance)}
	}
	return out
}
