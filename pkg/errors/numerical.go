package errors

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// maxReported は NumericalInstabilityError に載せる値の上限
const maxReported = 10

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// CheckNumericalStability は values 中の最初の NaN/Inf の位置を報告する
func CheckNumericalStability(operation string, values []float64) error {
	for i, v := range values {
		if !finite(v) {
			end := min(len(values), i+maxReported)
			return NewNumericalInstabilityError(operation, append([]float64(nil), values[i:end]...), i)
		}
	}
	return nil
}

// CheckScalar は単一の値を検査する
func CheckScalar(operation string, value float64) error {
	if !finite(value) {
		return NewNumericalInstabilityError(operation, []float64{value}, 0)
	}
	return nil
}

// CheckMatrix は行列全体を検査する。Index は行優先で平坦化した位置。
func CheckMatrix(operation string, m mat.Matrix) error {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := m.At(i, j); !finite(v) {
				return NewNumericalInstabilityError(operation, []float64{v}, i*c+j)
			}
		}
	}
	return nil
}

// SafeDivide はほぼ0での除算を0として扱う
func SafeDivide(numerator, denominator float64) float64 {
	if math.Abs(denominator) < 1e-10 {
		return 0
	}
	return numerator / denominator
}
