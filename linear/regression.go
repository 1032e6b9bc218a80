package linear

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/houseprice/core/model"
	"github.com/YuminosukeSato/houseprice/core/parallel"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// LinearRegression は最小二乗法による線形回帰モデル
type LinearRegression struct {
	model.BaseEstimator // BaseEstimatorを埋め込み

	Weights   *mat.VecDense // 重み（係数）
	Intercept float64       // 切片
	NFeatures int           // 特徴量の数

	solver            Solver
	fitIntercept      bool
	parallelThreshold int
}

// NewLinearRegression は新しい線形回帰モデルを作成する
//
// 使用例:
//
//	lr := linear.NewLinearRegression(linear.WithSolver(linear.SolverNormalEquation))
//	if err := lr.Fit(X, y); err != nil {
//	    return err
//	}
func NewLinearRegression(opts ...Option) *LinearRegression {
	lr := &LinearRegression{
		solver:            SolverQR,
		fitIntercept:      true,
		parallelThreshold: parallel.DefaultThreshold,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Solver returns the configured solver.
func (lr *LinearRegression) Solver() Solver {
	return lr.solver
}

// Fit はモデルを訓練データで学習させる
//
// SolverQR では設計行列をQR分解して直接解き、SolverNormalEquation では
// 正規方程式 (XᵀX)w = Xᵀy を解く。どちらも同じ解を与える。
func (lr *LinearRegression) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "LinearRegression.Fit")

	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("LinearRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}

	offset := 0
	if lr.fitIntercept {
		offset = 1
	}
	cols := c + offset
	if r < cols {
		return errors.NewModelError("LinearRegression.Fit",
			fmt.Sprintf("need at least %d samples, got %d", cols, r), errors.ErrSingularMatrix)
	}

	// 切片項のために X に 1 の列を追加: [1, X]
	design := mat.NewDense(r, cols, nil)
	yVec := mat.NewVecDense(r, nil)
	parallel.ParallelizeWithThreshold(r, lr.parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			if lr.fitIntercept {
				design.Set(i, 0, 1.0)
			}
			for j := 0; j < c; j++ {
				design.Set(i, j+offset, X.At(i, j))
			}
			yVec.SetVec(i, y.At(i, 0))
		}
	})

	if err := errors.CheckMatrix("LinearRegression.Fit", design); err != nil {
		return err
	}

	var coef mat.VecDense
	switch lr.solver {
	case SolverNormalEquation:
		err = solveNormalEquation(&coef, design, yVec)
	case SolverQR, "":
		err = coef.SolveVec(design, yVec)
	default:
		return errors.NewValidationError("solver", "must be qr or normal", string(lr.solver))
	}
	if err != nil {
		var cond mat.Condition
		if errors.As(err, &cond) {
			return errors.NewModelError("LinearRegression.Fit", "singular matrix", errors.ErrSingularMatrix)
		}
		return errors.Wrap(err, "LinearRegression.Fit")
	}

	weights := make([]float64, c)
	for j := 0; j < c; j++ {
		weights[j] = coef.AtVec(j + offset)
	}
	if err := errors.CheckNumericalStability("LinearRegression.Fit", weights); err != nil {
		return err
	}

	lr.Intercept = 0
	if lr.fitIntercept {
		lr.Intercept = coef.AtVec(0)
		if err := errors.CheckScalar("LinearRegression.Fit", lr.Intercept); err != nil {
			return err
		}
	}
	lr.NFeatures = c
	lr.Weights = mat.NewVecDense(c, weights)

	lr.SetFitted()
	return nil
}

// solveNormalEquation は (XᵀX)w = Xᵀy を解く
func solveNormalEquation(dst *mat.VecDense, design *mat.Dense, y *mat.VecDense) error {
	var xtx mat.Dense
	xtx.Mul(design.T(), design)

	var xty mat.VecDense
	xty.MulVec(design.T(), y)

	return dst.SolveVec(&xtx, &xty)
}

// Predict は入力データに対する予測を行う
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := lr.CheckFitted("LinearRegression", "Predict"); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, errors.NewDimensionError("LinearRegression.Predict", lr.NFeatures, c, 1)
	}

	// y = X * weights + intercept
	predictions := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		pred := lr.Intercept
		for j := 0; j < c; j++ {
			pred += X.At(i, j) * lr.Weights.AtVec(j)
		}
		predictions.Set(i, 0, pred)
	}

	return predictions, nil
}

// PredictVector は1サンプル分の予測値 w·x + b を返す
func (lr *LinearRegression) PredictVector(x []float64) (float64, error) {
	if err := lr.CheckFitted("LinearRegression", "PredictVector"); err != nil {
		return 0, err
	}
	if len(x) != lr.NFeatures {
		return 0, errors.NewDimensionError("LinearRegression.PredictVector", lr.NFeatures, len(x), 1)
	}
	return mat.Dot(lr.Weights, mat.NewVecDense(len(x), x)) + lr.Intercept, nil
}

// GetWeights は学習された重み（係数）のコピーを返す
func (lr *LinearRegression) GetWeights() []float64 {
	if lr.Weights == nil {
		return nil
	}

	weights := make([]float64, lr.Weights.Len())
	for i := 0; i < lr.Weights.Len(); i++ {
		weights[i] = lr.Weights.AtVec(i)
	}
	return weights
}

// GetIntercept は学習された切片を返す
func (lr *LinearRegression) GetIntercept() float64 {
	if !lr.IsFitted() {
		return 0
	}
	return lr.Intercept
}

// Score はモデルの決定係数（R²）を計算する
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	yPred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}

	r, _ := y.Dims()
	pr, _ := yPred.Dims()
	if r != pr {
		return 0, errors.NewDimensionError("LinearRegression.Score", pr, r, 0)
	}

	var yMean float64
	for i := 0; i < r; i++ {
		yMean += y.At(i, 0)
	}
	yMean /= float64(r)

	// 全変動 (TSS) と残差変動 (RSS)
	var tss, rss float64
	for i := 0; i < r; i++ {
		yTrue := y.At(i, 0)
		d := yTrue - yPred.At(i, 0)
		tss += (yTrue - yMean) * (yTrue - yMean)
		rss += d * d
	}

	if tss == 0 {
		return 0, errors.NewValueError("LinearRegression.Score", "total sum of squares is zero")
	}

	return 1 - rss/tss, nil
}

// String はモデルの文字列表現を返す
func (lr *LinearRegression) String() string {
	return fmt.Sprintf("LinearRegression(solver=%s, fit_intercept=%t, fitted=%t)",
		lr.solver, lr.fitIntercept, lr.IsFitted())
}

var _ model.Regressor = (*LinearRegression)(nil)
