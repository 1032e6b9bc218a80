package linear

import (
	"strings"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// Solver selects how the least-squares problem is solved.
type Solver string

const (
	// SolverQR solves min ||Xw - y|| directly with a QR factorization.
	SolverQR Solver = "qr"
	// SolverNormalEquation solves (XᵀX)w = Xᵀy.
	SolverNormalEquation Solver = "normal"
)

// ParseSolver converts a configuration string to a Solver.
func ParseSolver(s string) (Solver, error) {
	switch Solver(strings.ToLower(strings.TrimSpace(s))) {
	case SolverQR, "":
		return SolverQR, nil
	case SolverNormalEquation, "normal_equation":
		return SolverNormalEquation, nil
	default:
		return "", errors.NewValidationError("solver", "must be qr or normal", s)
	}
}

// Option is a function that configures LinearRegression
type Option func(*LinearRegression)

// WithSolver sets the least-squares solver (default: SolverQR)
func WithSolver(solver Solver) Option {
	return func(lr *LinearRegression) {
		lr.solver = solver
	}
}

// WithFitIntercept sets whether to calculate the intercept
func WithFitIntercept(fit bool) Option {
	return func(lr *LinearRegression) {
		lr.fitIntercept = fit
	}
}

// WithParallelThreshold sets the row count above which design-matrix
// construction runs in parallel
func WithParallelThreshold(rows int) Option {
	return func(lr *LinearRegression) {
		lr.parallelThreshold = rows
	}
}
