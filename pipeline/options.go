package pipeline

import (
	"github.com/YuminosukeSato/houseprice/linear"
	"github.com/YuminosukeSato/houseprice/pkg/log"
)

// Defaults used by Train when no option overrides them.
const (
	DefaultSeed     uint64  = 42
	DefaultSamples          = 5000
	DefaultTestSize float64 = 0.2
)

type settings struct {
	seed     uint64
	samples  int
	testSize float64
	solver   linear.Solver
	logger   log.Logger
}

func defaultSettings() settings {
	return settings{
		seed:     DefaultSeed,
		samples:  DefaultSamples,
		testSize: DefaultTestSize,
		solver:   linear.SolverQR,
	}
}

// Option configures Train.
type Option func(*settings)

// WithSeed sets the seed shared by data generation and the train/test split.
func WithSeed(seed uint64) Option {
	return func(s *settings) { s.seed = seed }
}

// WithSamples sets the number of synthetic records.
func WithSamples(n int) Option {
	return func(s *settings) { s.samples = n }
}

// WithTestSize sets the held-out fraction.
func WithTestSize(f float64) Option {
	return func(s *settings) { s.testSize = f }
}

// WithSolver selects the least-squares solver.
func WithSolver(solver linear.Solver) Option {
	return func(s *settings) { s.solver = solver }
}

// WithLogger sets the logger used during training and prediction.
func WithLogger(l log.Logger) Option {
	return func(s *settings) { s.logger = l }
}
