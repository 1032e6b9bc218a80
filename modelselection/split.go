// Package modelselection splits sample indices into train and test sets.
package modelselection

import (
	"math"
	"math/rand/v2"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// Split holds disjoint index sets in shuffled order.
type Split struct {
	Train []int
	Test  []int
}

// TrainTestSplit shuffles 0..n-1 with a PCG stream seeded by seed and takes the
// first ceil(n*testSize) indices as the test set. The same arguments always give
// the same split.
func TrainTestSplit(n int, testSize float64, seed uint64) (Split, error) {
	if n < 2 {
		return Split{}, errors.NewValidationError("n", "need at least 2 samples to split", n)
	}
	if !(testSize > 0 && testSize < 1) {
		return Split{}, errors.NewValidationError("test_size", "must be in (0, 1)", testSize)
	}

	nTest := int(math.Ceil(float64(n) * testSize))
	if nTest >= n {
		return Split{}, errors.NewValidationError("test_size", "leaves no training samples", testSize)
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	perm := rng.Perm(n)

	return Split{
		Test:  perm[:nTest:nTest],
		Train: perm[nTest:],
	}, nil
}
