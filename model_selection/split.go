// Package model_selection partitions a dataset into train and test rows.
package model_selection

import (
	"math/rand/v2"
	"sort"

	"github.com/JoeRonaldson/Predict-1500/dataset"
	"github.com/JoeRonaldson/Predict-1500/pkg/errors"
)

// Split is a partition of a dataset into disjoint train and test rows.
type Split struct {
	Train *dataset.Dataset
	Test  *dataset.Dataset

	// TrainIndex and TestIndex are the source row numbers of each subset, in
	// subset order.
	TrainIndex []int
	TestIndex  []int
}

type splitConfig struct {
	randomState int64
}

// SplitOption configures TrainTestSplit and Shuffle.
type SplitOption func(*splitConfig)

// WithRandomState seeds the sampler. A negative seed, the default, draws a
// fresh seed on every call.
func WithRandomState(seed int64) SplitOption {
	return func(c *splitConfig) {
		c.randomState = seed
	}
}

func newRand(opts []SplitOption) *rand.Rand {
	cfg := splitConfig{randomState: -1}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.randomState >= 0 {
		seed := uint64(cfg.randomState)
		return rand.New(rand.NewPCG(seed, seed))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// TrainTestSplit samples testSize rows uniformly without replacement into Test.
// The remaining rows form Train in their original order. Rows move whole, so
// feature and label columns stay paired.
func TrainTestSplit(ds *dataset.Dataset, testSize int, opts ...SplitOption) (*Split, error) {
	if ds == nil || ds.Rows() == 0 {
		return nil, errors.NewModelError("TrainTestSplit", "empty data", errors.ErrEmptyData)
	}
	n := ds.Rows()
	if testSize <= 0 || testSize >= n {
		return nil, errors.NewValidationError("test_size", "must satisfy 0 < test_size < n_samples", testSize)
	}

	perm := newRand(opts).Perm(n)
	testIdx := append([]int(nil), perm[:testSize]...)

	trainIdx := append([]int(nil), perm[testSize:]...)
	sort.Ints(trainIdx)

	return &Split{
		Train:      ds.Subset(trainIdx),
		Test:       ds.Subset(testIdx),
		TrainIndex: trainIdx,
		TestIndex:  testIdx,
	}, nil
}

// Shuffle returns the rows of ds in a random order.
func Shuffle(ds *dataset.Dataset, opts ...SplitOption) *dataset.Dataset {
	if ds == nil || ds.Rows() < 2 {
		return ds
	}
	return ds.Subset(newRand(opts).Perm(ds.Rows()))
}
