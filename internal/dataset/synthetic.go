package dataset

import (
	"fmt"
	"math"
	"math/rand"
)

// SyntheticName is the identifier the bundled synthetic source registers
// under.
const SyntheticName = "synthetic"

// syntheticSplits fixes the per-split sizes so that every run of a seed
// produces identical data.
var syntheticSplits = map[string]int{
	"train": 512,
	"val":   128,
	"test":  128,
}

// Synthetic is a deterministic, seeded two-class dataset: points on two
// noisy Gaussian clusters. It stands in for a real dataset repository
// backend so pipelines are runnable without external storage.
type Synthetic struct {
	Seed       int64
	FeatureDim int
}

// NewSynthetic creates a synthetic source with the given seed and feature
// dimensionality (minimum 2).
func NewSynthetic(seed int64, featureDim int) *Synthetic {
	if featureDim < 2 {
		featureDim = 2
	}
	return &Synthetic{Seed: seed, FeatureDim: featureDim}
}

// Split implements Source. Each split draws from its own deterministic
// stream, so train/val/test never overlap.
func (s *Synthetic) Split(name string) (Iterator, error) {
	size, ok := syntheticSplits[name]
	if !ok {
		return nil, fmt.Errorf("unknown split %q (have train, val, test)", name)
	}

	// Offset the seed per split to decorrelate the streams.
	rng := rand.New(rand.NewSource(s.Seed + int64(len(name))*7919))
	records := make([]Record, size)
	for i := range records {
		label := i % 2
		center := -1.0
		if label == 1 {
			center = 1.0
		}
		features := make([]float64, s.FeatureDim)
		for d := range features {
			features[d] = center + rng.NormFloat64()*0.75
		}
		// Make later dimensions progressively less informative.
		for d := 2; d < s.FeatureDim; d++ {
			features[d] *= 1.0 / math.Sqrt(float64(d))
		}
		records[i] = Record{Features: features, Label: label}
	}

	meta := Meta{
		Identifier:  SyntheticName,
		DatasetName: SyntheticName,
		Split:       name,
	}
	return FromRecords(meta, records), nil
}
