// Package batch turns dataset iterators into fixed-size training batches.
package batch

import "github.com/vk/gymgridgo/internal/dataset"

// Batch is one contiguous slice of examples, column-split into features
// and labels.
type Batch struct {
	Features [][]float64
	Labels   []int
}

// Len returns the number of examples in the batch.
func (b Batch) Len() int { return len(b.Labels) }

// Loader yields batches over a dataset iterator. It is restartable: every
// call to Batches walks the iterator from the start. The final batch may be
// short.
type Loader struct {
	iterator  dataset.Iterator
	batchSize int
}

// NewLoader creates a loader with the given batch size (minimum 1).
func NewLoader(it dataset.Iterator, batchSize int) *Loader {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Loader{iterator: it, batchSize: batchSize}
}

// Meta exposes the underlying iterator's metadata.
func (l *Loader) Meta() dataset.Meta { return l.iterator.Meta() }

// NumBatches returns how many batches one pass yields.
func (l *Loader) NumBatches() int {
	n := l.iterator.Len()
	return (n + l.batchSize - 1) / l.batchSize
}

// Batches materializes one pass over the iterator.
func (l *Loader) Batches() []Batch {
	n := l.iterator.Len()
	batches := make([]Batch, 0, l.NumBatches())
	for start := 0; start < n; start += l.batchSize {
		end := start + l.batchSize
		if end > n {
			end = n
		}
		b := Batch{
			Features: make([][]float64, 0, end-start),
			Labels:   make([]int, 0, end-start),
		}
		for i := start; i < end; i++ {
			rec := l.iterator.At(i)
			b.Features = append(b.Features, rec.Features)
			b.Labels = append(b.Labels, rec.Label)
		}
		batches = append(batches, b)
	}
	return batches
}
