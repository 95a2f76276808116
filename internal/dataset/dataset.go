// Package dataset supplies the data layer consumed by the pipeline: record
// iterators, a string-keyed repository of dataset sources, and the iterator
// transforms (views, filters, label mappings, re-splits) that the bundled
// component types build on. The construction graph treats everything here
// as opaque artifacts.
package dataset

// Record is one labeled example.
type Record struct {
	Features []float64
	Label    int
}

// Meta describes an iterator: where it came from and its shape.
type Meta struct {
	Identifier  string
	DatasetName string
	Split       string
	NumRecords  int
	FeatureDim  int
}

// Iterator is a restartable, randomly addressable sequence of records.
// Implementations must be cheap to copy by reference and safe for
// concurrent reads.
type Iterator interface {
	Meta() Meta
	Len() int
	At(i int) Record
}

// slice is the in-memory Iterator used by sources and transforms.
type slice struct {
	meta    Meta
	records []Record
}

// FromRecords builds an in-memory iterator over the given records.
func FromRecords(meta Meta, records []Record) Iterator {
	meta.NumRecords = len(records)
	if len(records) > 0 {
		meta.FeatureDim = len(records[0].Features)
	}
	return &slice{meta: meta, records: records}
}

func (s *slice) Meta() Meta      { return s.meta }
func (s *slice) Len() int        { return len(s.records) }
func (s *slice) At(i int) Record { return s.records[i] }
