package dataset

import (
	"fmt"
	"math/rand"
	"sort"
)

// View returns an iterator over the first n records of the given iterator.
// A view larger than the underlying iterator is clamped.
func View(identifier string, it Iterator, n int) Iterator {
	if n > it.Len() {
		n = it.Len()
	}
	records := make([]Record, n)
	for i := 0; i < n; i++ {
		records[i] = it.At(i)
	}
	meta := it.Meta()
	meta.Identifier = identifier
	return FromRecords(meta, records)
}

// FilterLabels keeps only records whose label appears in the given set.
func FilterLabels(identifier string, it Iterator, labels []int) Iterator {
	keep := make(map[int]bool, len(labels))
	for _, l := range labels {
		keep[l] = true
	}
	var records []Record
	for i := 0; i < it.Len(); i++ {
		if rec := it.At(i); keep[rec.Label] {
			records = append(records, rec)
		}
	}
	meta := it.Meta()
	meta.Identifier = identifier
	return FromRecords(meta, records)
}

// MapLabels rewrites labels through the given mapping; labels without an
// entry pass through unchanged.
func MapLabels(identifier string, it Iterator, mapping map[int]int) Iterator {
	records := make([]Record, it.Len())
	for i := 0; i < it.Len(); i++ {
		rec := it.At(i)
		if mapped, ok := mapping[rec.Label]; ok {
			rec.Label = mapped
		}
		records[i] = rec
	}
	meta := it.Meta()
	meta.Identifier = identifier
	return FromRecords(meta, records)
}

// SplitByFractions partitions an iterator into named sub-splits. Fractions
// must sum to at most 1; the split is a deterministic seeded shuffle, and
// split names are processed in sorted order so the result is reproducible.
func SplitByFractions(identifier string, it Iterator, fractions map[string]float64, seed int64) (map[string]Iterator, error) {
	var total float64
	names := make([]string, 0, len(fractions))
	for name, f := range fractions {
		if f <= 0 {
			return nil, fmt.Errorf("split %q has non-positive fraction %v", name, f)
		}
		total += f
		names = append(names, name)
	}
	if total > 1.0+1e-9 {
		return nil, fmt.Errorf("split fractions sum to %v, must not exceed 1", total)
	}
	sort.Strings(names)

	perm := rand.New(rand.NewSource(seed)).Perm(it.Len())
	splits := make(map[string]Iterator, len(names))
	offset := 0
	for _, name := range names {
		size := int(fractions[name] * float64(it.Len()))
		if offset+size > it.Len() {
			size = it.Len() - offset
		}
		records := make([]Record, size)
		for i := 0; i < size; i++ {
			records[i] = it.At(perm[offset+i])
		}
		offset += size

		meta := it.Meta()
		meta.Identifier = identifier
		meta.Split = name
		splits[name] = FromRecords(meta, records)
	}
	return splits, nil
}
