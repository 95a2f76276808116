package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIterator() Iterator {
	return FromRecords(Meta{Identifier: "t", DatasetName: "t", Split: "train"}, []Record{
		{Features: []float64{0, 0}, Label: 0},
		{Features: []float64{1, 1}, Label: 1},
		{Features: []float64{2, 2}, Label: 2},
		{Features: []float64{3, 3}, Label: 0},
	})
}

func TestFromRecordsMeta(t *testing.T) {
	it := testIterator()
	assert.Equal(t, 4, it.Len())
	assert.Equal(t, 4, it.Meta().NumRecords)
	assert.Equal(t, 2, it.Meta().FeatureDim)
	assert.Equal(t, 1, it.At(1).Label)
}

func TestRepository(t *testing.T) {
	repo := NewRepository()
	repo.Register(SyntheticName, NewSynthetic(42, 2))

	it, err := repo.Get(SyntheticName, "train")
	require.NoError(t, err)
	assert.Equal(t, 512, it.Len())

	_, err = repo.Get("mnist", "train")
	assert.ErrorContains(t, err, `no dataset registered under identifier "mnist"`)

	_, err = repo.Get(SyntheticName, "holdout")
	assert.ErrorContains(t, err, `unknown split "holdout"`)
}

func TestSyntheticIsDeterministic(t *testing.T) {
	a, err := NewSynthetic(7, 4).Split("val")
	require.NoError(t, err)
	b, err := NewSynthetic(7, 4).Split("val")
	require.NoError(t, err)

	require.Equal(t, a.Len(), b.Len())
	for i := 0; i < a.Len(); i++ {
		assert.Equal(t, a.At(i), b.At(i))
	}

	c, err := NewSynthetic(8, 4).Split("val")
	require.NoError(t, err)
	assert.NotEqual(t, a.At(0).Features, c.At(0).Features, "different seeds give different data")
}

func TestView(t *testing.T) {
	it := testIterator()
	head := View("head", it, 2)
	assert.Equal(t, 2, head.Len())
	assert.Equal(t, it.At(0), head.At(0))
	assert.Equal(t, "head", head.Meta().Identifier)

	clamped := View("all", it, 100)
	assert.Equal(t, 4, clamped.Len())
}

func TestFilterLabels(t *testing.T) {
	filtered := FilterLabels("bin", testIterator(), []int{0, 1})
	assert.Equal(t, 3, filtered.Len())
	for i := 0; i < filtered.Len(); i++ {
		assert.LessOrEqual(t, filtered.At(i).Label, 1)
	}
}

func TestMapLabels(t *testing.T) {
	mapped := MapLabels("remap", testIterator(), map[int]int{2: 1})
	labels := make([]int, mapped.Len())
	for i := range labels {
		labels[i] = mapped.At(i).Label
	}
	assert.Equal(t, []int{0, 1, 1, 0}, labels)
}

func TestSplitByFractions(t *testing.T) {
	src, err := NewSynthetic(1, 2).Split("train")
	require.NoError(t, err)

	splits, err := SplitByFractions("resplit", src, map[string]float64{"fit": 0.75, "holdout": 0.25}, 3)
	require.NoError(t, err)
	require.Len(t, splits, 2)
	assert.Equal(t, 384, splits["fit"].Len())
	assert.Equal(t, 128, splits["holdout"].Len())
	assert.Equal(t, "fit", splits["fit"].Meta().Split)

	// Deterministic for a fixed seed.
	again, err := SplitByFractions("resplit", src, map[string]float64{"fit": 0.75, "holdout": 0.25}, 3)
	require.NoError(t, err)
	assert.Equal(t, splits["fit"].At(0), again["fit"].At(0))

	_, err = SplitByFractions("bad", src, map[string]float64{"a": 0.8, "b": 0.4}, 3)
	assert.ErrorContains(t, err, "must not exceed 1")

	_, err = SplitByFractions("bad", src, map[string]float64{"a": -0.1}, 3)
	assert.ErrorContains(t, err, "non-positive fraction")
}
