package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoftmax(t *testing.T) {
	probs := NewSoftmax("sm").Apply([]float64{0, 0})
	assert.InDelta(t, 0.5, probs[0], 1e-12)
	assert.InDelta(t, 0.5, probs[1], 1e-12)

	var sum float64
	for _, p := range NewSoftmax("sm").Apply([]float64{500, 499, 0}) {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-12, "stays normalized for large logits")
}

func TestArgmax(t *testing.T) {
	assert.Equal(t, []float64{2}, NewArgmax("am").Apply([]float64{0.1, 0.3, 0.6}))
	// Ties resolve to the first maximum.
	assert.Equal(t, []float64{0}, NewArgmax("am").Apply([]float64{0.5, 0.5}))
}

func TestSigmoid(t *testing.T) {
	out := NewSigmoid("sig").Apply([]float64{0, 100, -100})
	assert.InDelta(t, 0.5, out[0], 1e-12)
	assert.InDelta(t, 1.0, out[1], 1e-9)
	assert.InDelta(t, 0.0, out[2], 1e-9)
}

func TestBinarize(t *testing.T) {
	out := NewBinarize("bin", 0.5).Apply([]float64{0.4, 0.5, 0.9})
	assert.Equal(t, []float64{0, 1, 1}, out)
}

func TestDummy(t *testing.T) {
	in := []float64{1, 2, 3}
	assert.Equal(t, in, NewDummy("id").Apply(in))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(NewSoftmax("sm"))

	p, err := r.Get("sm")
	require.NoError(t, err)
	assert.Equal(t, "sm", p.Tag())

	_, err = r.Get("temperature")
	assert.ErrorContains(t, err, `no postprocessor registered under tag "temperature"`)
}
