// Package postprocess transforms raw model outputs into the form metrics
// and reports expect (probabilities, hard labels, binarized scores).
package postprocess

import (
	"fmt"
	"math"
)

// PostProcessor rewrites a vector of raw model outputs.
type PostProcessor interface {
	Tag() string
	Apply(outputs []float64) []float64
}

// Registry maps postprocessor tags to constructed postprocessors.
type Registry struct {
	processors map[string]PostProcessor
}

// NewRegistry creates an empty postprocessor registry.
func NewRegistry() *Registry {
	return &Registry{processors: make(map[string]PostProcessor)}
}

// Register stores a postprocessor under its tag.
func (r *Registry) Register(p PostProcessor) {
	r.processors[p.Tag()] = p
}

// Get returns the postprocessor registered under the given tag.
func (r *Registry) Get(tag string) (PostProcessor, error) {
	p, ok := r.processors[tag]
	if !ok {
		return nil, fmt.Errorf("no postprocessor registered under tag %q", tag)
	}
	return p, nil
}

// Softmax normalizes logits into a probability distribution.
type Softmax struct {
	tag string
}

func NewSoftmax(tag string) *Softmax { return &Softmax{tag: tag} }

func (p *Softmax) Tag() string { return p.tag }

func (p *Softmax) Apply(outputs []float64) []float64 {
	max := outputs[0]
	for _, v := range outputs[1:] {
		if v > max {
			max = v
		}
	}
	probs := make([]float64, len(outputs))
	var sum float64
	for i, v := range outputs {
		probs[i] = math.Exp(v - max)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// Argmax collapses a vector to a one-element vector holding the index of
// its maximum, as a float.
type Argmax struct {
	tag string
}

func NewArgmax(tag string) *Argmax { return &Argmax{tag: tag} }

func (p *Argmax) Tag() string { return p.tag }

func (p *Argmax) Apply(outputs []float64) []float64 {
	best := 0
	for i, v := range outputs {
		if v > outputs[best] {
			best = i
		}
	}
	return []float64{float64(best)}
}

// Sigmoid applies the logistic function elementwise.
type Sigmoid struct {
	tag string
}

func NewSigmoid(tag string) *Sigmoid { return &Sigmoid{tag: tag} }

func (p *Sigmoid) Tag() string { return p.tag }

func (p *Sigmoid) Apply(outputs []float64) []float64 {
	result := make([]float64, len(outputs))
	for i, v := range outputs {
		result[i] = 1 / (1 + math.Exp(-v))
	}
	return result
}

// Binarize maps each value to 1 when it reaches the threshold, else 0.
type Binarize struct {
	tag       string
	Threshold float64
}

func NewBinarize(tag string, threshold float64) *Binarize {
	return &Binarize{tag: tag, Threshold: threshold}
}

func (p *Binarize) Tag() string { return p.tag }

func (p *Binarize) Apply(outputs []float64) []float64 {
	result := make([]float64, len(outputs))
	for i, v := range outputs {
		if v >= p.Threshold {
			result[i] = 1
		}
	}
	return result
}

// Dummy passes outputs through unchanged. It lets a pipeline declare the
// postprocessing slot without transforming anything.
type Dummy struct {
	tag string
}

func NewDummy(tag string) *Dummy { return &Dummy{tag: tag} }

func (p *Dummy) Tag() string { return p.tag }

func (p *Dummy) Apply(outputs []float64) []float64 { return outputs }
