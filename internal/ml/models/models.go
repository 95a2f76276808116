// Package models holds small trainable classifiers plus the registry the
// pipeline resolves model keys through.
package models

import (
	"fmt"
	"math"
	"math/rand"
)

// Model maps a feature vector to raw per-class outputs.
type Model interface {
	Forward(features []float64) []float64
	NumClasses() int
}

// Trainable is a model that can apply a single-example gradient step.
type Trainable interface {
	Model
	Step(features []float64, label int, lr float64)
}

// Registry maps model keys to factories so a pipeline can name its model
// by key and parameterize it from config.
type Registry struct {
	factories map[string]func(seed int64, featureDim, numClasses int) (Trainable, error)
}

// NewRegistry creates an empty model registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]func(int64, int, int) (Trainable, error))}
}

// Register stores a factory under a key.
func (r *Registry) Register(key string, factory func(seed int64, featureDim, numClasses int) (Trainable, error)) {
	r.factories[key] = factory
}

// Build constructs the model registered under key.
func (r *Registry) Build(key string, seed int64, featureDim, numClasses int) (Trainable, error) {
	factory, ok := r.factories[key]
	if !ok {
		return nil, fmt.Errorf("no model registered under key %q", key)
	}
	return factory(seed, featureDim, numClasses)
}

// Linear is a softmax-regression classifier with per-class weight vectors
// and biases, trained by single-example cross-entropy gradient steps.
type Linear struct {
	weights [][]float64
	biases  []float64
}

// NewLinear creates a linear model with small seeded random weights.
func NewLinear(seed int64, featureDim, numClasses int) (*Linear, error) {
	if featureDim < 1 || numClasses < 2 {
		return nil, fmt.Errorf("linear model needs featureDim >= 1 and numClasses >= 2, got %d and %d", featureDim, numClasses)
	}
	rng := rand.New(rand.NewSource(seed))
	weights := make([][]float64, numClasses)
	for c := range weights {
		row := make([]float64, featureDim)
		for d := range row {
			row[d] = rng.NormFloat64() * 0.01
		}
		weights[c] = row
	}
	return &Linear{weights: weights, biases: make([]float64, numClasses)}, nil
}

func (m *Linear) NumClasses() int { return len(m.weights) }

func (m *Linear) Forward(features []float64) []float64 {
	logits := make([]float64, len(m.weights))
	for c, row := range m.weights {
		sum := m.biases[c]
		for d, w := range row {
			sum += w * features[d]
		}
		logits[c] = sum
	}
	return logits
}

// Step applies one cross-entropy gradient step for a single example.
func (m *Linear) Step(features []float64, label int, lr float64) {
	probs := softmax(m.Forward(features))
	for c := range m.weights {
		grad := probs[c]
		if c == label {
			grad -= 1
		}
		for d := range m.weights[c] {
			m.weights[c][d] -= lr * grad * features[d]
		}
		m.biases[c] -= lr * grad
	}
}

// Perceptron is the classic multi-class perceptron: on a mistake it moves
// the true class's weights toward the example and the predicted class's
// away from it.
type Perceptron struct {
	weights [][]float64
	biases  []float64
}

// NewPerceptron creates a zero-initialized perceptron. The seed parameter
// is accepted for registry symmetry but unused.
func NewPerceptron(_ int64, featureDim, numClasses int) (*Perceptron, error) {
	if featureDim < 1 || numClasses < 2 {
		return nil, fmt.Errorf("perceptron needs featureDim >= 1 and numClasses >= 2, got %d and %d", featureDim, numClasses)
	}
	weights := make([][]float64, numClasses)
	for c := range weights {
		weights[c] = make([]float64, featureDim)
	}
	return &Perceptron{weights: weights, biases: make([]float64, numClasses)}, nil
}

func (m *Perceptron) NumClasses() int { return len(m.weights) }

func (m *Perceptron) Forward(features []float64) []float64 {
	scores := make([]float64, len(m.weights))
	for c, row := range m.weights {
		sum := m.biases[c]
		for d, w := range row {
			sum += w * features[d]
		}
		scores[c] = sum
	}
	return scores
}

func (m *Perceptron) Step(features []float64, label int, lr float64) {
	scores := m.Forward(features)
	predicted := argmax(scores)
	if predicted == label {
		return
	}
	for d, x := range features {
		m.weights[label][d] += lr * x
		m.weights[predicted][d] -= lr * x
	}
	m.biases[label] += lr
	m.biases[predicted] -= lr
}

func softmax(logits []float64) []float64 {
	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}
	probs := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		probs[i] = math.Exp(v - max)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
