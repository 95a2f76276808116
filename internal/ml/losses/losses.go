// Package losses provides per-example loss functions over raw model
// outputs. Every loss carries a tag so evaluation reports can name the
// column it fills.
package losses

import (
	"fmt"
	"math"
)

// Loss scores a single example given the model's raw outputs (logits) and
// the true label.
type Loss interface {
	Tag() string
	Score(logits []float64, label int) float64
}

// Registry maps loss keys to constructed losses.
type Registry struct {
	losses map[string]Loss
}

// NewRegistry creates an empty loss registry.
func NewRegistry() *Registry {
	return &Registry{losses: make(map[string]Loss)}
}

// Register stores a loss under its tag.
func (r *Registry) Register(l Loss) {
	r.losses[l.Tag()] = l
}

// Get returns the loss registered under the given tag.
func (r *Registry) Get(tag string) (Loss, error) {
	l, ok := r.losses[tag]
	if !ok {
		return nil, fmt.Errorf("no loss function registered under tag %q", tag)
	}
	return l, nil
}

// Tags lists all registered tags.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.losses))
	for tag := range r.losses {
		tags = append(tags, tag)
	}
	return tags
}

// LPLoss is the p-norm distance between the predicted score for the true
// class and a perfect score of 1.
type LPLoss struct {
	tag      string
	Exponent float64
	Scale    float64
}

// NewLPLoss creates an LP loss with unit scale.
func NewLPLoss(tag string, exponent float64) *LPLoss {
	return &LPLoss{tag: tag, Exponent: exponent, Scale: 1}
}

// NewScaledLPLoss creates an LP loss whose score is multiplied by scale.
func NewScaledLPLoss(tag string, exponent, scale float64) *LPLoss {
	return &LPLoss{tag: tag, Exponent: exponent, Scale: scale}
}

func (l *LPLoss) Tag() string { return l.tag }

func (l *LPLoss) Score(logits []float64, label int) float64 {
	target := make([]float64, len(logits))
	if label >= 0 && label < len(target) {
		target[label] = 1
	}
	var sum float64
	for i, v := range logits {
		sum += math.Pow(math.Abs(v-target[i]), l.Exponent)
	}
	return l.Scale * math.Pow(sum, 1/l.Exponent)
}

// CrossEntropy is the softmax cross-entropy loss over multi-class logits.
type CrossEntropy struct {
	tag string
}

func NewCrossEntropy(tag string) *CrossEntropy { return &CrossEntropy{tag: tag} }

func (l *CrossEntropy) Tag() string { return l.tag }

func (l *CrossEntropy) Score(logits []float64, label int) float64 {
	// log-sum-exp with max subtraction for stability
	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}
	var sum float64
	for _, v := range logits {
		sum += math.Exp(v - max)
	}
	return math.Log(sum) - (logits[label] - max)
}

// BCEWithLogits is binary cross-entropy over a single logit; the label is
// interpreted as 0 or 1.
type BCEWithLogits struct {
	tag string
}

func NewBCEWithLogits(tag string) *BCEWithLogits { return &BCEWithLogits{tag: tag} }

func (l *BCEWithLogits) Tag() string { return l.tag }

func (l *BCEWithLogits) Score(logits []float64, label int) float64 {
	z := logits[0]
	y := float64(label)
	// Stable formulation: max(z,0) - z*y + log(1+exp(-|z|))
	return math.Max(z, 0) - z*y + math.Log1p(math.Exp(-math.Abs(z)))
}

// NLL is the negative log-likelihood over already-normalized log
// probabilities.
type NLL struct {
	tag string
}

func NewNLL(tag string) *NLL { return &NLL{tag: tag} }

func (l *NLL) Tag() string { return l.tag }

func (l *NLL) Score(logProbs []float64, label int) float64 {
	return -logProbs[label]
}

// Mean averages a loss over a batch of examples.
func Mean(l Loss, logits [][]float64, labels []int) float64 {
	if len(labels) == 0 {
		return 0
	}
	var sum float64
	for i, row := range logits {
		sum += l.Score(row, labels[i])
	}
	return sum / float64(len(labels))
}
