// Package optimize holds parameter-update strategies for trainable models.
package optimize

import "github.com/vk/gymgridgo/internal/ml/models"

// Optimizer applies one single-example update to a trainable model.
type Optimizer interface {
	Apply(m models.Trainable, features []float64, label int)
}

// SGD is plain stochastic gradient descent with a fixed learning rate. The
// gradient itself lives in the model's Step method; SGD supplies the rate.
type SGD struct {
	LearningRate float64
}

// NewSGD creates an SGD optimizer, clamping non-positive rates to a small
// default.
func NewSGD(learningRate float64) *SGD {
	if learningRate <= 0 {
		learningRate = 0.01
	}
	return &SGD{LearningRate: learningRate}
}

func (o *SGD) Apply(m models.Trainable, features []float64, label int) {
	m.Step(features, label, o.LearningRate)
}
