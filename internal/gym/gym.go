// Package gym runs the training and evaluation loops over assembled
// models, loaders, losses and metrics.
package gym

import (
	"context"
	"sort"

	"github.com/vk/gymgridgo/internal/batch"
	"github.com/vk/gymgridgo/internal/ctxlog"
	"github.com/vk/gymgridgo/internal/ml/losses"
	"github.com/vk/gymgridgo/internal/ml/metrics"
	"github.com/vk/gymgridgo/internal/ml/models"
	"github.com/vk/gymgridgo/internal/ml/optimize"
	"github.com/vk/gymgridgo/internal/ml/postprocess"
)

// InferenceComponent maps raw model outputs through a postprocessing chain
// and derives hard predictions and positive-class scores from them.
type InferenceComponent struct {
	processors []postprocess.PostProcessor
}

// NewInferenceComponent chains the given postprocessors in order.
func NewInferenceComponent(processors ...postprocess.PostProcessor) *InferenceComponent {
	return &InferenceComponent{processors: processors}
}

// Predict runs the model on one feature vector and returns the processed
// output, the argmax prediction, and the score of class 1 (or of the only
// output for single-output models).
func (c *InferenceComponent) Predict(m models.Model, features []float64) (processed []float64, prediction int, score float64) {
	out := m.Forward(features)
	for _, p := range c.processors {
		out = p.Apply(out)
	}
	prediction = 0
	for i, v := range out {
		if v > out[prediction] {
			prediction = i
		}
	}
	score = out[0]
	if len(out) > 1 {
		score = out[1]
	}
	return out, prediction, score
}

// TrainComponent applies the optimizer example-by-example over a batch.
type TrainComponent struct {
	Loss losses.Loss
}

// NewTrainComponent creates a train component reporting the given loss.
func NewTrainComponent(loss losses.Loss) *TrainComponent {
	return &TrainComponent{Loss: loss}
}

// TrainBatch updates the model on every example of the batch and returns
// the mean post-update training loss.
func (c *TrainComponent) TrainBatch(m models.Trainable, opt optimize.Optimizer, b batch.Batch) float64 {
	for i, features := range b.Features {
		opt.Apply(m, features, b.Labels[i])
	}
	var sum float64
	for i, features := range b.Features {
		sum += c.Loss.Score(m.Forward(features), b.Labels[i])
	}
	if b.Len() == 0 {
		return 0
	}
	return sum / float64(b.Len())
}

// Trainer drives the training loop for a fixed number of epochs over one
// batch loader.
type Trainer struct {
	loader *batch.Loader
	train  *TrainComponent
	epochs int
}

// NewTrainer creates a trainer (minimum 1 epoch).
func NewTrainer(loader *batch.Loader, train *TrainComponent, epochs int) *Trainer {
	if epochs < 1 {
		epochs = 1
	}
	return &Trainer{loader: loader, train: train, epochs: epochs}
}

// Epochs returns the configured epoch count.
func (t *Trainer) Epochs() int { return t.epochs }

// Train runs the full loop, checking for cancellation between batches.
func (t *Trainer) Train(ctx context.Context, m models.Trainable, opt optimize.Optimizer) error {
	log := ctxlog.FromContext(ctx)
	for epoch := 0; epoch < t.epochs; epoch++ {
		var epochLoss float64
		batches := t.loader.Batches()
		for _, b := range batches {
			if err := ctx.Err(); err != nil {
				return err
			}
			epochLoss += t.train.TrainBatch(m, opt, b)
		}
		if len(batches) > 0 {
			epochLoss /= float64(len(batches))
		}
		log.Debug("epoch finished",
			"epoch", epoch+1,
			"epochs", t.epochs,
			"split", t.loader.Meta().Split,
			"loss", epochLoss)
	}
	return nil
}

// SplitResult holds the scores of one evaluation split.
type SplitResult struct {
	Split      string             `yaml:"split"`
	NumSamples int                `yaml:"num_samples"`
	Losses     map[string]float64 `yaml:"losses"`
	Metrics    map[string]float64 `yaml:"metrics"`
}

// EvalComponent scores a model on every configured split loader with the
// configured metrics and losses.
type EvalComponent struct {
	inference *InferenceComponent
	metrics   []metrics.Metric
	losses    []losses.Loss
	loaders   map[string]*batch.Loader
}

// NewEvalComponent assembles an eval component.
func NewEvalComponent(inference *InferenceComponent, ms []metrics.Metric, ls []losses.Loss, loaders map[string]*batch.Loader) *EvalComponent {
	return &EvalComponent{inference: inference, metrics: ms, losses: ls, loaders: loaders}
}

// Evaluate scores every split, returning results sorted by split name so
// reports are stable.
func (c *EvalComponent) Evaluate(ctx context.Context, m models.Model) ([]SplitResult, error) {
	names := make([]string, 0, len(c.loaders))
	for name := range c.loaders {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]SplitResult, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results = append(results, c.evaluateSplit(name, c.loaders[name], m))
	}
	return results, nil
}

func (c *EvalComponent) evaluateSplit(name string, loader *batch.Loader, m models.Model) SplitResult {
	var (
		rawOutputs  [][]float64
		predictions []int
		scores      []float64
		labels      []int
	)
	for _, b := range loader.Batches() {
		for i, features := range b.Features {
			raw := m.Forward(features)
			_, prediction, score := c.inference.Predict(m, features)
			rawOutputs = append(rawOutputs, raw)
			predictions = append(predictions, prediction)
			scores = append(scores, score)
			labels = append(labels, b.Labels[i])
		}
	}

	result := SplitResult{
		Split:      name,
		NumSamples: len(labels),
		Losses:     make(map[string]float64, len(c.losses)),
		Metrics:    make(map[string]float64, len(c.metrics)),
	}
	for _, l := range c.losses {
		result.Losses[l.Tag()] = losses.Mean(l, rawOutputs, labels)
	}
	for _, metric := range c.metrics {
		result.Metrics[metric.Tag()] = metric.Compute(predictions, scores, labels)
	}
	return result
}

// Evaluator is the pipeline-facing wrapper that logs each split's scores
// as it evaluates.
type Evaluator struct {
	eval *EvalComponent
}

// NewEvaluator wraps an eval component.
func NewEvaluator(eval *EvalComponent) *Evaluator {
	return &Evaluator{eval: eval}
}

// Evaluate scores the model on all splits and logs a line per split.
func (e *Evaluator) Evaluate(ctx context.Context, m models.Model) ([]SplitResult, error) {
	results, err := e.eval.Evaluate(ctx, m)
	if err != nil {
		return nil, err
	}
	log := ctxlog.FromContext(ctx)
	for _, r := range results {
		log.Info("split evaluated",
			"split", r.Split,
			"num_samples", r.NumSamples,
			"losses", r.Losses,
			"metrics", r.Metrics)
	}
	return results, nil
}
