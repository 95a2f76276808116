// Package registries registers two layers of the scoring vocabulary: the
// constructors for individual losses, metrics, and postprocessors, and the
// registry components that collect configured instances of them for the
// training and evaluation stages to look up by tag.
package registries

import (
	"context"
	"fmt"

	"github.com/vk/gymgridgo/internal/component"
	"github.com/vk/gymgridgo/internal/ml/losses"
	"github.com/vk/gymgridgo/internal/ml/metrics"
	"github.com/vk/gymgridgo/internal/ml/models"
	"github.com/vk/gymgridgo/internal/ml/postprocess"
	"github.com/vk/gymgridgo/internal/registry"
)

// Module wires the scoring vocabulary into a registry.
type Module struct{}

// Register implements registry.Module.
func (Module) Register(ctx context.Context, r *registry.Registry) {
	registerLossConstructors(ctx, r)
	registerMetricConstructors(ctx, r)
	registerPostProcessorConstructors(ctx, r)

	r.Register(ctx, "model_registry", &registry.Factory{
		Build: buildModelRegistry,
	})
	r.Register(ctx, "loss_function_registry", &registry.Factory{
		NewParams: func() any { return &entriesParams{} },
		Build:     buildLossRegistry(r),
	})
	r.Register(ctx, "metric_registry", &registry.Factory{
		NewParams: func() any { return &entriesParams{} },
		Build:     buildMetricRegistry(r),
	})
	r.Register(ctx, "postprocessing_registry", &registry.Factory{
		NewParams: func() any { return &entriesParams{} },
		Build:     buildPostProcessingRegistry(r),
	})
}

type taggedParams struct {
	Tag string `gym:"tag"`
}

type lpParams struct {
	Tag      string  `gym:"tag"`
	Exponent float64 `gym:"exponent"`
	Scale    float64 `gym:"scale"`
}

type classParams struct {
	Tag           string `gym:"tag"`
	PositiveClass int    `gym:"positive_class"`
}

type binarizeParams struct {
	Tag       string  `gym:"tag"`
	Threshold float64 `gym:"threshold"`
}

func registerLossConstructors(ctx context.Context, r *registry.Registry) {
	r.Register(ctx, "loss/lp", &registry.Factory{
		NewParams: func() any { return &lpParams{} },
		Build: func(_ context.Context, params any) (any, error) {
			p := params.(*lpParams)
			if p.Exponent <= 0 {
				return nil, fmt.Errorf("lp loss needs a positive exponent")
			}
			if p.Scale == 0 {
				return losses.NewLPLoss(p.Tag, p.Exponent), nil
			}
			return losses.NewScaledLPLoss(p.Tag, p.Exponent, p.Scale), nil
		},
	})
	r.Register(ctx, "loss/cross_entropy", &registry.Factory{
		NewParams: func() any { return &taggedParams{} },
		Build: func(_ context.Context, params any) (any, error) {
			return losses.NewCrossEntropy(params.(*taggedParams).Tag), nil
		},
	})
	r.Register(ctx, "loss/bce_with_logits", &registry.Factory{
		NewParams: func() any { return &taggedParams{} },
		Build: func(_ context.Context, params any) (any, error) {
			return losses.NewBCEWithLogits(params.(*taggedParams).Tag), nil
		},
	})
	r.Register(ctx, "loss/nll", &registry.Factory{
		NewParams: func() any { return &taggedParams{} },
		Build: func(_ context.Context, params any) (any, error) {
			return losses.NewNLL(params.(*taggedParams).Tag), nil
		},
	})
}

func registerMetricConstructors(ctx context.Context, r *registry.Registry) {
	classMetric := func(build func(tag string, positive int) metrics.Metric) *registry.Factory {
		return &registry.Factory{
			NewParams: func() any { return &classParams{} },
			Build: func(_ context.Context, params any) (any, error) {
				p := params.(*classParams)
				return build(p.Tag, p.PositiveClass), nil
			},
		}
	}
	r.Register(ctx, "metric/f1", classMetric(func(tag string, positive int) metrics.Metric {
		return metrics.NewF1(tag, positive)
	}))
	r.Register(ctx, "metric/precision", classMetric(func(tag string, positive int) metrics.Metric {
		return metrics.NewPrecision(tag, positive)
	}))
	r.Register(ctx, "metric/recall", classMetric(func(tag string, positive int) metrics.Metric {
		return metrics.NewRecall(tag, positive)
	}))
	r.Register(ctx, "metric/auroc", classMetric(func(tag string, positive int) metrics.Metric {
		return metrics.NewAUROC(tag, positive)
	}))
	r.Register(ctx, "metric/aupr", classMetric(func(tag string, positive int) metrics.Metric {
		return metrics.NewAUPR(tag, positive)
	}))
	r.Register(ctx, "metric/accuracy", &registry.Factory{
		NewParams: func() any { return &taggedParams{} },
		Build: func(_ context.Context, params any) (any, error) {
			return metrics.NewAccuracy(params.(*taggedParams).Tag), nil
		},
	})
}

func registerPostProcessorConstructors(ctx context.Context, r *registry.Registry) {
	tagged := func(build func(tag string) postprocess.PostProcessor) *registry.Factory {
		return &registry.Factory{
			NewParams: func() any { return &taggedParams{} },
			Build: func(_ context.Context, params any) (any, error) {
				return build(params.(*taggedParams).Tag), nil
			},
		}
	}
	r.Register(ctx, "postprocessor/softmax", tagged(func(tag string) postprocess.PostProcessor {
		return postprocess.NewSoftmax(tag)
	}))
	r.Register(ctx, "postprocessor/argmax", tagged(func(tag string) postprocess.PostProcessor {
		return postprocess.NewArgmax(tag)
	}))
	r.Register(ctx, "postprocessor/sigmoid", tagged(func(tag string) postprocess.PostProcessor {
		return postprocess.NewSigmoid(tag)
	}))
	r.Register(ctx, "postprocessor/dummy", tagged(func(tag string) postprocess.PostProcessor {
		return postprocess.NewDummy(tag)
	}))
	r.Register(ctx, "postprocessor/binarize", &registry.Factory{
		NewParams: func() any { return &binarizeParams{} },
		Build: func(_ context.Context, params any) (any, error) {
			p := params.(*binarizeParams)
			return postprocess.NewBinarize(p.Tag, p.Threshold), nil
		},
	})
}

// buildModelRegistry produces the model registry with the built-in
// classifiers registered.
func buildModelRegistry(_ context.Context, _ any) (any, error) {
	return component.ProducerFunc(func(ctx context.Context, node *component.Node) (component.Artifact, error) {
		reg := models.NewRegistry()
		reg.Register("linear", func(seed int64, featureDim, numClasses int) (models.Trainable, error) {
			return models.NewLinear(seed, featureDim, numClasses)
		})
		reg.Register("perceptron", func(seed int64, featureDim, numClasses int) (models.Trainable, error) {
			return models.NewPerceptron(seed, featureDim, numClasses)
		})
		return component.Scalar(reg), nil
	}), nil
}

// entriesParams configures a registry component: each entry is one
// constructor configuration whose "key" field selects the constructor.
type entriesParams struct {
	Entries []map[string]any `gym:"entries"`
}

func buildLossRegistry(r *registry.Registry) func(context.Context, any) (any, error) {
	return func(_ context.Context, params any) (any, error) {
		p := params.(*entriesParams)
		return component.ProducerFunc(func(ctx context.Context, node *component.Node) (component.Artifact, error) {
			reg := losses.NewRegistry()
			for _, entry := range p.Entries {
				instance, err := r.InstantiateFromConfig(ctx, entry)
				if err != nil {
					return component.Artifact{}, err
				}
				loss, ok := instance.(losses.Loss)
				if !ok {
					return component.Artifact{}, fmt.Errorf("constructor %v did not produce a loss function", entry["key"])
				}
				reg.Register(loss)
			}
			return component.Scalar(reg), nil
		}), nil
	}
}

func buildMetricRegistry(r *registry.Registry) func(context.Context, any) (any, error) {
	return func(_ context.Context, params any) (any, error) {
		p := params.(*entriesParams)
		return component.ProducerFunc(func(ctx context.Context, node *component.Node) (component.Artifact, error) {
			reg := metrics.NewRegistry()
			for _, entry := range p.Entries {
				instance, err := r.InstantiateFromConfig(ctx, entry)
				if err != nil {
					return component.Artifact{}, err
				}
				metric, ok := instance.(metrics.Metric)
				if !ok {
					return component.Artifact{}, fmt.Errorf("constructor %v did not produce a metric", entry["key"])
				}
				reg.Register(metric)
			}
			return component.Scalar(reg), nil
		}), nil
	}
}

func buildPostProcessingRegistry(r *registry.Registry) func(context.Context, any) (any, error) {
	return func(_ context.Context, params any) (any, error) {
		p := params.(*entriesParams)
		return component.ProducerFunc(func(ctx context.Context, node *component.Node) (component.Artifact, error) {
			reg := postprocess.NewRegistry()
			for _, entry := range p.Entries {
				instance, err := r.InstantiateFromConfig(ctx, entry)
				if err != nil {
					return component.Artifact{}, err
				}
				processor, ok := instance.(postprocess.PostProcessor)
				if !ok {
					return component.Artifact{}, fmt.Errorf("constructor %v did not produce a postprocessor", entry["key"])
				}
				reg.Register(processor)
			}
			return component.Scalar(reg), nil
		}), nil
	}
}
