// Package training registers the component types that build and fit a
// model: the model itself, its optimizer, the per-batch train component,
// and the trainer that runs the full loop.
package training

import (
	"context"
	"fmt"

	"github.com/vk/gymgridgo/internal/batch"
	"github.com/vk/gymgridgo/internal/component"
	"github.com/vk/gymgridgo/internal/gym"
	"github.com/vk/gymgridgo/internal/ml/losses"
	"github.com/vk/gymgridgo/internal/ml/models"
	"github.com/vk/gymgridgo/internal/ml/optimize"
	"github.com/vk/gymgridgo/internal/registry"
)

// Module wires the training component vocabulary into a registry.
type Module struct{}

// Register implements registry.Module.
func (Module) Register(ctx context.Context, r *registry.Registry) {
	r.Register(ctx, "model", &registry.Factory{
		NewParams: func() any { return &modelParams{} },
		Build:     buildModel,
	})
	r.Register(ctx, "optimizer", &registry.Factory{
		NewParams: func() any { return &optimizerParams{} },
		Build:     buildOptimizer,
	})
	r.Register(ctx, "train_component", &registry.Factory{
		NewParams: func() any { return &trainComponentParams{} },
		Build:     buildTrainComponent,
	})
	r.Register(ctx, "trainer", &registry.Factory{
		NewParams: func() any { return &trainerParams{} },
		Build:     buildTrainer,
	})
}

type modelParams struct {
	Key        string `gym:"key"`
	Seed       int64  `gym:"seed"`
	FeatureDim int    `gym:"feature_dim"`
	NumClasses int    `gym:"num_classes"`
}

// buildModel produces a fresh trainable model from the model registry
// wired as the "model_registry" requirement.
func buildModel(_ context.Context, params any) (any, error) {
	p := params.(*modelParams)
	if p.Key == "" {
		return nil, fmt.Errorf("model needs a registry key")
	}
	if p.NumClasses == 0 {
		p.NumClasses = 2
	}
	return component.ProducerFunc(func(ctx context.Context, node *component.Node) (component.Artifact, error) {
		artifact, err := node.GetRequirement("model_registry")
		if err != nil {
			return component.Artifact{}, err
		}
		reg, err := component.ScalarAs[*models.Registry](artifact)
		if err != nil {
			return component.Artifact{}, err
		}
		m, err := reg.Build(p.Key, p.Seed, p.FeatureDim, p.NumClasses)
		if err != nil {
			return component.Artifact{}, err
		}
		return component.Scalar(m), nil
	}), nil
}

type optimizerParams struct {
	LearningRate float64 `gym:"learning_rate"`
}

func buildOptimizer(_ context.Context, params any) (any, error) {
	p := params.(*optimizerParams)
	return component.ProducerFunc(func(ctx context.Context, node *component.Node) (component.Artifact, error) {
		var opt optimize.Optimizer = optimize.NewSGD(p.LearningRate)
		return component.Scalar(opt), nil
	}), nil
}

type trainComponentParams struct {
	Loss string `gym:"loss"`
}

// buildTrainComponent produces a train component reporting the loss looked
// up by tag in the loss registry wired as "loss_function_registry".
func buildTrainComponent(_ context.Context, params any) (any, error) {
	p := params.(*trainComponentParams)
	if p.Loss == "" {
		return nil, fmt.Errorf("train_component needs a loss tag")
	}
	return component.ProducerFunc(func(ctx context.Context, node *component.Node) (component.Artifact, error) {
		artifact, err := node.GetRequirement("loss_function_registry")
		if err != nil {
			return component.Artifact{}, err
		}
		reg, err := component.ScalarAs[*losses.Registry](artifact)
		if err != nil {
			return component.Artifact{}, err
		}
		loss, err := reg.Get(p.Loss)
		if err != nil {
			return component.Artifact{}, err
		}
		return component.Scalar(gym.NewTrainComponent(loss)), nil
	}), nil
}

type trainerParams struct {
	Epochs int    `gym:"epochs"`
	Split  string `gym:"split"`
}

// buildTrainer produces the trained model. Its requirements are the model,
// the optimizer, the train component, and the batch loaders; construction
// runs the full training loop.
func buildTrainer(_ context.Context, params any) (any, error) {
	p := params.(*trainerParams)
	if p.Split == "" {
		p.Split = "train"
	}
	return component.ProducerFunc(func(ctx context.Context, node *component.Node) (component.Artifact, error) {
		modelArtifact, err := node.GetRequirement("model")
		if err != nil {
			return component.Artifact{}, err
		}
		m, err := component.ScalarAs[models.Trainable](modelArtifact)
		if err != nil {
			return component.Artifact{}, err
		}

		optArtifact, err := node.GetRequirement("optimizer")
		if err != nil {
			return component.Artifact{}, err
		}
		opt, err := component.ScalarAs[optimize.Optimizer](optArtifact)
		if err != nil {
			return component.Artifact{}, err
		}

		trainArtifact, err := node.GetRequirement("train_component")
		if err != nil {
			return component.Artifact{}, err
		}
		trainComponent, err := component.ScalarAs[*gym.TrainComponent](trainArtifact)
		if err != nil {
			return component.Artifact{}, err
		}

		loadersArtifact, err := node.GetRequirement("data_loaders")
		if err != nil {
			return component.Artifact{}, err
		}
		loaders, _, err := component.MappingAs[*batch.Loader](loadersArtifact)
		if err != nil {
			return component.Artifact{}, err
		}
		loader, ok := loaders[p.Split]
		if !ok {
			return component.Artifact{}, fmt.Errorf("trainer: no data loader for split %q", p.Split)
		}

		trainer := gym.NewTrainer(loader, trainComponent, p.Epochs)
		if err := trainer.Train(ctx, m, opt); err != nil {
			return component.Artifact{}, err
		}
		return component.Scalar(m), nil
	}), nil
}
