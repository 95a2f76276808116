// Package evaluation registers the component types that score a trained
// model: the eval component assembling metrics, losses and postprocessors
// per split, and the evaluator that runs it and persists the results.
package evaluation

import (
	"context"
	"fmt"

	"github.com/vk/gymgridgo/internal/batch"
	"github.com/vk/gymgridgo/internal/component"
	"github.com/vk/gymgridgo/internal/experiment"
	"github.com/vk/gymgridgo/internal/gym"
	"github.com/vk/gymgridgo/internal/ml/losses"
	"github.com/vk/gymgridgo/internal/ml/metrics"
	"github.com/vk/gymgridgo/internal/ml/models"
	"github.com/vk/gymgridgo/internal/ml/postprocess"
	"github.com/vk/gymgridgo/internal/registry"
)

// Module wires the evaluation component vocabulary into a registry.
type Module struct{}

// Register implements registry.Module.
func (Module) Register(ctx context.Context, r *registry.Registry) {
	r.Register(ctx, "eval_component", &registry.Factory{
		NewParams: func() any { return &evalParams{} },
		Build:     buildEvalComponent,
	})
	r.Register(ctx, "evaluator", &registry.Factory{
		NewParams: func() any { return &evaluatorParams{} },
		Build:     buildEvaluator,
	})
}

type evalParams struct {
	PostProcessors []string `gym:"postprocessors"`
	Metrics        []string `gym:"metrics"`
	Losses         []string `gym:"losses"`
	Splits         []string `gym:"splits"`
}

// buildEvalComponent assembles an eval component from the scoring
// registries and batch loaders wired as requirements. Tags that are not
// registered fail construction here, before any evaluation runs.
func buildEvalComponent(_ context.Context, params any) (any, error) {
	p := params.(*evalParams)
	return component.ProducerFunc(func(ctx context.Context, node *component.Node) (component.Artifact, error) {
		postArtifact, err := node.GetRequirement("postprocessing_registry")
		if err != nil {
			return component.Artifact{}, err
		}
		postReg, err := component.ScalarAs[*postprocess.Registry](postArtifact)
		if err != nil {
			return component.Artifact{}, err
		}
		processors := make([]postprocess.PostProcessor, 0, len(p.PostProcessors))
		for _, tag := range p.PostProcessors {
			processor, err := postReg.Get(tag)
			if err != nil {
				return component.Artifact{}, err
			}
			processors = append(processors, processor)
		}

		metricArtifact, err := node.GetRequirement("metric_registry")
		if err != nil {
			return component.Artifact{}, err
		}
		metricReg, err := component.ScalarAs[*metrics.Registry](metricArtifact)
		if err != nil {
			return component.Artifact{}, err
		}
		ms := make([]metrics.Metric, 0, len(p.Metrics))
		for _, tag := range p.Metrics {
			metric, err := metricReg.Get(tag)
			if err != nil {
				return component.Artifact{}, err
			}
			ms = append(ms, metric)
		}

		lossArtifact, err := node.GetRequirement("loss_function_registry")
		if err != nil {
			return component.Artifact{}, err
		}
		lossReg, err := component.ScalarAs[*losses.Registry](lossArtifact)
		if err != nil {
			return component.Artifact{}, err
		}
		ls := make([]losses.Loss, 0, len(p.Losses))
		for _, tag := range p.Losses {
			loss, err := lossReg.Get(tag)
			if err != nil {
				return component.Artifact{}, err
			}
			ls = append(ls, loss)
		}

		loadersArtifact, err := node.GetRequirement("data_loaders")
		if err != nil {
			return component.Artifact{}, err
		}
		allLoaders, _, err := component.MappingAs[*batch.Loader](loadersArtifact)
		if err != nil {
			return component.Artifact{}, err
		}
		loaders := allLoaders
		if len(p.Splits) > 0 {
			loaders = make(map[string]*batch.Loader, len(p.Splits))
			for _, split := range p.Splits {
				loader, ok := allLoaders[split]
				if !ok {
					return component.Artifact{}, fmt.Errorf("eval_component: no data loader for split %q", split)
				}
				loaders[split] = loader
			}
		}

		inference := gym.NewInferenceComponent(processors...)
		return component.Scalar(gym.NewEvalComponent(inference, ms, ls, loaders)), nil
	}), nil
}

type evaluatorParams struct {
	ResultsFile string `gym:"results_file"`
}

// buildEvaluator produces the evaluation results as a mapping from split
// name to its scores. When an "experiment_info" requirement is wired, the
// results are also written into the run directory.
func buildEvaluator(_ context.Context, params any) (any, error) {
	p := params.(*evaluatorParams)
	if p.ResultsFile == "" {
		p.ResultsFile = "eval_results.yaml"
	}
	return component.ProducerFunc(func(ctx context.Context, node *component.Node) (component.Artifact, error) {
		evalArtifact, err := node.GetRequirement("eval_component")
		if err != nil {
			return component.Artifact{}, err
		}
		evalComponent, err := component.ScalarAs[*gym.EvalComponent](evalArtifact)
		if err != nil {
			return component.Artifact{}, err
		}

		modelArtifact, err := node.GetRequirement("model")
		if err != nil {
			return component.Artifact{}, err
		}
		m, err := component.ScalarAs[models.Model](modelArtifact)
		if err != nil {
			return component.Artifact{}, err
		}

		results, err := gym.NewEvaluator(evalComponent).Evaluate(ctx, m)
		if err != nil {
			return component.Artifact{}, err
		}

		if node.HasRequirement("experiment_info") {
			infoArtifact, err := node.GetRequirement("experiment_info")
			if err != nil {
				return component.Artifact{}, err
			}
			info, err := component.ScalarAs[*experiment.Info](infoArtifact)
			if err != nil {
				return component.Artifact{}, err
			}
			if err := info.WriteResults(p.ResultsFile, results); err != nil {
				return component.Artifact{}, err
			}
		}

		mapping := component.NewMapping()
		for _, result := range results {
			mapping.Set(result.Split, result)
		}
		return component.FromMapping(mapping), nil
	}), nil
}
