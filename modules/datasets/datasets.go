// Package datasets registers the component types that load datasets and
// reshape their iterators: repositories, split iterators, label filters
// and remappings, record views, and fraction-based resplits.
package datasets

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/gymgridgo/internal/component"
	"github.com/vk/gymgridgo/internal/dataset"
	"github.com/vk/gymgridgo/internal/registry"
)

// Module wires the dataset component vocabulary into a registry.
type Module struct{}

// Register implements registry.Module.
func (Module) Register(ctx context.Context, r *registry.Registry) {
	r.Register(ctx, "dataset_repository", &registry.Factory{
		NewParams: func() any { return &repositoryParams{} },
		Build:     buildRepository,
	})
	r.Register(ctx, "dataset_iterators", &registry.Factory{
		NewParams: func() any { return &iteratorsParams{} },
		Build:     buildIterators,
	})
	r.Register(ctx, "iterator_splits", &registry.Factory{
		NewParams: func() any { return &splitsParams{} },
		Build:     buildSplits,
	})
	r.Register(ctx, "filtered_labels", &registry.Factory{
		NewParams: func() any { return &filterParams{} },
		Build:     buildFiltered,
	})
	r.Register(ctx, "mapped_labels", &registry.Factory{
		NewParams: func() any { return &mapParams{} },
		Build:     buildMapped,
	})
	r.Register(ctx, "iterator_view", &registry.Factory{
		NewParams: func() any { return &viewParams{} },
		Build:     buildView,
	})
}

type repositoryParams struct {
	Seed       int64 `gym:"seed"`
	FeatureDim int   `gym:"feature_dim"`
}

// buildRepository produces a dataset repository with the synthetic source
// registered. Real dataset backends would be registered here as well.
func buildRepository(_ context.Context, params any) (any, error) {
	p := params.(*repositoryParams)
	return component.ProducerFunc(func(ctx context.Context, node *component.Node) (component.Artifact, error) {
		repo := dataset.NewRepository()
		repo.Register(dataset.SyntheticName, dataset.NewSynthetic(p.Seed, p.FeatureDim))
		return component.Scalar(repo), nil
	}), nil
}

type iteratorsParams struct {
	Dataset string   `gym:"dataset"`
	Splits  []string `gym:"splits"`
}

// buildIterators produces a mapping of split name to iterator, pulled from
// the repository wired as the "repository" requirement.
func buildIterators(_ context.Context, params any) (any, error) {
	p := params.(*iteratorsParams)
	if p.Dataset == "" {
		return nil, fmt.Errorf("dataset_iterators needs a dataset name")
	}
	if len(p.Splits) == 0 {
		p.Splits = []string{"train", "val", "test"}
	}
	return component.ProducerFunc(func(ctx context.Context, node *component.Node) (component.Artifact, error) {
		artifact, err := node.GetRequirement("repository")
		if err != nil {
			return component.Artifact{}, err
		}
		repo, err := component.ScalarAs[*dataset.Repository](artifact)
		if err != nil {
			return component.Artifact{}, err
		}

		mapping := component.NewMapping()
		for _, split := range p.Splits {
			it, err := repo.Get(p.Dataset, split)
			if err != nil {
				return component.Artifact{}, err
			}
			mapping.Set(split, it)
		}
		return component.FromMapping(mapping), nil
	}), nil
}

// iteratorMapping reads the "iterators" requirement as a split mapping.
func iteratorMapping(node *component.Node) (map[string]dataset.Iterator, []string, error) {
	artifact, err := node.GetRequirement("iterators")
	if err != nil {
		return nil, nil, err
	}
	return component.MappingAs[dataset.Iterator](artifact)
}

// selected reports whether a split is in scope; an empty selection means
// all splits.
func selected(splits []string, name string) bool {
	if len(splits) == 0 {
		return true
	}
	for _, s := range splits {
		if s == name {
			return true
		}
	}
	return false
}

type splitsParams struct {
	Identifier string             `gym:"identifier"`
	Split      string             `gym:"split"`
	Fractions  map[string]float64 `gym:"fractions"`
	Seed       int64              `gym:"seed"`
}

// buildSplits re-partitions one split of the incoming mapping into named
// sub-splits; other splits pass through untouched.
func buildSplits(_ context.Context, params any) (any, error) {
	p := params.(*splitsParams)
	if p.Split == "" || len(p.Fractions) == 0 {
		return nil, fmt.Errorf("iterator_splits needs a source split and fractions")
	}
	return component.ProducerFunc(func(ctx context.Context, node *component.Node) (component.Artifact, error) {
		iterators, order, err := iteratorMapping(node)
		if err != nil {
			return component.Artifact{}, err
		}
		source, ok := iterators[p.Split]
		if !ok {
			return component.Artifact{}, fmt.Errorf("iterator_splits: no split %q in incoming iterators", p.Split)
		}
		resplit, err := dataset.SplitByFractions(p.Identifier, source, p.Fractions, p.Seed)
		if err != nil {
			return component.Artifact{}, err
		}

		mapping := component.NewMapping()
		for _, split := range order {
			if split == p.Split {
				continue
			}
			mapping.Set(split, iterators[split])
		}
		names := make([]string, 0, len(resplit))
		for name := range resplit {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			mapping.Set(name, resplit[name])
		}
		return component.FromMapping(mapping), nil
	}), nil
}

type filterParams struct {
	Identifier string   `gym:"identifier"`
	Labels     []int    `gym:"labels"`
	Splits     []string `gym:"splits"`
}

func buildFiltered(_ context.Context, params any) (any, error) {
	p := params.(*filterParams)
	if len(p.Labels) == 0 {
		return nil, fmt.Errorf("filtered_labels needs at least one label to keep")
	}
	return component.ProducerFunc(func(ctx context.Context, node *component.Node) (component.Artifact, error) {
		iterators, order, err := iteratorMapping(node)
		if err != nil {
			return component.Artifact{}, err
		}
		mapping := component.NewMapping()
		for _, split := range order {
			it := iterators[split]
			if selected(p.Splits, split) {
				it = dataset.FilterLabels(p.Identifier, it, p.Labels)
			}
			mapping.Set(split, it)
		}
		return component.FromMapping(mapping), nil
	}), nil
}

// LabelRule rewrites one label to another.
type LabelRule struct {
	From int `gym:"from"`
	To   int `gym:"to"`
}

type mapParams struct {
	Identifier string      `gym:"identifier"`
	Rules      []LabelRule `gym:"rules"`
	Splits     []string    `gym:"splits"`
}

func buildMapped(_ context.Context, params any) (any, error) {
	p := params.(*mapParams)
	if len(p.Rules) == 0 {
		return nil, fmt.Errorf("mapped_labels needs at least one rule")
	}
	remap := make(map[int]int, len(p.Rules))
	for _, rule := range p.Rules {
		remap[rule.From] = rule.To
	}
	return component.ProducerFunc(func(ctx context.Context, node *component.Node) (component.Artifact, error) {
		iterators, order, err := iteratorMapping(node)
		if err != nil {
			return component.Artifact{}, err
		}
		mapping := component.NewMapping()
		for _, split := range order {
			it := iterators[split]
			if selected(p.Splits, split) {
				it = dataset.MapLabels(p.Identifier, it, remap)
			}
			mapping.Set(split, it)
		}
		return component.FromMapping(mapping), nil
	}), nil
}

type viewParams struct {
	Identifier string   `gym:"identifier"`
	NumRecords int      `gym:"num_records"`
	Splits     []string `gym:"splits"`
}

func buildView(_ context.Context, params any) (any, error) {
	p := params.(*viewParams)
	if p.NumRecords < 1 {
		return nil, fmt.Errorf("iterator_view needs a positive num_records")
	}
	return component.ProducerFunc(func(ctx context.Context, node *component.Node) (component.Artifact, error) {
		iterators, order, err := iteratorMapping(node)
		if err != nil {
			return component.Artifact{}, err
		}
		mapping := component.NewMapping()
		for _, split := range order {
			it := iterators[split]
			if selected(p.Splits, split) {
				it = dataset.View(p.Identifier, it, p.NumRecords)
			}
			mapping.Set(split, it)
		}
		return component.FromMapping(mapping), nil
	}), nil
}
