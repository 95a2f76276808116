// Package loaders registers the data_loaders component type, which wraps
// split iterators in batch loaders.
package loaders

import (
	"context"
	"fmt"

	"github.com/vk/gymgridgo/internal/batch"
	"github.com/vk/gymgridgo/internal/component"
	"github.com/vk/gymgridgo/internal/dataset"
	"github.com/vk/gymgridgo/internal/registry"
)

// Module wires the batch-loader component vocabulary into a registry.
type Module struct{}

// Register implements registry.Module.
func (Module) Register(ctx context.Context, r *registry.Registry) {
	r.Register(ctx, "data_loaders", &registry.Factory{
		NewParams: func() any { return &loaderParams{} },
		Build:     buildLoaders,
	})
}

type loaderParams struct {
	BatchSize int `gym:"batch_size"`
}

// buildLoaders produces a mapping of split name to batch loader over the
// iterators wired as the "iterators" requirement.
func buildLoaders(_ context.Context, params any) (any, error) {
	p := params.(*loaderParams)
	if p.BatchSize < 1 {
		return nil, fmt.Errorf("data_loaders needs a positive batch_size")
	}
	return component.ProducerFunc(func(ctx context.Context, node *component.Node) (component.Artifact, error) {
		artifact, err := node.GetRequirement("iterators")
		if err != nil {
			return component.Artifact{}, err
		}
		iterators, order, err := component.MappingAs[dataset.Iterator](artifact)
		if err != nil {
			return component.Artifact{}, err
		}

		mapping := component.NewMapping()
		for _, split := range order {
			mapping.Set(split, batch.NewLoader(iterators[split], p.BatchSize))
		}
		return component.FromMapping(mapping), nil
	}), nil
}
