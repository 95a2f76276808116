package loaders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gymgridgo/internal/batch"
	"github.com/vk/gymgridgo/internal/component"
	"github.com/vk/gymgridgo/internal/dataset"
	"github.com/vk/gymgridgo/internal/registry"
)

func iteratorsArtifact(counts map[string]int, order []string) component.Artifact {
	mapping := component.NewMapping()
	for _, split := range order {
		records := make([]dataset.Record, counts[split])
		for i := range records {
			records[i] = dataset.Record{Features: []float64{float64(i)}, Label: i % 2}
		}
		mapping.Set(split, dataset.FromRecords(dataset.Meta{Split: split}, records))
	}
	return component.FromMapping(mapping)
}

func TestDataLoaders(t *testing.T) {
	ctx := context.Background()
	r := registry.New()
	Module{}.Register(ctx, r)

	instance, err := r.Instantiate(ctx, "data_loaders", map[string]any{"batch_size": 4})
	require.NoError(t, err)
	producer, ok := instance.(component.Producer)
	require.True(t, ok)

	node := component.NewNode("loaders", producer)
	node.SetRequirement("iterators", component.NewRequirement(
		iteratorsArtifact(map[string]int{"train": 10, "val": 4}, []string{"train", "val"}),
		component.All()))

	artifact, err := node.Construct(ctx)
	require.NoError(t, err)

	loaders, order, err := component.MappingAs[*batch.Loader](artifact)
	require.NoError(t, err)
	assert.Equal(t, []string{"train", "val"}, order, "split order survives wrapping")
	assert.Equal(t, 3, loaders["train"].NumBatches(), "10 records at batch size 4")
	assert.Equal(t, 1, loaders["val"].NumBatches())
	assert.Equal(t, "train", loaders["train"].Meta().Split)
}

func TestDataLoadersRejectsBatchSize(t *testing.T) {
	ctx := context.Background()
	r := registry.New()
	Module{}.Register(ctx, r)

	_, err := r.Instantiate(ctx, "data_loaders", map[string]any{"batch_size": 0})
	assert.ErrorContains(t, err, "positive batch_size")
}
