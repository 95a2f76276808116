package registries

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gymgridgo/internal/component"
	"github.com/vk/gymgridgo/internal/ml/losses"
	"github.com/vk/gymgridgo/internal/ml/metrics"
	"github.com/vk/gymgridgo/internal/ml/models"
	"github.com/vk/gymgridgo/internal/ml/postprocess"
	"github.com/vk/gymgridgo/internal/registry"
)

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()
	Module{}.Register(context.Background(), r)
	return r
}

func construct(t *testing.T, r *registry.Registry, key string, params map[string]any) component.Artifact {
	t.Helper()
	ctx := context.Background()

	instance, err := r.Instantiate(ctx, key, params)
	require.NoError(t, err)
	producer, ok := instance.(component.Producer)
	require.True(t, ok)

	artifact, err := component.NewNode(key, producer).Construct(ctx)
	require.NoError(t, err)
	return artifact
}

func TestLossConstructors(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()

	instance, err := r.InstantiateFromConfig(ctx, map[string]any{
		"key": "loss/lp", "tag": "lp2", "exponent": 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "lp2", instance.(losses.Loss).Tag())

	instance, err = r.InstantiateFromConfig(ctx, map[string]any{
		"key": "loss/lp", "tag": "scaled", "exponent": 2, "scale": 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "scaled", instance.(losses.Loss).Tag())

	_, err = r.InstantiateFromConfig(ctx, map[string]any{"key": "loss/lp", "tag": "bad"})
	assert.ErrorContains(t, err, "positive exponent")
}

func TestModelRegistryComponent(t *testing.T) {
	r := newRegistry(t)
	artifact := construct(t, r, "model_registry", nil)

	reg, err := component.ScalarAs[*models.Registry](artifact)
	require.NoError(t, err)

	for _, key := range []string{"linear", "perceptron"} {
		m, err := reg.Build(key, 1, 4, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, m.NumClasses())
	}
}

func TestLossFunctionRegistryComponent(t *testing.T) {
	r := newRegistry(t)
	artifact := construct(t, r, "loss_function_registry", map[string]any{
		"entries": []any{
			map[string]any{"key": "loss/cross_entropy", "tag": "ce"},
			map[string]any{"key": "loss/bce_with_logits", "tag": "bce"},
			map[string]any{"key": "loss/nll", "tag": "nll"},
		},
	})

	reg, err := component.ScalarAs[*losses.Registry](artifact)
	require.NoError(t, err)
	for _, tag := range []string{"ce", "bce", "nll"} {
		loss, err := reg.Get(tag)
		require.NoError(t, err)
		assert.Equal(t, tag, loss.Tag())
	}
}

func TestMetricRegistryComponent(t *testing.T) {
	r := newRegistry(t)
	artifact := construct(t, r, "metric_registry", map[string]any{
		"entries": []any{
			map[string]any{"key": "metric/f1", "tag": "f1", "positive_class": 1},
			map[string]any{"key": "metric/auroc", "tag": "auroc", "positive_class": 1},
			map[string]any{"key": "metric/accuracy", "tag": "acc"},
		},
	})

	reg, err := component.ScalarAs[*metrics.Registry](artifact)
	require.NoError(t, err)
	for _, tag := range []string{"f1", "auroc", "acc"} {
		metric, err := reg.Get(tag)
		require.NoError(t, err)
		assert.Equal(t, tag, metric.Tag())
	}
}

func TestPostProcessingRegistryComponent(t *testing.T) {
	r := newRegistry(t)
	artifact := construct(t, r, "postprocessing_registry", map[string]any{
		"entries": []any{
			map[string]any{"key": "postprocessor/softmax", "tag": "softmax"},
			map[string]any{"key": "postprocessor/binarize", "tag": "bin", "threshold": 0.5},
		},
	})

	reg, err := component.ScalarAs[*postprocess.Registry](artifact)
	require.NoError(t, err)

	bin, err := reg.Get("bin")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, bin.Apply([]float64{0.2, 0.7}))
}

func TestRegistryComponentRejectsUnknownConstructor(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()

	instance, err := r.Instantiate(ctx, "loss_function_registry", map[string]any{
		"entries": []any{map[string]any{"key": "loss/hinge", "tag": "h"}},
	})
	require.NoError(t, err, "the bad entry surfaces at construction, not instantiation")

	_, err = component.NewNode("losses", instance.(component.Producer)).Construct(ctx)
	require.Error(t, err)
	assert.ErrorContains(t, err, `no constructor registered under key "loss/hinge"`)
}

func TestRegistryComponentRejectsWrongKind(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()

	// A metric constructor inside the loss registry is a config mistake.
	instance, err := r.Instantiate(ctx, "loss_function_registry", map[string]any{
		"entries": []any{map[string]any{"key": "metric/accuracy", "tag": "acc"}},
	})
	require.NoError(t, err)

	_, err = component.NewNode("losses", instance.(component.Producer)).Construct(ctx)
	assert.ErrorContains(t, err, "did not produce a loss function")
}
