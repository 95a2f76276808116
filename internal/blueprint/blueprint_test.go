package blueprint

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gymgridgo/internal/component"
)

// splitsProducer returns {"x":1, "y":2} and counts invocations.
func splitsProducer(calls *atomic.Int64) component.ProducerFunc {
	return func(ctx context.Context, node *component.Node) (component.Artifact, error) {
		calls.Add(1)
		return component.FromMapping(component.NewMapping().Set("x", 1).Set("y", 2)), nil
	}
}

// passThrough forwards the named requirement as its own artifact.
func passThrough(name string) component.ProducerFunc {
	return func(ctx context.Context, node *component.Node) (component.Artifact, error) {
		return node.GetRequirement(name)
	}
}

func TestBuildAllEndToEnd(t *testing.T) {
	var aCalls atomic.Int64
	c := New(4)

	require.NoError(t, c.RegisterNode("A", splitsProducer(&aCalls)))
	require.NoError(t, c.RegisterNode("B", passThrough("source")))
	require.NoError(t, c.Wire("B", "source", "A", component.ByKey("x")))

	// Three more dependents of A, consuming the full mapping.
	for _, id := range []string{"C", "D", "E"} {
		require.NoError(t, c.RegisterNode(id, passThrough("source")))
		require.NoError(t, c.Wire(id, "source", "A", component.All()))
	}

	results, err := c.BuildAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 5)

	b := results["B"]
	require.Equal(t, component.KindMapping, b.Kind())
	assert.Equal(t, []string{"x"}, b.Mapping().Keys())
	v, ok := b.Mapping().Get("x")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	full := results["C"]
	assert.Equal(t, []string{"x", "y"}, full.Mapping().Keys())

	assert.Equal(t, int64(1), aCalls.Load(), "A constructed exactly once despite four dependents")
}

func TestBuildAllDetectsCycleBeforeAnyProducerRuns(t *testing.T) {
	var calls atomic.Int64
	counting := component.ProducerFunc(func(ctx context.Context, node *component.Node) (component.Artifact, error) {
		calls.Add(1)
		return component.Scalar(nil), nil
	})

	c := New(2)
	require.NoError(t, c.RegisterNode("A", counting))
	require.NoError(t, c.RegisterNode("B", counting))
	require.NoError(t, c.Wire("A", "other", "B", component.All()))
	require.NoError(t, c.Wire("B", "other", "A", component.All()))

	_, err := c.BuildAll(context.Background())
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, int64(0), calls.Load(), "no producer may run on cyclic wiring")
}

func TestBuildAllUnknownUpstream(t *testing.T) {
	c := New(1)
	require.NoError(t, c.RegisterNode("B", passThrough("source")))
	require.NoError(t, c.Wire("B", "source", "ghost", component.All()))

	_, err := c.BuildAll(context.Background())
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "B", cfgErr.Node)
	assert.ErrorContains(t, err, `unknown component "ghost"`)
}

func TestRegisterNodeRejectsDuplicateIdentifier(t *testing.T) {
	c := New(1)
	producer := component.ProducerFunc(func(ctx context.Context, node *component.Node) (component.Artifact, error) {
		return component.Scalar(nil), nil
	})
	require.NoError(t, c.RegisterNode("A", producer))
	err := c.RegisterNode("A", producer)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.ErrorContains(t, err, "duplicate component identifier")
}

func TestWireValidation(t *testing.T) {
	c := New(1)
	require.NoError(t, c.RegisterNode("A", passThrough("x")))

	err := c.Wire("missing", "x", "A", component.All())
	assert.ErrorContains(t, err, "component not registered")

	require.NoError(t, c.Wire("A", "x", "B", component.All()))
	err = c.Wire("A", "x", "C", component.All())
	assert.ErrorContains(t, err, `requirement "x" wired twice`)
}

func TestBuildAllAbortsOnProducerFailure(t *testing.T) {
	boom := errors.New("bad parameters")
	var downstreamCalls atomic.Int64

	c := New(4)
	require.NoError(t, c.RegisterNode("broken", component.ProducerFunc(
		func(ctx context.Context, node *component.Node) (component.Artifact, error) {
			return component.Artifact{}, boom
		})))
	require.NoError(t, c.RegisterNode("dependent", component.ProducerFunc(
		func(ctx context.Context, node *component.Node) (component.Artifact, error) {
			downstreamCalls.Add(1)
			return component.Scalar(nil), nil
		})))
	require.NoError(t, c.Wire("dependent", "input", "broken", component.All()))

	_, err := c.BuildAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom, "root cause survives wrapping")
	assert.ErrorContains(t, err, `"broken"`, "error names the failing component")
	assert.Equal(t, int64(0), downstreamCalls.Load(), "dependents of a failed node are skipped")

	// The failed node stays unbuilt.
	n, ok := c.Node("broken")
	require.True(t, ok)
	assert.False(t, n.Built())
}

func TestBuildAllDrainsIndependentBranchAfterFailure(t *testing.T) {
	// With a single worker, the healthy root is still queued when the
	// failing root cancels the build. Its subtree must be skipped rather
	// than left pending, or BuildAll would never return.
	boom := errors.New("boom")
	var leafCalls atomic.Int64

	c := New(1)
	require.NoError(t, c.RegisterNode("a_fail", component.ProducerFunc(
		func(ctx context.Context, node *component.Node) (component.Artifact, error) {
			return component.Artifact{}, boom
		})))
	require.NoError(t, c.RegisterNode("z_ok", component.ProducerFunc(
		func(ctx context.Context, node *component.Node) (component.Artifact, error) {
			return component.Scalar(nil), nil
		})))
	require.NoError(t, c.RegisterNode("z_leaf", component.ProducerFunc(
		func(ctx context.Context, node *component.Node) (component.Artifact, error) {
			leafCalls.Add(1)
			return component.Scalar(nil), nil
		})))
	require.NoError(t, c.Wire("z_leaf", "input", "z_ok", component.All()))

	_, err := c.BuildAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(0), leafCalls.Load(), "subtree of the cancelled branch never runs")
}

func TestBuildAllCancelledContext(t *testing.T) {
	var calls atomic.Int64
	counting := component.ProducerFunc(func(ctx context.Context, node *component.Node) (component.Artifact, error) {
		calls.Add(1)
		return component.Scalar(nil), nil
	})

	c := New(2)
	require.NoError(t, c.RegisterNode("A", counting))
	require.NoError(t, c.RegisterNode("B", passThrough("source")))
	require.NoError(t, c.Wire("B", "source", "A", component.All()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.BuildAll(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), calls.Load(), "no producer runs once the build is cancelled")
}

func TestConstructOnDemand(t *testing.T) {
	var aCalls, unrelatedCalls atomic.Int64
	c := New(1)
	require.NoError(t, c.RegisterNode("A", splitsProducer(&aCalls)))
	require.NoError(t, c.RegisterNode("B", passThrough("source")))
	require.NoError(t, c.Wire("B", "source", "A", component.ByKey("y")))
	require.NoError(t, c.RegisterNode("unrelated", component.ProducerFunc(
		func(ctx context.Context, node *component.Node) (component.Artifact, error) {
			unrelatedCalls.Add(1)
			return component.Scalar(nil), nil
		})))

	out, err := c.Construct(context.Background(), "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, out.Mapping().Keys())
	assert.Equal(t, int64(1), aCalls.Load())
	assert.Equal(t, int64(0), unrelatedCalls.Load(), "on-demand construction leaves unrelated subtrees untouched")

	t.Run("cycle via recursion stack", func(t *testing.T) {
		require.NoError(t, c.RegisterNode("X", passThrough("in")))
		require.NoError(t, c.RegisterNode("Y", passThrough("in")))
		require.NoError(t, c.Wire("X", "in", "Y", component.All()))
		require.NoError(t, c.Wire("Y", "in", "X", component.All()))
		_, err := c.Construct(context.Background(), "X")
		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.ErrorContains(t, err, "cyclic requirement wiring")
	})

	t.Run("unknown component", func(t *testing.T) {
		_, err := c.Construct(context.Background(), "nope")
		var cfgErr *ConfigError
		assert.ErrorAs(t, err, &cfgErr)
	})
}

func TestBuildAllEmptyCatalog(t *testing.T) {
	results, err := New(2).BuildAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBuildAllWideFanOut(t *testing.T) {
	// Many producers racing on a shared upstream must still construct the
	// upstream exactly once.
	var rootCalls atomic.Int64
	c := New(8)
	require.NoError(t, c.RegisterNode("root", splitsProducer(&rootCalls)))
	for _, id := range []string{
		"c00", "c01", "c02", "c03", "c04", "c05", "c06", "c07",
		"c08", "c09", "c10", "c11", "c12", "c13", "c14", "c15",
	} {
		require.NoError(t, c.RegisterNode(id, passThrough("source")))
		require.NoError(t, c.Wire(id, "source", "root", component.ByKey("x")))
	}

	results, err := c.BuildAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, results, 17)
	assert.Equal(t, int64(1), rootCalls.Load())
}
