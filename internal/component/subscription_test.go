package component

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestResolveEmptySubscriptionIsIdentity(t *testing.T) {
	t.Run("sequence", func(t *testing.T) {
		a := Sequence("a", "b", "c")
		out, err := Resolve(a, All())
		require.NoError(t, err)
		assert.Equal(t, []any{"a", "b", "c"}, out.Items())
	})

	t.Run("mapping", func(t *testing.T) {
		m := NewMapping().Set("train", 1).Set("val", 2)
		out, err := Resolve(FromMapping(m), All())
		require.NoError(t, err)
		assert.Equal(t, []string{"train", "val"}, out.Mapping().Keys())
	})

	t.Run("scalar", func(t *testing.T) {
		out, err := Resolve(Scalar(42), All())
		require.NoError(t, err)
		assert.Equal(t, 42, out.Value())
	})
}

func TestResolveSequenceByIndex(t *testing.T) {
	a := Sequence("a", "b", "c")

	out, err := Resolve(a, ByIndex(2, 0))
	require.NoError(t, err)
	assert.Equal(t, []any{"c", "a"}, out.Items(), "selector order wins over container order")

	out, err = Resolve(a, ByIndex(1, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, []any{"b", "b", "b"}, out.Items(), "duplication is allowed")

	_, err = Resolve(a, ByIndex(3))
	assert.ErrorContains(t, err, "out of range")
}

func TestResolveMappingByKey(t *testing.T) {
	m := NewMapping().Set("train", 1).Set("val", 2).Set("test", 3)
	a := FromMapping(m)

	out, err := Resolve(a, ByKey("test", "train"))
	require.NoError(t, err)
	require.Equal(t, KindMapping, out.Kind())
	assert.Equal(t, []string{"test", "train"}, out.Mapping().Keys(), "insertion order equals subscription order")
	v, ok := out.Mapping().Get("test")
	require.True(t, ok)
	assert.Equal(t, 3, v)
	v, ok = out.Mapping().Get("train")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok = out.Mapping().Get("val")
	assert.False(t, ok)

	_, err = Resolve(a, ByKey("missing"))
	assert.ErrorContains(t, err, `"missing" not present`)
}

func TestResolveTypeMismatch(t *testing.T) {
	cases := []struct {
		name      string
		artifact  Artifact
		sub       Subscription
		container Kind
		selector  string
	}{
		{"index into mapping", FromMapping(NewMapping().Set("a", 1)), ByIndex(0), KindMapping, "index"},
		{"key into sequence", Sequence("a"), ByKey("a"), KindSequence, "key"},
		{"index into scalar", Scalar(1), ByIndex(0), KindScalar, "index"},
		{"key into scalar", Scalar(1), ByKey("a"), KindScalar, "key"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(tc.artifact, tc.sub)
			var mismatch *TypeMismatchError
			require.ErrorAs(t, err, &mismatch)
			assert.Equal(t, tc.container, mismatch.ContainerKind)
			assert.Equal(t, tc.selector, mismatch.SelectorKind)
		})
	}
}

func TestResolveIsPure(t *testing.T) {
	a := Sequence("a", "b", "c")
	_, err := Resolve(a, ByIndex(2, 0))
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "c"}, a.Items(), "input artifact is untouched")

	m := NewMapping().Set("x", 1).Set("y", 2)
	_, err = Resolve(FromMapping(m), ByKey("y"))
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, m.Keys())
}

// Property: narrowing a sequence by any in-range index list yields exactly
// the selected elements, in selector order.
func TestResolveSequenceProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		items := rapid.SliceOfN(rapid.Int(), 1, 20).Draw(t, "items")
		boxed := make([]any, len(items))
		for i, v := range items {
			boxed[i] = v
		}
		indices := rapid.SliceOfN(rapid.IntRange(0, len(items)-1), 0, 30).Draw(t, "indices")

		out, err := Resolve(Sequence(boxed...), ByIndex(indices...))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(indices) == 0 {
			// Empty subscription is identity.
			if len(out.Items()) != len(items) {
				t.Fatalf("identity resolve changed length: %d != %d", len(out.Items()), len(items))
			}
			return
		}
		if len(out.Items()) != len(indices) {
			t.Fatalf("narrowed length %d, want %d", len(out.Items()), len(indices))
		}
		for pos, idx := range indices {
			if out.Items()[pos] != items[idx] {
				t.Fatalf("position %d: got %v, want %v", pos, out.Items()[pos], items[idx])
			}
		}
	})
}

func TestMappingSetKeepsPositionOnOverwrite(t *testing.T) {
	m := NewMapping().Set("a", 1).Set("b", 2).Set("a", 3)
	assert.Equal(t, []string{"a", "b"}, m.Keys())
	v, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, 2, m.Len())
}

func TestTypeMismatchErrorMatching(t *testing.T) {
	_, err := Resolve(FromMapping(NewMapping().Set("a", 1)), ByIndex(0))
	target := &TypeMismatchError{}
	assert.True(t, errors.As(err, &target))
}
