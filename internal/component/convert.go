package component

import "fmt"

// ScalarAs extracts a scalar artifact's payload as a concrete type. It is
// the bridge between the untyped graph and typed domain code; a shape or
// type mismatch is reported with the expected type name.
func ScalarAs[T any](a Artifact) (T, error) {
	var zero T
	if a.Kind() != KindScalar {
		return zero, fmt.Errorf("expected a scalar artifact, got %s", a.Kind())
	}
	v, ok := a.Value().(T)
	if !ok {
		return zero, fmt.Errorf("expected scalar artifact of type %T, got %T", zero, a.Value())
	}
	return v, nil
}

// SequenceAs extracts a sequence artifact's items as a concrete element
// type.
func SequenceAs[T any](a Artifact) ([]T, error) {
	if a.Kind() != KindSequence {
		return nil, fmt.Errorf("expected a sequence artifact, got %s", a.Kind())
	}
	items := make([]T, 0, len(a.Items()))
	for i, raw := range a.Items() {
		v, ok := raw.(T)
		if !ok {
			var zero T
			return nil, fmt.Errorf("sequence element %d: expected %T, got %T", i, zero, raw)
		}
		items = append(items, v)
	}
	return items, nil
}

// MappingAs extracts a mapping artifact's entries as a concrete value type.
// The returned key slice preserves the mapping's insertion order.
func MappingAs[T any](a Artifact) (map[string]T, []string, error) {
	if a.Kind() != KindMapping {
		return nil, nil, fmt.Errorf("expected a mapping artifact, got %s", a.Kind())
	}
	keys := a.Mapping().Keys()
	entries := make(map[string]T, len(keys))
	for _, k := range keys {
		raw, _ := a.Mapping().Get(k)
		v, ok := raw.(T)
		if !ok {
			var zero T
			return nil, nil, fmt.Errorf("mapping entry %q: expected %T, got %T", k, zero, raw)
		}
		entries[k] = v
	}
	return entries, keys, nil
}
