package component

// Kind identifies the shape of an Artifact.
type Kind int

const (
	// KindScalar is a single opaque value.
	KindScalar Kind = iota
	// KindSequence is an ordered sequence of values.
	KindSequence
	// KindMapping is an insertion-ordered mapping from string keys to values.
	KindMapping
)

// String returns a human-readable name for the kind, used in error messages.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Artifact is the value produced by a node: a tagged variant over a scalar,
// a sequence, or a mapping. The zero value is a scalar holding nil.
type Artifact struct {
	kind    Kind
	scalar  any
	items   []any
	mapping *Mapping
}

// Scalar wraps a single opaque value into an Artifact.
func Scalar(v any) Artifact {
	return Artifact{kind: KindScalar, scalar: v}
}

// Sequence wraps an ordered list of values into an Artifact.
func Sequence(items ...any) Artifact {
	return Artifact{kind: KindSequence, items: items}
}

// FromMapping wraps an ordered mapping into an Artifact. A nil mapping is
// treated as empty.
func FromMapping(m *Mapping) Artifact {
	if m == nil {
		m = NewMapping()
	}
	return Artifact{kind: KindMapping, mapping: m}
}

// Kind reports the shape of the artifact.
func (a Artifact) Kind() Kind { return a.kind }

// Value returns the scalar payload. It is nil for non-scalar artifacts.
func (a Artifact) Value() any { return a.scalar }

// Items returns the sequence payload. It is nil for non-sequence artifacts.
func (a Artifact) Items() []any { return a.items }

// Mapping returns the mapping payload. It is nil for non-mapping artifacts.
func (a Artifact) Mapping() *Mapping { return a.mapping }

// Mapping is a string-keyed map that remembers insertion order, so that a
// narrowed mapping preserves the order of the subscription that produced it.
type Mapping struct {
	keys   []string
	values map[string]any
}

// NewMapping creates an empty ordered mapping.
func NewMapping() *Mapping {
	return &Mapping{values: make(map[string]any)}
}

// Set inserts or overwrites a key. An overwritten key keeps its original
// position. Returns the mapping for chaining.
func (m *Mapping) Set(key string, v any) *Mapping {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
	return m
}

// Get looks up a key, reporting whether it is present.
func (m *Mapping) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order. The slice is a copy.
func (m *Mapping) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Len returns the number of entries.
func (m *Mapping) Len() int { return len(m.keys) }
