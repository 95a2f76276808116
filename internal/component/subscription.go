package component

import (
	"fmt"
	"strings"
)

// Subscription selects a subset of an upstream artifact: a list of integer
// indices into a sequence, or a list of string keys into a mapping. The two
// selector kinds are mutually exclusive by construction. The zero value (or
// All) selects the whole artifact.
type Subscription struct {
	indices []int
	keys    []string
}

// All returns the empty subscription, which selects the entire artifact.
func All() Subscription { return Subscription{} }

// ByIndex returns a subscription selecting sequence elements by position.
// Order is preserved as given, so elements may be reordered or duplicated.
func ByIndex(indices ...int) Subscription {
	return Subscription{indices: indices}
}

// ByKey returns a subscription selecting mapping entries by key, in the
// given order.
func ByKey(keys ...string) Subscription {
	return Subscription{keys: keys}
}

// IsEmpty reports whether the subscription selects the whole artifact.
func (s Subscription) IsEmpty() bool {
	return len(s.indices) == 0 && len(s.keys) == 0
}

// String renders the selector list for logs and error messages.
func (s Subscription) String() string {
	if s.IsEmpty() {
		return "[]"
	}
	parts := make([]string, 0, len(s.indices)+len(s.keys))
	for _, i := range s.indices {
		parts = append(parts, fmt.Sprintf("%d", i))
	}
	for _, k := range s.keys {
		parts = append(parts, fmt.Sprintf("%q", k))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Resolve narrows an artifact according to a subscription. It is a pure
// function of its inputs:
//
//   - an empty subscription returns the artifact unchanged,
//   - index selectors against a sequence return a new sequence in selector
//     order,
//   - key selectors against a mapping return a new mapping whose insertion
//     order equals the selector order,
//   - any other combination fails with a TypeMismatchError.
//
// A selector pointing outside the artifact (index out of range, absent key)
// is an error naming the offending selector.
func Resolve(a Artifact, s Subscription) (Artifact, error) {
	if s.IsEmpty() {
		return a, nil
	}

	if len(s.indices) > 0 {
		if a.Kind() != KindSequence {
			return Artifact{}, &TypeMismatchError{ContainerKind: a.Kind(), SelectorKind: "index"}
		}
		items := a.Items()
		narrowed := make([]any, 0, len(s.indices))
		for _, i := range s.indices {
			if i < 0 || i >= len(items) {
				return Artifact{}, fmt.Errorf("subscription index %d out of range for sequence of length %d", i, len(items))
			}
			narrowed = append(narrowed, items[i])
		}
		return Sequence(narrowed...), nil
	}

	if a.Kind() != KindMapping {
		return Artifact{}, &TypeMismatchError{ContainerKind: a.Kind(), SelectorKind: "key"}
	}
	narrowed := NewMapping()
	for _, k := range s.keys {
		v, ok := a.Mapping().Get(k)
		if !ok {
			return Artifact{}, fmt.Errorf("subscription key %q not present in mapping", k)
		}
		narrowed.Set(k, v)
	}
	return FromMapping(narrowed), nil
}
