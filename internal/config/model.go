package config

import (
	"context"
	"fmt"
)

// Model is the loaded, format-agnostic description of one pipeline: which
// components exist, how they are parameterized, and how their requirements
// are wired.
type Model struct {
	Components []*ComponentSpec
}

// ComponentSpec declares one named component instance of a registered type.
type ComponentSpec struct {
	// Type is the registry key of the component constructor.
	Type string
	// Name is the instance identifier, unique within the pipeline.
	Name string
	// Params are the constructor parameters, decoded per type at
	// instantiation time.
	Params map[string]any
	// Requirements wire this component's named inputs to other components.
	Requirements []*RequirementSpec
}

// RequirementSpec wires one named requirement to an upstream component,
// optionally narrowed by key or index selectors. Keys and Indices are
// mutually exclusive; loaders reject documents mixing both kinds.
type RequirementSpec struct {
	Name      string
	Component string
	Keys      []string
	Indices   []int
}

// Validate checks structural invariants that hold regardless of source
// format: non-empty types and names, unique instance names, and non-empty
// requirement wiring.
func (m *Model) Validate() error {
	seen := make(map[string]bool, len(m.Components))
	for _, spec := range m.Components {
		if spec.Type == "" || spec.Name == "" {
			return fmt.Errorf("component declaration missing type or name (type=%q, name=%q)", spec.Type, spec.Name)
		}
		if seen[spec.Name] {
			return fmt.Errorf("duplicate component instance name %q", spec.Name)
		}
		seen[spec.Name] = true

		for _, req := range spec.Requirements {
			if req.Name == "" || req.Component == "" {
				return fmt.Errorf("component %q: requirement missing name or component reference", spec.Name)
			}
			if len(req.Keys) > 0 && len(req.Indices) > 0 {
				return fmt.Errorf("component %q, requirement %q: subscription mixes key and index selectors", spec.Name, req.Name)
			}
		}
	}
	return nil
}

// SplitSelectors classifies a raw selector list into key or index selectors.
// All elements must share one kind; a mixed or unsupported list is an error.
func SplitSelectors(raw []any) (keys []string, indices []int, err error) {
	for _, sel := range raw {
		switch v := sel.(type) {
		case string:
			if len(indices) > 0 {
				return nil, nil, fmt.Errorf("subscription mixes key %q with index selectors", v)
			}
			keys = append(keys, v)
		case int:
			if len(keys) > 0 {
				return nil, nil, fmt.Errorf("subscription mixes index %d with key selectors", v)
			}
			indices = append(indices, v)
		case int64:
			if len(keys) > 0 {
				return nil, nil, fmt.Errorf("subscription mixes index %d with key selectors", v)
			}
			indices = append(indices, int(v))
		case float64:
			if v != float64(int(v)) {
				return nil, nil, fmt.Errorf("subscription index %v is not an integer", v)
			}
			if len(keys) > 0 {
				return nil, nil, fmt.Errorf("subscription mixes index %v with key selectors", v)
			}
			indices = append(indices, int(v))
		default:
			return nil, nil, fmt.Errorf("unsupported subscription selector %v (%T)", sel, sel)
		}
	}
	return keys, indices, nil
}

// Loader translates one or more pipeline documents into the shared model.
// Paths may be files or directories; directories are searched recursively.
type Loader interface {
	Load(ctx context.Context, paths ...string) (*Model, error)
}
