// Package schema holds the HCL block structures of pipeline files. It is
// purely declarative; translation into the format-agnostic config model
// lives in the hclloader package.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// RequirementBlock represents a `requirement` block inside a component:
// which upstream instance feeds this input, and an optional subscription
// narrowing its output.
type RequirementBlock struct {
	Name      string         `hcl:"requirement_name,label"`
	Component string         `hcl:"component"`
	Subscribe hcl.Expression `hcl:"subscribe,optional"`
}

// ComponentBlock represents a `component` block from a pipeline file: a
// named instance of a registered component type.
type ComponentBlock struct {
	Type         string              `hcl:"component_type,label"`
	Name         string              `hcl:"instance_name,label"`
	Params       hcl.Expression      `hcl:"params,optional"`
	Requirements []*RequirementBlock `hcl:"requirement,block"`
}

// PipelineConfig represents the top-level structure of a pipeline file,
// containing all declared components.
type PipelineConfig struct {
	Components []*ComponentBlock `hcl:"component,block"`
	Body       hcl.Body          `hcl:",remain"`
}
