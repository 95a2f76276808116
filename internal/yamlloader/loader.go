// Package yamlloader loads pipeline files written in YAML into the
// format-agnostic config model. It accepts the same component/requirement
// structure as the HCL loader, so the two formats are interchangeable.
package yamlloader

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/gymgridgo/internal/config"
	"github.com/vk/gymgridgo/internal/ctxlog"
	"github.com/vk/gymgridgo/internal/fsutil"
	"gopkg.in/yaml.v3"
)

// yamlRequirement mirrors one requirement wiring entry.
type yamlRequirement struct {
	Name      string `yaml:"name"`
	Component string `yaml:"component"`
	Subscribe []any  `yaml:"subscribe"`
}

// yamlComponent mirrors one component declaration.
type yamlComponent struct {
	Type         string             `yaml:"type"`
	Name         string             `yaml:"name"`
	Params       map[string]any     `yaml:"params"`
	Requirements []*yamlRequirement `yaml:"requirements"`
}

// yamlPipeline is the top-level document structure.
type yamlPipeline struct {
	Components []*yamlComponent `yaml:"components"`
}

// Loader is the YAML implementation of config.Loader.
type Loader struct{}

// New creates a YAML loader.
func New() *Loader { return &Loader{} }

// Load parses every .yaml/.yml file under the given paths into one merged
// model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	var filePaths []string
	for _, path := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			found, err := fsutil.FindFilesByExtension(path, ext)
			if err != nil {
				return nil, fmt.Errorf("searching %q for pipeline files: %w", path, err)
			}
			filePaths = append(filePaths, found...)
		}
	}
	if len(filePaths) == 0 {
		logger.Warn("No YAML pipeline files found.", "paths", paths)
	}

	model := &config.Model{}
	for _, filePath := range filePaths {
		raw, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("reading pipeline file %s: %w", filePath, err)
		}

		var pipeline yamlPipeline
		if err := yaml.Unmarshal(raw, &pipeline); err != nil {
			return nil, fmt.Errorf("failed to parse YAML file %s: %w", filePath, err)
		}

		for _, c := range pipeline.Components {
			spec := &config.ComponentSpec{
				Type:   c.Type,
				Name:   c.Name,
				Params: c.Params,
			}
			for _, r := range c.Requirements {
				keys, indices, err := config.SplitSelectors(r.Subscribe)
				if err != nil {
					return nil, fmt.Errorf("%s: component %q, requirement %q: %w", filePath, c.Name, r.Name, err)
				}
				spec.Requirements = append(spec.Requirements, &config.RequirementSpec{
					Name:      r.Name,
					Component: r.Component,
					Keys:      keys,
					Indices:   indices,
				})
			}
			model.Components = append(model.Components, spec)
		}
		logger.Debug("Loaded pipeline file.", "file", filePath)
	}

	if err := model.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("Pipeline model loaded.", "components", len(model.Components))
	return model, nil
}
