// Package hclloader loads pipeline files written in HCL and translates
// them into the format-agnostic config model.
package hclloader

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/gymgridgo/internal/config"
	"github.com/vk/gymgridgo/internal/ctxlog"
	"github.com/vk/gymgridgo/internal/fsutil"
	"github.com/vk/gymgridgo/internal/schema"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct{}

// New creates an HCL loader.
func New() *Loader { return &Loader{} }

// Load parses every .hcl file under the given paths into one merged model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	var filePaths []string
	for _, path := range paths {
		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("searching %q for pipeline files: %w", path, err)
		}
		filePaths = append(filePaths, found...)
	}
	if len(filePaths) == 0 {
		logger.Warn("No .hcl pipeline files found.", "paths", paths)
	}

	parser := hclparse.NewParser()
	model := &config.Model{}

	for _, filePath := range filePaths {
		hclFile, diags := parser.ParseHCLFile(filePath)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", filePath, diags)
		}

		var pipeline schema.PipelineConfig
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &pipeline); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode pipeline file %s: %w", filePath, diags)
		}

		for _, block := range pipeline.Components {
			spec, err := translateComponent(block)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", filePath, err)
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

// translateComponent converts one HCL component block into a ComponentSpec.
func translateComponent(block *schema.ComponentBlock) (*config.ComponentSpec, error) {
	spec := &config.ComponentSpec{
		Type: block.Type,
		Name: block.Name,
	}

	if block.Params != nil {
		val, diags := block.Params.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("component %q: evaluating params: %w", block.Name, diags)
		}
		if !val.IsNull() {
			goVal, err := ctyToGo(val)
			if err != nil {
				return nil, fmt.Errorf("component %q: params: %w", block.Name, err)
			}
			params, ok := goVal.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("component %q: params must be an object", block.Name)
			}
			spec.Params = params
		}
	}

	for _, reqBlock := range block.Requirements {
		req := &config.RequirementSpec{
			Name:      reqBlock.Name,
			Component: reqBlock.Component,
		}
		if reqBlock.Subscribe != nil {
			val, diags := reqBlock.Subscribe.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("component %q, requirement %q: evaluating subscribe: %w", block.Name, reqBlock.Name, diags)
			}
			if !val.IsNull() {
				goVal, err := ctyToGo(val)
				if err != nil {
					return nil, fmt.Errorf("component %q, requirement %q: subscribe: %w", block.Name, reqBlock.Name, err)
				}
				raw, ok := goVal.([]any)
				if !ok {
					return nil, fmt.Errorf("component %q, requirement %q: subscribe must be a list", block.Name, reqBlock.Name)
				}
				keys, indices, err := config.SplitSelectors(raw)
				if err != nil {
					return nil, fmt.Errorf("component %q, requirement %q: %w", block.Name, reqBlock.Name, err)
				}
				req.Keys = keys
				req.Indices = indices
			}
		}
		spec.Requirements = append(spec.Requirements, req)
	}

	return spec, nil
}
