package app

import (
	"context"
	"fmt"

	"github.com/vk/gymgridgo/internal/blueprint"
	"github.com/vk/gymgridgo/internal/component"
	"github.com/vk/gymgridgo/internal/config"
	"github.com/vk/gymgridgo/internal/ctxlog"
)

// Run executes the main application logic: it assembles the construction
// graph from the loaded model and builds every component in it.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	catalog, err := a.assembleCatalog(ctx)
	if err != nil {
		return fmt.Errorf("failed to assemble construction graph: %w", err)
	}
	a.logger.Debug("Construction graph assembled.", "node_count", len(a.config.Components))

	a.logger.Info("Component constructors registered:", "count", len(a.registry.Keys()))

	if len(a.config.Components) == 0 {
		a.logger.Warn("No components declared, construction not required.")
		return nil
	}

	a.logger.Info("🚀 Starting concurrent construction...")
	artifacts, err := catalog.BuildAll(ctx)
	if err != nil {
		return fmt.Errorf("construction failed: %w", err)
	}
	a.logger.Info("🏁 Construction finished.")

	for _, id := range catalog.IDs() {
		a.logger.Info("Component constructed.", "component", id, "artifact", describeArtifact(artifacts[id]))
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// assembleCatalog translates the config model into a catalog: one node per
// declared component, one wire per declared requirement.
func (a *App) assembleCatalog(ctx context.Context) (*blueprint.Catalog, error) {
	catalog := blueprint.New(a.workers)
	for _, spec := range a.config.Components {
		instance, err := a.registry.Instantiate(ctx, spec.Type, spec.Params)
		if err != nil {
			return nil, err
		}
		producer, ok := instance.(component.Producer)
		if !ok {
			return nil, fmt.Errorf("constructor %q did not produce a component producer", spec.Type)
		}
		if err := catalog.RegisterNode(spec.Name, producer); err != nil {
			return nil, err
		}
	}
	for _, spec := range a.config.Components {
		for _, req := range spec.Requirements {
			if err := catalog.Wire(spec.Name, req.Name, req.Component, subscriptionFor(req)); err != nil {
				return nil, err
			}
		}
	}
	return catalog, nil
}

// subscriptionFor translates a requirement's selectors into a subscription.
func subscriptionFor(req *config.RequirementSpec) component.Subscription {
	switch {
	case len(req.Keys) > 0:
		return component.ByKey(req.Keys...)
	case len(req.Indices) > 0:
		return component.ByIndex(req.Indices...)
	default:
		return component.All()
	}
}

// describeArtifact renders a short, log-friendly artifact summary.
func describeArtifact(a component.Artifact) string {
	switch a.Kind() {
	case component.KindSequence:
		return fmt.Sprintf("sequence[%d]", len(a.Items()))
	case component.KindMapping:
		return fmt.Sprintf("mapping%v", a.Mapping().Keys())
	default:
		return fmt.Sprintf("scalar(%T)", a.Value())
	}
}
