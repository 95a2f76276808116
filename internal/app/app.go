package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/gymgridgo/internal/config"
	"github.com/vk/gymgridgo/internal/ctxlog"
	"github.com/vk/gymgridgo/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	config   *config.Model
	workers  int
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Load all pipeline files into the format-agnostic model first.
	cfgModel, err := loader.Load(ctx, appConfig.PipelinePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Configuration loaded and translated into unified model.",
		"components", len(cfgModel.Components))

	// Create and populate the registry with component constructors.
	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	registry.Apply(ctx, reg, modules...)
	logger.Debug("All component modules registered.", "count", len(modules))

	// Every declared component type must have a registered constructor.
	for _, spec := range cfgModel.Components {
		if !reg.Has(spec.Type) {
			return nil, fmt.Errorf("component %q declares unknown type %q", spec.Name, spec.Type)
		}
	}
	logger.Debug("Registry validation passed.")

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		config:   cfgModel,
		workers:  appConfig.WorkerCount,
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
