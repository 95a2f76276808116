// Package experiment registers the experiment_info component type, which
// anchors a pipeline run to a run directory on disk.
package experiment

import (
	"context"

	"github.com/vk/gymgridgo/internal/component"
	runinfo "github.com/vk/gymgridgo/internal/experiment"
	"github.com/vk/gymgridgo/internal/registry"
)

// Module wires the experiment component vocabulary into a registry.
type Module struct{}

// Register implements registry.Module.
func (Module) Register(ctx context.Context, r *registry.Registry) {
	r.Register(ctx, "experiment_info", &registry.Factory{
		NewParams: func() any { return &infoParams{} },
		Build:     buildInfo,
	})
}

type infoParams struct {
	LogDir       string `gym:"log_dir"`
	GridSearchID string `gym:"grid_search_id"`
	RunID        string `gym:"run_id"`
	ModelName    string `gym:"model_name"`
}

func buildInfo(_ context.Context, params any) (any, error) {
	p := params.(*infoParams)
	if p.LogDir == "" {
		p.LogDir = "runs"
	}
	return component.ProducerFunc(func(ctx context.Context, node *component.Node) (component.Artifact, error) {
		info, err := runinfo.Create(p.LogDir, p.GridSearchID, p.RunID, p.ModelName)
		if err != nil {
			return component.Artifact{}, err
		}
		return component.Scalar(info), nil
	}), nil
}
