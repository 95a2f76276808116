package app

import (
	"github.com/vk/gymgridgo/internal/registry"
	"github.com/vk/gymgridgo/modules/datasets"
	"github.com/vk/gymgridgo/modules/evaluation"
	"github.com/vk/gymgridgo/modules/experiment"
	"github.com/vk/gymgridgo/modules/loaders"
	"github.com/vk/gymgridgo/modules/registries"
	"github.com/vk/gymgridgo/modules/training"
)

// coreModules is the default component vocabulary: every built-in component
// type a pipeline file may declare.
var coreModules = []registry.Module{
	datasets.Module{},
	loaders.Module{},
	registries.Module{},
	training.Module{},
	evaluation.Module{},
	experiment.Module{},
}
