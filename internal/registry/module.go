package registry

import "context"

// Module contributes a related set of constructors to a registry. The
// application composes its component vocabulary by applying modules in
// order at startup.
type Module interface {
	Register(ctx context.Context, r *Registry)
}

// Apply registers every module into the registry.
func Apply(ctx context.Context, r *Registry, modules ...Module) {
	for _, m := range modules {
		m.Register(ctx, r)
	}
}
