package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/vk/gymgridgo/internal/ctxlog"
)

// TagName is the struct tag consulted when decoding parameter maps into a
// factory's params struct.
const TagName = "gym"

// Factory describes one registered constructor: an allocator for its typed
// parameter struct and the build function itself. NewParams may be nil for
// constructors that take no parameters.
type Factory struct {
	NewParams func() any
	Build     func(ctx context.Context, params any) (any, error)
}

// UnknownKeyError reports instantiation by a key that was never registered.
type UnknownKeyError struct {
	Key string
}

// Error implements the error interface.
func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("no constructor registered under key %q", e.Key)
}

// Registry is a mutable, concurrency-safe store of constructors keyed by
// string.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]*Factory
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{factories: make(map[string]*Factory)}
}

// Register inserts a factory under the given key. Registering an existing
// key overwrites the previous factory; because a silent overwrite usually
// means two modules collided on a name, the overwrite is logged as a
// warning.
func (r *Registry) Register(ctx context.Context, key string, factory *Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[key]; exists {
		ctxlog.FromContext(ctx).Warn("Overwriting already registered constructor.", "key", key)
	}
	r.factories[key] = factory
}

// Has reports whether a constructor is registered under the key.
func (r *Registry) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[key]
	return ok
}

// Keys returns all registered keys, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.factories))
	for key := range r.factories {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Instantiate looks up the constructor registered under key, decodes params
// into its typed parameter struct, and invokes it. An absent key fails with
// UnknownKeyError. Decode errors (unknown fields, wrong types) and
// constructor errors are wrapped with the key and otherwise propagated
// unchanged.
func (r *Registry) Instantiate(ctx context.Context, key string, params map[string]any) (any, error) {
	r.mu.RLock()
	factory, ok := r.factories[key]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnknownKeyError{Key: key}
	}

	var typedParams any
	if factory.NewParams != nil {
		typedParams = factory.NewParams()
		if err := decodeParams(params, typedParams); err != nil {
			return nil, fmt.Errorf("invalid parameters for constructor %q: %w", key, err)
		}
	} else if len(params) > 0 {
		return nil, fmt.Errorf("constructor %q takes no parameters, got %d", key, len(params))
	}

	instance, err := factory.Build(ctx, typedParams)
	if err != nil {
		return nil, fmt.Errorf("constructor %q: %w", key, err)
	}
	return instance, nil
}

// InstantiateFromConfig instantiates from a configuration map whose "key"
// entry selects the constructor and whose remaining entries are its
// parameters. This is the calling convention of pipeline files, where loss,
// metric, and postprocessor configurations carry their own registry key.
func (r *Registry) InstantiateFromConfig(ctx context.Context, cfg map[string]any) (any, error) {
	rawKey, ok := cfg["key"]
	if !ok {
		return nil, fmt.Errorf("constructor configuration missing %q entry", "key")
	}
	key, ok := rawKey.(string)
	if !ok {
		return nil, fmt.Errorf("constructor configuration %q entry must be a string, got %T", "key", rawKey)
	}

	params := make(map[string]any, len(cfg)-1)
	for name, value := range cfg {
		if name != "key" {
			params[name] = value
		}
	}
	return r.Instantiate(ctx, key, params)
}

// decodeParams maps a generic parameter map onto a typed params struct.
// Unused keys are an error so that typos in a pipeline file surface here,
// at the call site, rather than as a silently defaulted value.
func decodeParams(params map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          TagName,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(params)
}
