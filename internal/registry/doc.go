// Package registry provides the string-keyed factory store behind every
// dynamic-by-name instantiation in the framework.
//
// A Registry maps a string key to a Factory: a typed parameter struct
// allocator plus a build function. Instantiation decodes the caller's
// generic parameter map into the factory's own params struct before the
// build function runs, so mismatched or surplus parameters fail at the call
// site with an error naming the key, instead of surfacing as an opaque
// invocation failure deep inside the constructor.
//
// Registries are ordinary artifacts: the bundled pipeline builds them as
// graph components (model registry, loss registry, ...) and downstream
// components consume them as requirements.
package registry
