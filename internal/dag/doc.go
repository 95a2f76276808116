// Package dag provides the dependency topology underneath the blueprint:
// a concurrency-safe directed acyclic graph keyed by component identifier,
// with cycle detection and topological ordering. It knows nothing about
// artifacts or producers; the blueprint owns that layer.
package dag
