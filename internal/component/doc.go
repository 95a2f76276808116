// Package component implements the generic construction engine: artifacts,
// subscriptions, requirements, and lazily constructed nodes.
//
// A Node is a named unit of computation. It declares what it needs as a set
// of named Requirements, each pointing at another node's output and
// optionally narrowed by a Subscription. On first Construct the node's
// producer runs once with all requirements resolved; the result is cached
// and every later Construct returns the cached artifact without re-running
// the producer. The construct-once transition is guarded by a mutex, so
// concurrent first-time constructions of the same node never double-invoke
// a producer with side effects.
//
// Artifacts are a closed, tagged variant over scalar values, ordered
// sequences, and insertion-ordered string mappings. Keeping the shape
// explicit (instead of inspecting runtime types) makes subscription
// mismatches a single well-defined error case.
package component
