// Package blueprint is the node catalog: it assembles a named construction
// graph in two phases and drives it to completion.
//
// Phase one registers nodes and wires requirements purely by identifier, so
// declaration order never matters and no reference to an unbuilt value can
// leak into the graph. Phase two validates the topology (unknown upstream
// references and cycles are configuration errors reported before any
// producer runs) and then constructs every node with a small worker pool,
// materializing each node's requirements from the memoized outputs of its
// upstream nodes immediately before its producer executes.
//
// BuildAll aborts on the first failure: no retry, no partial recovery. The
// returned error names the failing node and wraps the root cause.
package blueprint
