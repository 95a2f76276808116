package component

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/gymgridgo/internal/ctxlog"
)

// Producer turns a node's resolved requirements into an artifact. It runs
// at most once per node per graph instance.
type Producer interface {
	Produce(ctx context.Context, node *Node) (Artifact, error)
}

// ProducerFunc adapts a plain function to the Producer interface.
type ProducerFunc func(ctx context.Context, node *Node) (Artifact, error)

// Produce implements Producer.
func (f ProducerFunc) Produce(ctx context.Context, node *Node) (Artifact, error) {
	return f(ctx, node)
}

// Node is a named unit of lazy, memoized construction. Construction state
// is an explicit flag rather than a nil sentinel, so a producer that
// legitimately returns an empty artifact is never mistaken for "not yet
// built".
type Node struct {
	id       string
	producer Producer

	// mu guards the unbuilt -> built transition. This is the single
	// correctness-critical synchronization point: two concurrent first-time
	// constructions must not double-invoke a producer with side effects.
	mu     sync.Mutex
	built  bool
	output Artifact

	// reqMu guards the requirements map separately from mu, because the
	// producer reads requirements while mu is held during Construct.
	reqMu        sync.RWMutex
	requirements map[string]Requirement
}

// NewNode creates an unbuilt node with the given identifier and producer.
func NewNode(id string, producer Producer) *Node {
	return &Node{
		id:           id,
		producer:     producer,
		requirements: make(map[string]Requirement),
	}
}

// ID returns the node's identifier, unique within a graph.
func (n *Node) ID() string { return n.id }

// SetRequirement wires (or rewires) a named requirement.
func (n *Node) SetRequirement(name string, req Requirement) {
	n.reqMu.Lock()
	defer n.reqMu.Unlock()
	n.requirements[name] = req
}

// HasRequirement reports whether a requirement with the given name is wired.
func (n *Node) HasRequirement(name string) bool {
	n.reqMu.RLock()
	defer n.reqMu.RUnlock()
	_, ok := n.requirements[name]
	return ok
}

// GetRequirement returns the resolved (possibly narrowed) value of a wired
// requirement. Asking for an unwired name fails with
// MissingRequirementError.
func (n *Node) GetRequirement(name string) (Artifact, error) {
	n.reqMu.RLock()
	req, ok := n.requirements[name]
	n.reqMu.RUnlock()
	if !ok {
		return Artifact{}, &MissingRequirementError{Node: n.id, Requirement: name}
	}
	resolved, err := req.Resolved()
	if err != nil {
		return Artifact{}, fmt.Errorf("requirement %q of component %q: %w", name, n.id, err)
	}
	return resolved, nil
}

// Built reports whether the node has been constructed.
func (n *Node) Built() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.built
}

// Construct returns the node's artifact, invoking the producer on first
// call and the cached value afterwards. A failing producer leaves the node
// unbuilt; a later Construct retries from scratch.
func (n *Node) Construct(ctx context.Context) (Artifact, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.built {
		return n.output, nil
	}

	ctxlog.FromContext(ctx).Debug("Constructing component.", "component", n.id)
	out, err := n.producer.Produce(ctx, n)
	if err != nil {
		return Artifact{}, &ConstructionError{Node: n.id, Err: err}
	}

	n.output = out
	n.built = true
	return out, nil
}
