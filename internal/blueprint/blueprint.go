package blueprint

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vk/gymgridgo/internal/component"
	"github.com/vk/gymgridgo/internal/dag"
)

// ConfigError reports invalid graph wiring: a duplicate identifier, a
// reference to an unknown component, or cyclic dependencies. It is always
// raised before any producer runs.
type ConfigError struct {
	Node   string
	Detail string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("graph configuration error at component %q: %s", e.Node, e.Detail)
	}
	return fmt.Sprintf("graph configuration error: %s", e.Detail)
}

// edge is a named requirement recorded by identifier only; the upstream
// artifact is looked up in the arena when construction reaches the owner.
type edge struct {
	requirement  string
	upstream     string
	subscription component.Subscription
}

// Catalog owns all nodes of one construction graph. Nodes reference each
// other only through the catalog's wiring, never by holding other nodes.
type Catalog struct {
	workers int

	mu    sync.RWMutex
	nodes map[string]*component.Node
	edges map[string][]edge
}

// New creates an empty catalog. The worker count bounds how many producers
// may run concurrently during BuildAll; values below one mean serial
// construction.
func New(workers int) *Catalog {
	if workers < 1 {
		workers = 1
	}
	return &Catalog{
		workers: workers,
		nodes:   make(map[string]*component.Node),
		edges:   make(map[string][]edge),
	}
}

// RegisterNode adds a named node to the catalog. Identifiers are unique
// within a graph; a duplicate is a configuration error.
func (c *Catalog) RegisterNode(id string, producer component.Producer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.nodes[id]; exists {
		return &ConfigError{Node: id, Detail: "duplicate component identifier"}
	}
	c.nodes[id] = component.NewNode(id, producer)
	return nil
}

// Wire declares that the node's named requirement is fed by the upstream
// node's output, optionally narrowed by a subscription. The owning node must
// already be registered; the upstream reference is validated when the
// topology is assembled, so wiring order is free.
func (c *Catalog) Wire(nodeID, requirement, upstreamID string, subscription component.Subscription) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.nodes[nodeID]; !ok {
		return &ConfigError{Node: nodeID, Detail: fmt.Sprintf("cannot wire requirement %q: component not registered", requirement)}
	}
	for _, e := range c.edges[nodeID] {
		if e.requirement == requirement {
			return &ConfigError{Node: nodeID, Detail: fmt.Sprintf("requirement %q wired twice", requirement)}
		}
	}
	c.edges[nodeID] = append(c.edges[nodeID], edge{
		requirement:  requirement,
		upstream:     upstreamID,
		subscription: subscription,
	})
	return nil
}

// Node returns the registered node with the given identifier.
func (c *Catalog) Node(id string) (*component.Node, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.nodes[id]
	return n, ok
}

// IDs returns all registered identifiers, sorted.
func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.nodes))
	for id := range c.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// topology materializes the recorded wiring into a dag.Graph, failing on
// references to unregistered components.
func (c *Catalog) topology() (*dag.Graph, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	g := dag.New()
	for id := range c.nodes {
		g.AddNode(id)
	}
	for id, edges := range c.edges {
		for _, e := range edges {
			if _, ok := c.nodes[e.upstream]; !ok {
				return nil, &ConfigError{
					Node:   id,
					Detail: fmt.Sprintf("requirement %q references unknown component %q", e.requirement, e.upstream),
				}
			}
			if err := g.AddEdge(e.upstream, id); err != nil {
				return nil, &ConfigError{Node: id, Detail: err.Error()}
			}
		}
	}
	return g, nil
}

// nodeEdges returns a copy of the recorded edges for one node.
func (c *Catalog) nodeEdges(id string) []edge {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]edge(nil), c.edges[id]...)
}

// materializeRequirements copies each upstream node's memoized output into
// the node's requirement set. Upstream Construct calls are idempotent, so
// an already built upstream is a cheap cache read.
func (c *Catalog) materializeRequirements(ctx context.Context, node *component.Node) error {
	for _, e := range c.nodeEdges(node.ID()) {
		upstream, ok := c.Node(e.upstream)
		if !ok {
			return &ConfigError{
				Node:   node.ID(),
				Detail: fmt.Sprintf("requirement %q references unknown component %q", e.requirement, e.upstream),
			}
		}
		artifact, err := upstream.Construct(ctx)
		if err != nil {
			return err
		}
		node.SetRequirement(e.requirement, component.NewRequirement(artifact, e.subscription))
	}
	return nil
}

// Construct builds a single component on demand, recursively forcing its
// upstream components first. Cyclic wiring is detected by the recursion
// stack and reported as a configuration error.
func (c *Catalog) Construct(ctx context.Context, id string) (component.Artifact, error) {
	return c.construct(ctx, id, make(map[string]bool))
}

func (c *Catalog) construct(ctx context.Context, id string, stack map[string]bool) (component.Artifact, error) {
	node, ok := c.Node(id)
	if !ok {
		return component.Artifact{}, &ConfigError{Node: id, Detail: "unknown component"}
	}
	if node.Built() {
		return node.Construct(ctx)
	}
	if stack[id] {
		return component.Artifact{}, &ConfigError{Node: id, Detail: "cyclic requirement wiring"}
	}
	stack[id] = true
	defer delete(stack, id)

	for _, e := range c.nodeEdges(id) {
		artifact, err := c.construct(ctx, e.upstream, stack)
		if err != nil {
			return component.Artifact{}, err
		}
		node.SetRequirement(e.requirement, component.NewRequirement(artifact, e.subscription))
	}
	return node.Construct(ctx)
}
