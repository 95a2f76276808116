package blueprint

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/vk/gymgridgo/internal/component"
	"github.com/vk/gymgridgo/internal/ctxlog"
)

// Execution states of one node during BuildAll.
const (
	statePending int32 = iota
	stateRunning
	stateDone
	stateFailed
)

// errSkipped marks nodes that never ran because an upstream node failed.
// Skip errors are symptoms, not causes, and are excluded from root-cause
// selection.
var errSkipped = errors.New("skipped due to upstream failure")

// execNode carries the per-run bookkeeping for one catalog node.
type execNode struct {
	id         string
	depCount   atomic.Int32
	state      atomic.Int32
	err        error
	skipOnce   sync.Once
	dependents []*execNode
}

// BuildAll constructs every registered component in dependency order and
// returns the mapping from identifier to artifact. Configuration errors
// (unknown references, cycles) abort the build before any producer runs;
// the first producer failure cancels everything still pending.
func (c *Catalog) BuildAll(ctx context.Context) (map[string]component.Artifact, error) {
	logger := ctxlog.FromContext(ctx)

	g, err := c.topology()
	if err != nil {
		return nil, err
	}
	if err := g.DetectCycles(); err != nil {
		return nil, &ConfigError{Detail: err.Error()}
	}
	// Kahn pass double-checks that every node is reachable by making
	// progress; it also produces the deterministic order used for
	// root-cause reporting.
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, &ConfigError{Detail: err.Error()}
	}
	logger.Debug("Blueprint topology validated.", "components", len(order), "workers", c.workers)

	if len(order) == 0 {
		return map[string]component.Artifact{}, nil
	}

	execNodes := make(map[string]*execNode, len(order))
	for _, id := range order {
		execNodes[id] = &execNode{id: id}
	}
	for _, id := range order {
		deps, err := g.Dependencies(id)
		if err != nil {
			return nil, err
		}
		execNodes[id].depCount.Store(int32(len(deps)))
		dependents, err := g.Dependents(id)
		if err != nil {
			return nil, err
		}
		for _, depID := range dependents {
			execNodes[id].dependents = append(execNodes[id].dependents, execNodes[depID])
		}
	}

	readyChan := make(chan *execNode, len(execNodes))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(len(execNodes))

	for _, id := range order {
		if execNodes[id].depCount.Load() == 0 {
			readyChan <- execNodes[id]
		}
	}

	for i := 0; i < c.workers; i++ {
		go c.worker(runCtx, readyChan, cancel, &wg)
	}

	wg.Wait()
	close(readyChan)

	var failed []string
	var rootCause error
	var anyFailed bool
	for _, id := range order {
		n := execNodes[id]
		if n.state.Load() != stateFailed {
			continue
		}
		anyFailed = true
		logger.Error("Component construction failed.", "component", n.id, "error", n.err)
		if n.err != nil && !errors.Is(n.err, errSkipped) && !errors.Is(n.err, context.Canceled) {
			failed = append(failed, n.id)
			if rootCause == nil {
				rootCause = n.err
			}
		}
	}
	if rootCause != nil {
		return nil, fmt.Errorf("construction failed for %s: %w", strings.Join(failed, ", "), rootCause)
	}
	if anyFailed {
		// Every failure was a skip or a cancellation, so the build was
		// aborted from outside; report the context error rather than
		// constructing the surviving nodes without their requirements.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("construction aborted before all components were built")
	}

	results := make(map[string]component.Artifact, len(order))
	for _, id := range order {
		node, _ := c.Node(id)
		artifact, err := node.Construct(ctx) // memoized
		if err != nil {
			return nil, err
		}
		results[id] = artifact
	}
	return results, nil
}

// worker is the processing loop for one concurrent construction worker.
func (c *Catalog) worker(ctx context.Context, readyChan chan *execNode, cancel context.CancelFunc, wg *sync.WaitGroup) {
	logger := ctxlog.FromContext(ctx)

	for n := range readyChan {
		if ctx.Err() != nil {
			n.skipOnce.Do(func() {
				n.state.Store(stateFailed)
				n.err = ctx.Err()
				wg.Done()
			})
			// The node's dependents were never unblocked; skip them too or
			// wg.Wait would block on them forever.
			c.skipDependents(ctx, n, wg)
			continue
		}

		n.state.Store(stateRunning)
		err := c.constructExecNode(ctx, n)
		if err != nil {
			logger.Error("Node construction failed, cancelling build.", "component", n.id, "error", err)
			n.state.Store(stateFailed)
			n.err = err
			cancel()
			c.skipDependents(ctx, n, wg)
			wg.Done()
			continue
		}

		n.state.Store(stateDone)
		for _, dependent := range n.dependents {
			if dependent.depCount.Add(-1) == 0 {
				readyChan <- dependent
			}
		}
		wg.Done()
	}
}

// constructExecNode materializes requirements and runs the producer for one
// ready node. All upstream nodes are already built when this runs.
func (c *Catalog) constructExecNode(ctx context.Context, n *execNode) error {
	node, ok := c.Node(n.id)
	if !ok {
		return &ConfigError{Node: n.id, Detail: "unknown component"}
	}
	if err := c.materializeRequirements(ctx, node); err != nil {
		return err
	}
	_, err := node.Construct(ctx)
	return err
}

// skipDependents recursively marks all downstream nodes as failed so the
// wait group drains after an upstream failure.
func (c *Catalog) skipDependents(ctx context.Context, n *execNode, wg *sync.WaitGroup) {
	logger := ctxlog.FromContext(ctx)
	for _, dependent := range n.dependents {
		dependent.skipOnce.Do(func() {
			logger.Warn("Skipping component due to upstream failure.", "component", dependent.id, "failed_upstream", n.id)
			dependent.state.Store(stateFailed)
			dependent.err = fmt.Errorf("%w of %q", errSkipped, n.id)
			wg.Done()
			c.skipDependents(ctx, dependent, wg)
		})
	}
}
