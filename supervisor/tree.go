// MIT License
//
// Copyright (c) 2024-2026 Hivekit Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package supervisor

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/hivekit/hive/errors"
	"github.com/hivekit/hive/log"
)

// subtree adapts a Node into a Child so a whole supervisor subtree can be
// supervised, and restarted, as a single unit by its parent.
type subtree struct {
	node  *Node
	specs []ChildSpec
	ids   []ChildID
}

// enforce compilation error
var _ Child = (*subtree)(nil)

// AsChild adapts the node into a Child that starts the given specs on Start
// and stops them in reverse order on Stop. The node itself stays alive across
// restarts; only its children cycle.
func (n *Node) AsChild(specs ...ChildSpec) Child {
	return &subtree{node: n, specs: specs}
}

func (s *subtree) Start(ctx context.Context) error {
	s.ids = s.ids[:0]
	for _, spec := range s.specs {
		id, err := s.node.StartChild(ctx, spec)
		if err != nil {
			return err
		}
		s.ids = append(s.ids, id)
	}
	return nil
}

func (s *subtree) Stop(ctx context.Context) error {
	var errs error
	for i := len(s.ids) - 1; i >= 0; i-- {
		if err := s.node.StopChild(ctx, s.ids[i]); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	s.ids = nil
	return errs
}

// HealthCheck reports the subtree unhealthy as soon as any child is failed
// or parked.
func (s *subtree) HealthCheck(ctx context.Context) Health {
	for _, status := range s.node.HealthSnapshot() {
		if status.State == StateFailed || status.State == StatePermanentlyFailed {
			return Unhealthy(fmt.Sprintf("child %q is %s", status.Name, status.State))
		}
	}
	return Healthy()
}

// Tree arranges supervisor nodes hierarchically for fault isolation. A child
// node is registered in its parent as a single supervised unit; when the
// child node exhausts a restart budget, the exhaustion escalates to the
// parent, which applies its own strategy to the subtree as a whole.
type Tree struct {
	logger log.Logger

	mu      sync.RWMutex
	nodes   map[string]*Node
	parents map[string]string
	binding map[string]ChildID
	roots   []string
}

// TreeOption configures a Tree.
type TreeOption func(*Tree)

// WithTreeLogger sets the tree logger.
func WithTreeLogger(logger log.Logger) TreeOption {
	return func(t *Tree) {
		t.logger = logger
	}
}

// NewTree creates an empty supervisor tree.
func NewTree(opts ...TreeOption) *Tree {
	t := &Tree{
		logger:  log.DefaultLogger,
		nodes:   make(map[string]*Node),
		parents: make(map[string]string),
		binding: make(map[string]ChildID),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// AddRoot registers a top-level supervisor node.
func (t *Tree) AddRoot(node *Node) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.nodes[node.ID()]; exists {
		return fmt.Errorf("%w: supervisor %q", errors.ErrChildAlreadyExists, node.ID())
	}
	t.nodes[node.ID()] = node
	t.roots = append(t.roots, node.ID())
	return nil
}

// SpawnChild attaches node under the named parent and starts the given child
// specs inside it. Restart-limit exhaustion within the subtree escalates to
// the parent asynchronously, which then applies its own strategy to the
// subtree as a unit.
func (t *Tree) SpawnChild(ctx context.Context, parentID string, node *Node, specs ...ChildSpec) (ChildID, error) {
	t.mu.Lock()
	parent, ok := t.nodes[parentID]
	if !ok {
		t.mu.Unlock()
		return "", fmt.Errorf("%w: supervisor %q", errors.ErrChildNotFound, parentID)
	}
	if _, exists := t.nodes[node.ID()]; exists {
		t.mu.Unlock()
		return "", fmt.Errorf("%w: supervisor %q", errors.ErrChildAlreadyExists, node.ID())
	}
	t.mu.Unlock()

	childID, err := parent.StartChild(ctx, ChildSpec{
		Name: node.ID(),
		Factory: func() Child {
			return node.AsChild(specs...)
		},
		Restart:  RestartPermanent,
		Shutdown: UnboundedShutdown(),
	})
	if err != nil {
		return "", err
	}

	// escalation runs detached: the failing node still holds its own lock
	// when the callback fires, and the parent will call back down into the
	// subtree to stop it.
	node.setEscalation(func(cause error) {
		go t.escalateFrom(parentID, node.ID(), childID, cause)
	})

	t.mu.Lock()
	t.nodes[node.ID()] = node
	t.parents[node.ID()] = parentID
	t.binding[node.ID()] = childID
	t.mu.Unlock()

	return childID, nil
}

// Node returns a registered supervisor node by id.
func (t *Tree) Node(id string) (*Node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	node, ok := t.nodes[id]
	return node, ok
}

// Parent returns the parent node of the given node id, if any.
func (t *Tree) Parent(id string) (*Node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	parentID, ok := t.parents[id]
	if !ok {
		return nil, false
	}
	parent, ok := t.nodes[parentID]
	return parent, ok
}

// Roots returns the top-level nodes in registration order.
func (t *Tree) Roots() []*Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Node, 0, len(t.roots))
	for _, id := range t.roots {
		out = append(out, t.nodes[id])
	}
	return out
}

// Shutdown stops the roots in reverse registration order. Stopping a root
// cascades down through the subtree adapters; remaining nodes are then shut
// down idempotently.
func (t *Tree) Shutdown(ctx context.Context) error {
	t.mu.RLock()
	roots := make([]*Node, 0, len(t.roots))
	for _, id := range t.roots {
		roots = append(roots, t.nodes[id])
	}
	nodes := make([]*Node, 0, len(t.nodes))
	for _, node := range t.nodes {
		nodes = append(nodes, node)
	}
	t.mu.RUnlock()

	var errs error
	for i := len(roots) - 1; i >= 0; i-- {
		if err := roots[i].Shutdown(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	for _, node := range nodes {
		if err := node.Shutdown(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (t *Tree) escalateFrom(parentID, nodeID string, childID ChildID, cause error) {
	t.mu.RLock()
	parent, ok := t.nodes[parentID]
	t.mu.RUnlock()
	if !ok {
		return
	}
	t.logger.Warnf("escalating failure of supervisor=%s to parent=%s: %v", nodeID, parentID, cause)
	if err := parent.HandleChildFailure(context.Background(), childID, cause); err != nil {
		t.logger.Errorf("escalation handling for supervisor=%s failed: %v", nodeID, err)
	}
}
