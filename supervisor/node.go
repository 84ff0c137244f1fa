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

// Package supervisor implements the supervision engine: child lifecycle
// management, restart strategies, sliding-window backoff, supervisor trees
// and periodic health monitoring.
package supervisor

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/hivekit/hive/errors"
	"github.com/hivekit/hive/log"
	"github.com/hivekit/hive/monitor"
)

// node lifecycle states
const (
	nodeRunning int32 = iota
	nodeShuttingDown
	nodeStopped
)

// childHandle pairs a retained spec with the live child instance. The spec
// never changes; the instance is replaced on every restart.
type childHandle struct {
	id      ChildID
	spec    ChildSpec
	child   Child
	state   ChildState
	backoff *Backoff
}

// Node supervises an ordered set of children under a single restart strategy.
//
// The child table is exclusively owned: every supervision operation runs
// under the node's mutex, so strategies and backoff state need no internal
// synchronization. Every error surfaced by the API is also recorded through
// the Monitor sink; the two channels always agree.
type Node struct {
	id       string
	strategy Strategy
	logger   log.Logger
	monitor  monitor.Monitor
	backoff  BackoffConfig
	escalate func(cause error)

	mu       sync.Mutex
	order    []ChildID
	children map[ChildID]*childHandle
	state    *atomic.Int32
}

// NodeOption configures a Node.
type NodeOption func(*Node)

// WithNodeLogger sets the node logger.
func WithNodeLogger(logger log.Logger) NodeOption {
	return func(n *Node) {
		n.logger = logger
	}
}

// WithMonitor sets the supervision event sink.
func WithMonitor(sink monitor.Monitor) NodeOption {
	return func(n *Node) {
		n.monitor = sink
	}
}

// WithBackoff sets the default restart budget for children whose spec does
// not carry its own.
func WithBackoff(config BackoffConfig) NodeOption {
	return func(n *Node) {
		n.backoff = config
	}
}

// WithEscalation registers a callback invoked whenever a child exhausts its
// restart budget. Supervisor trees use it to propagate subtree exhaustion to
// the parent node. Escalation is opt-in; without it the child is parked as
// permanently failed and the node keeps running its other children.
func WithEscalation(fn func(cause error)) NodeOption {
	return func(n *Node) {
		n.escalate = fn
	}
}

// NewNode creates a running supervisor node with the given identity and
// restart strategy.
func NewNode(id string, strategy Strategy, opts ...NodeOption) *Node {
	n := &Node{
		id:       id,
		strategy: strategy,
		logger:   log.DefaultLogger,
		monitor:  &monitor.Noop{},
		backoff:  DefaultBackoffConfig(),
		children: make(map[ChildID]*childHandle),
		state:    atomic.NewInt32(nodeRunning),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// ID returns the node identity used in supervision events.
func (n *Node) ID() string {
	return n.id
}

// Strategy returns the node's restart strategy.
func (n *Node) Strategy() Strategy {
	return n.strategy
}

// Running reports whether the node accepts supervision operations.
func (n *Node) Running() bool {
	return n.state.Load() == nodeRunning
}

// setEscalation rebinds the escalation callback. The tree wires subtree
// escalation after the node is attached to its parent.
func (n *Node) setEscalation(fn func(cause error)) {
	n.mu.Lock()
	n.escalate = fn
	n.mu.Unlock()
}

// StartChild constructs a child from the spec and transitions it through
// Starting to Running within the spec's start timeout. The spec is retained
// and reused verbatim on every later restart.
func (n *Node) StartChild(ctx context.Context, spec ChildSpec) (ChildID, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	// Checked under the lock: a concurrent Shutdown flips the state before
	// taking the mutex, and a child inserted after it finishes would leak.
	if !n.Running() {
		return "", errors.ErrSupervisorStopped
	}

	for _, h := range n.children {
		if h.spec.Name == spec.Name && h.state != StateStopped {
			return "", fmt.Errorf("%w: %q", errors.ErrChildAlreadyExists, spec.Name)
		}
	}

	backoffConfig := n.backoff
	if spec.Backoff != nil {
		backoffConfig = *spec.Backoff
	}

	handle := &childHandle{
		id:      NewChildID(),
		spec:    spec,
		backoff: NewBackoff(backoffConfig),
	}

	if err := n.startLocked(ctx, handle); err != nil {
		n.emit(monitor.ChildFailed, handle.id, map[string]string{
			"name":  spec.Name,
			"error": err.Error(),
		})
		return "", err
	}

	n.children[handle.id] = handle
	n.order = append(n.order, handle.id)
	n.emit(monitor.ChildStarted, handle.id, map[string]string{"name": spec.Name})
	return handle.id, nil
}

// StopChild tears one child down respecting its shutdown policy and removes
// it from the node. Stop failures and shutdown timeouts are surfaced and
// recorded; the child is removed in every outcome.
func (n *Node) StopChild(ctx context.Context, id ChildID) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	handle, ok := n.children[id]
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrChildNotFound, id)
	}

	err := n.stopLocked(ctx, handle)
	n.removeLocked(id)

	meta := map[string]string{"name": handle.spec.Name}
	if err != nil {
		meta["error"] = err.Error()
	}
	n.emit(monitor.ChildStopped, id, meta)
	return err
}

// HandleChildFailure applies the node's strategy to a child failure: it
// computes the restart set, stops the affected survivors in reverse start
// order and restarts them in start order, honoring each child's restart
// policy and backoff budget. Children whose budget is exhausted are parked
// as PermanentlyFailed and reported, without stopping the node.
//
// cause nil means the child terminated normally; transient children are then
// left stopped instead of restarted.
func (n *Node) HandleChildFailure(ctx context.Context, id ChildID, cause error) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.Running() {
		return errors.ErrSupervisorStopped
	}

	failed, ok := n.children[id]
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrChildNotFound, id)
	}

	failed.state = StateFailed
	meta := map[string]string{"name": failed.spec.Name}
	if cause != nil {
		meta["error"] = cause.Error()
	}
	n.emit(monitor.ChildFailed, id, meta)

	targets := n.strategy.RestartTargets(id, n.order)
	n.emit(monitor.StrategyApplied, id, map[string]string{
		"strategy": n.strategy.String(),
		"targets":  strconv.Itoa(len(targets)),
	})

	var errs error

	// everything targeted goes down in reverse start order before anything
	// restarts. The failed child's remains are stopped best-effort so a
	// partially-alive instance (a subtree, a child with leaked resources)
	// cannot collide with its replacement.
	for i := len(targets) - 1; i >= 0; i-- {
		handle := n.children[targets[i]]
		switch {
		case handle.state == StatePermanentlyFailed:
		case handle.id == id:
			_ = n.stopLocked(ctx, handle)
		case handle.state == StateRunning:
			if err := n.stopLocked(ctx, handle); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
	}

	for _, targetID := range targets {
		handle := n.children[targetID]

		if handle.state == StatePermanentlyFailed {
			continue
		}
		if !n.wantsRestart(handle, targetID == id, cause) {
			handle.state = StateStopped
			n.removeLocked(targetID)
			n.emit(monitor.ChildStopped, targetID, map[string]string{"name": handle.spec.Name})
			continue
		}

		if !handle.backoff.ShouldRestart() {
			handle.state = StatePermanentlyFailed
			limitErr := fmt.Errorf("%w: child %q", errors.ErrRestartLimitExceeded, handle.spec.Name)
			errs = multierr.Append(errs, limitErr)
			n.emit(monitor.RestartLimitExceeded, targetID, map[string]string{
				"name":     handle.spec.Name,
				"restarts": strconv.Itoa(handle.backoff.Count()),
			})
			if n.escalate != nil {
				n.escalate(limitErr)
			}
			continue
		}

		handle.state = StateRestarting
		delay := handle.backoff.Record()
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return multierr.Append(errs, ctx.Err())
			}
		}

		if err := n.startLocked(ctx, handle); err != nil {
			errs = multierr.Append(errs, err)
			n.emit(monitor.ChildFailed, targetID, map[string]string{
				"name":  handle.spec.Name,
				"error": err.Error(),
			})
			continue
		}
		n.emit(monitor.ChildRestarted, targetID, map[string]string{
			"name":     handle.spec.Name,
			"restarts": strconv.Itoa(handle.backoff.Count()),
		})
	}

	return errs
}

// Shutdown stops every child in reverse start order, each under its own
// shutdown policy, and aggregates the failures. Idempotent.
func (n *Node) Shutdown(ctx context.Context) error {
	if !n.state.CompareAndSwap(nodeRunning, nodeShuttingDown) {
		return nil
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	var errs error
	for i := len(n.order) - 1; i >= 0; i-- {
		handle := n.children[n.order[i]]
		if handle.state != StateRunning && handle.state != StateStarting {
			continue
		}
		err := n.stopLocked(ctx, handle)
		if err != nil {
			errs = multierr.Append(errs, err)
		}
		meta := map[string]string{"name": handle.spec.Name}
		if err != nil {
			meta["error"] = err.Error()
		}
		n.emit(monitor.ChildStopped, handle.id, meta)
	}

	n.order = nil
	n.children = make(map[ChildID]*childHandle)
	n.state.Store(nodeStopped)

	meta := map[string]string{}
	if errs != nil {
		meta["error"] = errs.Error()
	}
	n.emit(monitor.NodeShutdown, "", meta)
	return errs
}

// HealthSnapshot returns the per-child status in start order.
func (n *Node) HealthSnapshot() []ChildStatus {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]ChildStatus, 0, len(n.order))
	for _, id := range n.order {
		handle := n.children[id]
		out = append(out, ChildStatus{
			ID:       id,
			Name:     handle.spec.Name,
			State:    handle.state,
			Restarts: handle.backoff.Count(),
		})
	}
	return out
}

// Children returns the child ids in start order.
func (n *Node) Children() []ChildID {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]ChildID, len(n.order))
	copy(out, n.order)
	return out
}

// CheckHealth probes one child. Children that are not Running report
// Unhealthy with their state as the reason.
func (n *Node) CheckHealth(ctx context.Context, id ChildID) (Health, error) {
	n.mu.Lock()
	handle, ok := n.children[id]
	if !ok {
		n.mu.Unlock()
		return Health{}, fmt.Errorf("%w: %s", errors.ErrChildNotFound, id)
	}
	child := handle.child
	state := handle.state
	n.mu.Unlock()

	if state != StateRunning {
		return Unhealthy(state.String()), nil
	}
	return child.HealthCheck(ctx), nil
}

// wantsRestart applies the child's restart policy. isFailed marks the child
// that triggered the strategy; siblings are restarted unless temporary.
func (n *Node) wantsRestart(handle *childHandle, isFailed bool, cause error) bool {
	switch handle.spec.Restart {
	case RestartTemporary:
		return false
	case RestartTransient:
		if isFailed {
			return cause != nil
		}
		return true
	default:
		return true
	}
}

// startLocked constructs a fresh instance from the retained spec and runs
// Start under the spec's start timeout. A Start that outlives the timeout
// marks the child Failed even if it returns later.
func (n *Node) startLocked(ctx context.Context, handle *childHandle) error {
	handle.state = StateStarting
	handle.child = handle.spec.Factory()
	if handle.child == nil {
		handle.state = StateFailed
		return fmt.Errorf("%w: factory for %q returned nil", errors.ErrChildStartFailed, handle.spec.Name)
	}

	timeout := handle.spec.startTimeout()
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- handle.child.Start(cctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			handle.state = StateFailed
			return fmt.Errorf("%w: %q: %v", errors.ErrChildStartFailed, handle.spec.Name, err)
		}
		handle.state = StateRunning
		return nil
	case <-cctx.Done():
		handle.state = StateFailed
		return fmt.Errorf("%w: %q did not start within %s", errors.ErrChildStartFailed, handle.spec.Name, timeout)
	}
}

// stopLocked winds one child down under its shutdown policy. Past a graceful
// timeout the child is considered forcefully terminated and the timeout is
// surfaced, never swallowed.
func (n *Node) stopLocked(ctx context.Context, handle *childHandle) error {
	handle.state = StateStopping
	policy := handle.spec.shutdownPolicy()

	var err error
	switch policy.Kind() {
	case ShutdownImmediate:
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		err = handle.child.Stop(canceled)
	case ShutdownUnbounded:
		err = handle.child.Stop(ctx)
	default:
		cctx, cancel := context.WithTimeout(ctx, policy.Timeout())
		done := make(chan error, 1)
		go func() {
			done <- handle.child.Stop(cctx)
		}()
		select {
		case err = <-done:
		case <-cctx.Done():
			err = fmt.Errorf("%w: child %q exceeded %s", errors.ErrShutdownTimeout, handle.spec.Name, policy.Timeout())
		}
		cancel()
	}

	handle.state = StateStopped
	if err != nil && !stderrors.Is(err, errors.ErrShutdownTimeout) {
		return fmt.Errorf("%w: %q: %v", errors.ErrChildStopFailed, handle.spec.Name, err)
	}
	return err
}

// removeLocked drops the child from the table and the start order.
func (n *Node) removeLocked(id ChildID) {
	delete(n.children, id)
	for i, existing := range n.order {
		if existing == id {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
}

// emit records a supervision event. Record never fails the caller.
func (n *Node) emit(kind monitor.EventKind, child ChildID, meta map[string]string) {
	n.monitor.Record(&monitor.Event{
		Timestamp:    time.Now(),
		SupervisorID: n.id,
		ChildID:      child.String(),
		Kind:         kind,
		Metadata:     meta,
	})
}
