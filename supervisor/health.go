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
	"time"

	"github.com/google/uuid"
	"github.com/reugn/go-quartz/job"
	quartzlogger "github.com/reugn/go-quartz/logger"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/atomic"

	"github.com/hivekit/hive/log"
)

const (
	// DefaultCheckInterval is the probe period when unset.
	DefaultCheckInterval = 30 * time.Second
	// DefaultCheckTimeout bounds each individual probe when unset.
	DefaultCheckTimeout = 5 * time.Second
	// DefaultFailureThreshold is the number of consecutive unhealthy probes
	// that triggers the failure path when unset.
	DefaultFailureThreshold = 3
)

// HealthMonitor probes a node's running children on a fixed interval. A
// child that reports Unhealthy for a configured number of consecutive probes
// is injected into the node's failure path, so restart strategy and backoff
// apply uniformly whether a failure was detected by crash or by probe.
type HealthMonitor struct {
	node      *Node
	interval  time.Duration
	timeout   time.Duration
	threshold int
	logger    log.Logger

	scheduler quartz.Scheduler
	started   *atomic.Bool

	mu       sync.Mutex
	failures map[ChildID]int
}

// HealthMonitorOption configures a HealthMonitor.
type HealthMonitorOption func(*HealthMonitor)

// WithCheckInterval sets the probe period.
func WithCheckInterval(interval time.Duration) HealthMonitorOption {
	return func(m *HealthMonitor) {
		m.interval = interval
	}
}

// WithCheckTimeout bounds each individual probe.
func WithCheckTimeout(timeout time.Duration) HealthMonitorOption {
	return func(m *HealthMonitor) {
		m.timeout = timeout
	}
}

// WithFailureThreshold sets the number of consecutive unhealthy probes that
// triggers the failure path.
func WithFailureThreshold(threshold int) HealthMonitorOption {
	return func(m *HealthMonitor) {
		m.threshold = threshold
	}
}

// WithHealthLogger sets the monitor logger.
func WithHealthLogger(logger log.Logger) HealthMonitorOption {
	return func(m *HealthMonitor) {
		m.logger = logger
	}
}

// NewHealthMonitor creates a health monitor for the given node. It does not
// probe until Start is called.
func NewHealthMonitor(node *Node, opts ...HealthMonitorOption) *HealthMonitor {
	scheduler, _ := quartz.NewStdScheduler(
		quartz.WithLogger(quartzlogger.NewSimpleLogger(nil, quartzlogger.LevelOff)))
	m := &HealthMonitor{
		node:      node,
		interval:  DefaultCheckInterval,
		timeout:   DefaultCheckTimeout,
		threshold: DefaultFailureThreshold,
		logger:    log.DefaultLogger,
		scheduler: scheduler,
		started:   atomic.NewBool(false),
		failures:  make(map[ChildID]int),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins periodic probing.
func (m *HealthMonitor) Start(ctx context.Context) error {
	if !m.started.CompareAndSwap(false, true) {
		return nil
	}
	m.scheduler.Start(ctx)

	probe := job.NewFunctionJob[bool](func(ctx context.Context) (bool, error) {
		m.checkOnce(ctx)
		return true, nil
	})
	key := fmt.Sprintf("health-%s-%s", m.node.ID(), uuid.NewString())
	detail := quartz.NewJobDetail(probe, quartz.NewJobKey(key))
	return m.scheduler.ScheduleJob(detail, quartz.NewSimpleTrigger(m.interval))
}

// Stop halts probing. Idempotent.
func (m *HealthMonitor) Stop(ctx context.Context) {
	if !m.started.CompareAndSwap(true, false) {
		return
	}
	_ = m.scheduler.Clear()
	m.scheduler.Stop()
	m.scheduler.Wait(ctx)
}

// Started reports whether the monitor is probing.
func (m *HealthMonitor) Started() bool {
	return m.started.Load()
}

// ConsecutiveFailures returns the current failure streak of a child.
func (m *HealthMonitor) ConsecutiveFailures(id ChildID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures[id]
}

// checkOnce probes every running child once. Healthy resets the streak,
// Degraded is logged without touching it, Unhealthy extends it. Reaching the
// threshold clears the streak and hands the child to the node's failure path.
func (m *HealthMonitor) checkOnce(ctx context.Context) {
	if !m.node.Running() {
		return
	}
	for _, status := range m.node.HealthSnapshot() {
		if status.State != StateRunning {
			continue
		}

		cctx, cancel := context.WithTimeout(ctx, m.timeout)
		health, err := m.node.CheckHealth(cctx, status.ID)
		cancel()
		if err != nil {
			// raced with removal
			m.forget(status.ID)
			continue
		}

		switch health.Status() {
		case StatusHealthy:
			m.forget(status.ID)
		case StatusDegraded:
			m.logger.Warnf("child=%s name=%s degraded: %s", status.ID, status.Name, health.Reason())
		case StatusUnhealthy:
			streak := m.extend(status.ID)
			m.logger.Warnf("child=%s name=%s unhealthy (%d/%d): %s",
				status.ID, status.Name, streak, m.threshold, health.Reason())
			if streak < m.threshold {
				continue
			}
			m.forget(status.ID)
			cause := fmt.Errorf("health check failed: %s", health.Reason())
			if err := m.node.HandleChildFailure(ctx, status.ID, cause); err != nil {
				m.logger.Errorf("restart after failed health checks child=%s: %v", status.ID, err)
			}
		}
	}
}

func (m *HealthMonitor) extend(id ChildID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[id]++
	return m.failures[id]
}

func (m *HealthMonitor) forget(id ChildID) {
	m.mu.Lock()
	delete(m.failures, id)
	m.mu.Unlock()
}
