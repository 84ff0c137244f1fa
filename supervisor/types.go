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
	"time"

	"github.com/google/uuid"
)

// ChildID uniquely identifies a supervised child within its node. IDs are
// generated, never reused, so a restarted child keeps its identity while a
// re-added child gets a fresh one.
type ChildID string

// NewChildID generates a fresh child identifier.
func NewChildID() ChildID {
	return ChildID(uuid.NewString())
}

// String implements fmt.Stringer.
func (id ChildID) String() string {
	return string(id)
}

// RestartPolicy controls whether a child is restarted after it terminates.
type RestartPolicy int

const (
	// RestartPermanent children are always restarted.
	RestartPermanent RestartPolicy = iota
	// RestartTransient children are restarted only when they terminate
	// abnormally. A deliberate stop leaves them stopped.
	RestartTransient
	// RestartTemporary children are never restarted.
	RestartTemporary
)

// String implements fmt.Stringer.
func (p RestartPolicy) String() string {
	switch p {
	case RestartPermanent:
		return "Permanent"
	case RestartTransient:
		return "Transient"
	case RestartTemporary:
		return "Temporary"
	default:
		return ""
	}
}

// ShutdownKind discriminates the shutdown policy variants.
type ShutdownKind int

const (
	// ShutdownGraceful waits for the child's Stop up to a timeout, then
	// surfaces a shutdown-timeout condition.
	ShutdownGraceful ShutdownKind = iota
	// ShutdownImmediate stops the child with an already-canceled context.
	ShutdownImmediate
	// ShutdownUnbounded waits for Stop without any deadline.
	ShutdownUnbounded
)

// ShutdownPolicy dictates how a supervisor tears a child down.
type ShutdownPolicy struct {
	kind    ShutdownKind
	timeout time.Duration
}

// GracefulShutdown waits up to the given timeout for the child's Stop.
func GracefulShutdown(timeout time.Duration) ShutdownPolicy {
	return ShutdownPolicy{kind: ShutdownGraceful, timeout: timeout}
}

// ImmediateShutdown forces the child down without any grace period.
func ImmediateShutdown() ShutdownPolicy {
	return ShutdownPolicy{kind: ShutdownImmediate}
}

// UnboundedShutdown waits for the child's Stop with no deadline.
func UnboundedShutdown() ShutdownPolicy {
	return ShutdownPolicy{kind: ShutdownUnbounded}
}

// Kind returns the policy variant.
func (p ShutdownPolicy) Kind() ShutdownKind {
	return p.kind
}

// Timeout returns the grace period. Only meaningful for graceful shutdown.
func (p ShutdownPolicy) Timeout() time.Duration {
	return p.timeout
}

// ChildState tracks a child through its lifecycle.
//
// Happy path: Starting -> Running -> Stopping -> Stopped.
// Failure path: Running -> Failed -> Restarting -> Starting, terminating in
// PermanentlyFailed once the restart budget is exhausted.
type ChildState int

const (
	// StateStarting means Start has been invoked and has not returned yet.
	StateStarting ChildState = iota
	// StateRunning means the child started successfully.
	StateRunning
	// StateStopping means Stop has been invoked and has not returned yet.
	StateStopping
	// StateStopped means the child terminated deliberately.
	StateStopped
	// StateRestarting means the child is between a failure and the next
	// start attempt.
	StateRestarting
	// StateFailed means the child crashed or failed to start.
	StateFailed
	// StatePermanentlyFailed means the restart budget is exhausted. The
	// child stays parked and never auto-recovers.
	StatePermanentlyFailed
)

// String implements fmt.Stringer.
func (s ChildState) String() string {
	switch s {
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	case StateRestarting:
		return "Restarting"
	case StateFailed:
		return "Failed"
	case StatePermanentlyFailed:
		return "PermanentlyFailed"
	default:
		return ""
	}
}

// HealthStatus is the verdict of a health probe.
type HealthStatus int

const (
	// StatusHealthy means the child is operating normally.
	StatusHealthy HealthStatus = iota
	// StatusDegraded means the child is impaired but functional. Degraded
	// results are logged and do not count toward the failure threshold.
	StatusDegraded
	// StatusUnhealthy means the child should be treated as failing.
	StatusUnhealthy
)

// String implements fmt.Stringer.
func (s HealthStatus) String() string {
	switch s {
	case StatusHealthy:
		return "Healthy"
	case StatusDegraded:
		return "Degraded"
	case StatusUnhealthy:
		return "Unhealthy"
	default:
		return ""
	}
}

// Health is the result of a child health check.
type Health struct {
	status HealthStatus
	reason string
}

// Healthy reports a passing health check.
func Healthy() Health {
	return Health{status: StatusHealthy}
}

// Degraded reports an impaired but functional child.
func Degraded(reason string) Health {
	return Health{status: StatusDegraded, reason: reason}
}

// Unhealthy reports a failing child.
func Unhealthy(reason string) Health {
	return Health{status: StatusUnhealthy, reason: reason}
}

// Status returns the probe verdict.
func (h Health) Status() HealthStatus {
	return h.status
}

// Reason returns the human-readable explanation for a non-healthy verdict.
func (h Health) Reason() string {
	return h.reason
}

// ChildStatus is one entry of a node's health snapshot.
type ChildStatus struct {
	// ID is the child's identifier.
	ID ChildID
	// Name is the child's spec name.
	Name string
	// State is the child's current lifecycle state.
	State ChildState
	// Restarts is the number of restarts within the current backoff window.
	Restarts int
}
