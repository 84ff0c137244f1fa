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

// Package monitor defines the event-recording contract supervision reports
// through, together with the built-in sinks: a zero-overhead no-op, a capped
// in-memory ring and a logging sink.
package monitor

import "time"

// EventKind enumerates the supervision events.
type EventKind int

const (
	// ChildStarted is emitted when a child reaches Running.
	ChildStarted EventKind = iota
	// ChildStopped is emitted when a child stops deliberately.
	ChildStopped
	// ChildFailed is emitted when a child crashes or fails a health check.
	ChildFailed
	// ChildRestarted is emitted when a child is successfully restarted.
	ChildRestarted
	// RestartLimitExceeded is emitted when a child exhausts its restart
	// budget and is parked as permanently failed.
	RestartLimitExceeded
	// StrategyApplied is emitted when a supervision strategy computes the
	// restart set for a failure.
	StrategyApplied
	// NodeShutdown is emitted when a supervisor node finishes shutting down.
	NodeShutdown
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case ChildStarted:
		return "ChildStarted"
	case ChildStopped:
		return "ChildStopped"
	case ChildFailed:
		return "ChildFailed"
	case ChildRestarted:
		return "ChildRestarted"
	case RestartLimitExceeded:
		return "RestartLimitExceeded"
	case StrategyApplied:
		return "StrategyApplied"
	case NodeShutdown:
		return "NodeShutdown"
	default:
		return ""
	}
}

// Event is one write-once supervision record. Supervisor nodes append events;
// sinks consume them.
type Event struct {
	// Timestamp is when the event occurred.
	Timestamp time.Time
	// SupervisorID identifies the emitting supervisor node.
	SupervisorID string
	// ChildID identifies the affected child, empty for node-level events.
	ChildID string
	// Kind is the event kind.
	Kind EventKind
	// Metadata carries free-form context such as error text or restart counts.
	Metadata map[string]string
}
