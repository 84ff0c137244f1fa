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

package monitor

import "sync"

// defaultCapacity bounds the in-memory history when none is configured.
const defaultCapacity = 1000

// InMemory retains the most recent events in a capped ring. Useful for tests
// and for introspecting a live system.
type InMemory struct {
	mu       sync.RWMutex
	events   []*Event
	capacity int
	total    uint64
}

// enforce compilation error
var _ Monitor = (*InMemory)(nil)

// NewInMemory creates an in-memory sink retaining at most capacity events.
// A non-positive capacity falls back to the default of 1000.
func NewInMemory(capacity int) *InMemory {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &InMemory{
		events:   make([]*Event, 0, capacity),
		capacity: capacity,
	}
}

// Record appends the event, evicting the oldest entry once the ring is full.
func (m *InMemory) Record(event *Event) {
	m.mu.Lock()
	if len(m.events) == m.capacity {
		copy(m.events, m.events[1:])
		m.events[len(m.events)-1] = event
	} else {
		m.events = append(m.events, event)
	}
	m.total++
	m.mu.Unlock()
}

// Events returns a snapshot of the retained events, oldest first.
func (m *InMemory) Events() []*Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Event, len(m.events))
	copy(out, m.events)
	return out
}

// EventsOfKind returns the retained events matching the given kind.
func (m *InMemory) EventsOfKind(kind EventKind) []*Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Event
	for _, event := range m.events {
		if event.Kind == kind {
			out = append(out, event)
		}
	}
	return out
}

// Total returns the number of events recorded over the sink's lifetime,
// including evicted ones.
func (m *InMemory) Total() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.total
}

// Reset discards the retained events.
func (m *InMemory) Reset() {
	m.mu.Lock()
	m.events = m.events[:0]
	m.mu.Unlock()
}
