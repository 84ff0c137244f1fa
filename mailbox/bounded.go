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

package mailbox

import (
	"sync"
	"time"

	gods "github.com/Workiva/go-datastructures/queue"
	"go.uber.org/atomic"

	"github.com/hivekit/hive/errors"
	"github.com/hivekit/hive/message"
)

// Bounded is a bounded MPSC mailbox backed by a ring buffer. What happens to
// a send once the mailbox is full is governed by the Backpressure policy:
// blocking the producer, rejecting the envelope, or dropping it. The default
// BackpressureAuto picks per envelope by priority.
type Bounded struct {
	underlying *gods.RingBuffer
	metrics    *Metrics
	policy     Backpressure

	closed *atomic.Bool
	// leftover holds envelopes recovered from the ring at disposal time so
	// the consumer can still drain them.
	mu       sync.Mutex
	leftover []*message.Envelope
}

// enforce compilation error
var _ Mailbox = (*Bounded)(nil)

// BoundedOption configures a bounded mailbox.
type BoundedOption func(*Bounded)

// WithBackpressure fixes the full-mailbox policy instead of deriving it from
// each envelope's priority.
func WithBackpressure(policy Backpressure) BoundedOption {
	return func(m *Bounded) {
		m.policy = policy
	}
}

// NewBounded creates a bounded mailbox with the given capacity.
// Capacity must be a positive integer.
func NewBounded(capacity int, opts ...BoundedOption) *Bounded {
	m := &Bounded{
		underlying: gods.NewRingBuffer(uint64(capacity)),
		metrics:    NewMetrics(),
		policy:     BackpressureAuto,
		closed:     atomic.NewBool(false),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Enqueue inserts an envelope into the mailbox. When the mailbox is at
// capacity the backpressure policy applies: Block waits for space, Error
// returns errors.ErrMailboxFull, Drop discards the envelope and returns nil.
// It returns errors.ErrMailboxClosed once the mailbox has been disposed.
func (m *Bounded) Enqueue(env *message.Envelope) error {
	if m.closed.Load() {
		m.metrics.recordRejection()
		return errors.ErrMailboxClosed
	}

	policy := m.policy
	if policy == BackpressureAuto {
		policy = forPriority(env.Priority())
	}

	switch policy {
	case BackpressureError, BackpressureDrop:
		queued, err := m.underlying.Offer(env)
		if err != nil {
			m.metrics.recordRejection()
			return errors.ErrMailboxClosed
		}
		if !queued {
			if policy == BackpressureDrop {
				m.metrics.recordDrop()
				return nil
			}
			m.metrics.recordRejection()
			return errors.ErrMailboxFull
		}
	default:
		if err := m.underlying.Put(env); err != nil {
			m.metrics.recordRejection()
			return errors.ErrMailboxClosed
		}
	}
	m.metrics.recordEnqueue(int64(m.underlying.Len()))
	return nil
}

// Dequeue blocks until an envelope is available or the mailbox is disposed
// and empty.
func (m *Bounded) Dequeue() (*message.Envelope, bool) {
	item, err := m.underlying.Get()
	if err != nil {
		return m.takeLeftover()
	}
	env, ok := item.(*message.Envelope)
	if !ok {
		return nil, false
	}
	m.metrics.recordDequeue()
	return env, true
}

// TryDequeue removes the envelope at the head of the mailbox without
// blocking.
func (m *Bounded) TryDequeue() (*message.Envelope, bool) {
	if m.underlying.Len() == 0 {
		return m.takeLeftover()
	}
	return m.Dequeue()
}

func (m *Bounded) takeLeftover() (*message.Envelope, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.leftover) == 0 {
		return nil, false
	}
	env := m.leftover[0]
	m.leftover = m.leftover[1:]
	m.metrics.recordDequeue()
	return env, true
}

// Dispose closes the mailbox to producers. Envelopes already accepted are
// recovered from the ring before it is torn down and stay dequeueable, so
// the consumer can drain them before its loop exits. Blocked producers are
// released with errors.ErrMailboxClosed.
func (m *Bounded) Dispose() {
	if !m.closed.CompareAndSwap(false, true) {
		return
	}
	// The consumer may race this loop for the same items; either way each
	// envelope surfaces exactly once.
	var kept []*message.Envelope
	for m.underlying.Len() > 0 {
		item, err := m.underlying.Poll(time.Millisecond)
		if err != nil {
			break
		}
		if env, ok := item.(*message.Envelope); ok {
			kept = append(kept, env)
		}
	}
	m.mu.Lock()
	m.leftover = append(m.leftover, kept...)
	m.mu.Unlock()
	m.underlying.Dispose()
}

// IsClosed reports whether the mailbox has been disposed.
func (m *Bounded) IsClosed() bool {
	return m.closed.Load()
}

// Len returns the number of envelopes currently queued.
func (m *Bounded) Len() int64 {
	m.mu.Lock()
	pending := int64(len(m.leftover))
	m.mu.Unlock()
	return int64(m.underlying.Len()) + pending
}

// IsEmpty reports whether the mailbox currently has no envelopes.
func (m *Bounded) IsEmpty() bool {
	return m.Len() == 0
}

// Metrics returns the mailbox delivery counters.
func (m *Bounded) Metrics() *Metrics {
	return m.metrics
}
