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
	"github.com/hivekit/hive/errors"
	"github.com/hivekit/hive/internal/queue"
	"github.com/hivekit/hive/message"
)

// Unbounded is the default mailbox: an unbounded FIFO queue backed by a
// growable ring buffer. Enqueue never blocks. Use it for actors whose
// producers must not be slowed down and whose backlog is naturally bounded
// by the workload.
type Unbounded struct {
	underlying *queue.Queue[*message.Envelope]
	metrics    *Metrics
}

// enforce compilation error
var _ Mailbox = (*Unbounded)(nil)

// NewUnbounded creates an unbounded mailbox.
func NewUnbounded() *Unbounded {
	return &Unbounded{
		underlying: queue.New[*message.Envelope](),
		metrics:    NewMetrics(),
	}
}

// Enqueue places the envelope in the mailbox. It never blocks and only fails
// when the mailbox has been disposed.
func (m *Unbounded) Enqueue(env *message.Envelope) error {
	if !m.underlying.Push(env) {
		m.metrics.recordRejection()
		return errors.ErrMailboxClosed
	}
	m.metrics.recordEnqueue(int64(m.underlying.Len()))
	return nil
}

// Dequeue blocks until an envelope is available or the mailbox is disposed
// and empty.
func (m *Unbounded) Dequeue() (*message.Envelope, bool) {
	env, ok := m.underlying.Wait()
	if ok {
		m.metrics.recordDequeue()
	}
	return env, ok
}

// TryDequeue removes the envelope at the head of the mailbox without
// blocking.
func (m *Unbounded) TryDequeue() (*message.Envelope, bool) {
	env, ok := m.underlying.Pop()
	if ok {
		m.metrics.recordDequeue()
	}
	return env, ok
}

// Dispose closes the mailbox to producers. Envelopes already accepted stay
// dequeueable so the consumer can drain them before its loop exits.
func (m *Unbounded) Dispose() {
	m.underlying.Close()
}

// IsClosed reports whether the mailbox has been disposed.
func (m *Unbounded) IsClosed() bool {
	return m.underlying.IsClosed()
}

// Len returns the number of envelopes currently queued.
func (m *Unbounded) Len() int64 {
	return int64(m.underlying.Len())
}

// IsEmpty reports whether the mailbox currently has no envelopes.
func (m *Unbounded) IsEmpty() bool {
	return m.underlying.IsEmpty()
}

// Metrics returns the mailbox delivery counters.
func (m *Unbounded) Metrics() *Metrics {
	return m.metrics
}
