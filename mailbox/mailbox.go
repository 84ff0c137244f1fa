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

// Package mailbox provides the per-actor queues all messages must pass
// through. Two implementations exist: an unbounded FIFO mailbox and a bounded
// mailbox with a configurable backpressure policy when full.
package mailbox

import "github.com/hivekit/hive/message"

// Mailbox is the contract every mailbox implementation must honor.
//
// Concurrency model: multi-producer, single-consumer. Many goroutines may
// call Enqueue concurrently; exactly one goroutine consumes via Dequeue.
// FIFO ordering is guaranteed within a single mailbox.
type Mailbox interface {
	// Enqueue places the given envelope in the mailbox. Implementations may
	// block to apply backpressure. It returns errors.ErrMailboxClosed once
	// the mailbox has been disposed.
	Enqueue(env *message.Envelope) error
	// Dequeue blocks until an envelope is available or the mailbox is
	// disposed and empty, in which case ok is false.
	Dequeue() (env *message.Envelope, ok bool)
	// TryDequeue removes and returns the envelope at the head of the mailbox
	// without blocking. ok is false when the mailbox is empty.
	TryDequeue() (env *message.Envelope, ok bool)
	// Dispose closes the mailbox to producers: pending and subsequent sends
	// fail with errors.ErrMailboxClosed. Envelopes already accepted remain
	// dequeueable so the consumer can drain them.
	Dispose()
	// IsClosed reports whether the mailbox has been disposed.
	IsClosed() bool
	// Len returns the number of envelopes currently queued.
	Len() int64
	// IsEmpty reports whether the mailbox currently has no envelopes.
	IsEmpty() bool
	// Metrics returns the mailbox delivery counters.
	Metrics() *Metrics
}
