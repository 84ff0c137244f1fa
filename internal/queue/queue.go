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

package queue

import "sync"

// minQueueLen is the smallest capacity that queue may have.
// Must be power of 2 for bitwise modulus: x % n == x & (n - 1).
const minQueueLen = 16

// Queue is a thread-safe unbounded queue backed by a growable ring buffer.
// reference: https://blog.dubbelboer.com/2015/04/25/go-faster-queue.html
type Queue[T any] struct {
	mu      sync.RWMutex
	cond    *sync.Cond
	nodes   []*T
	head    int
	tail    int
	count   int
	closed  bool
	initCap int
}

// New creates an instance of Queue.
func New[T any]() *Queue[T] {
	sq := &Queue[T]{
		initCap: minQueueLen,
		nodes:   make([]*T, minQueueLen),
	}
	sq.cond = sync.NewCond(&sq.mu)
	return sq
}

// Push adds an item to the back of the queue.
// It can be safely called from multiple goroutines.
// It returns false if the queue is closed, in which case the item is dropped.
func (q *Queue[T]) Push(i T) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	if q.count == len(q.nodes) {
		q.resize()
	}
	q.nodes[q.tail] = &i
	// bitwise modulus
	q.tail = (q.tail + 1) & (len(q.nodes) - 1)
	q.count++
	q.cond.Signal()
	q.mu.Unlock()
	return true
}

// Close marks the queue closed. Entries already buffered stay consumable
// through Wait and Pop; further Push calls are rejected. Goroutines blocked
// in Wait() return once the buffer is empty.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

// IsClosed returns true if the queue has been closed.
// Only a true return value has a definite meaning; the queue may be closed
// concurrently with a false return.
func (q *Queue[T]) IsClosed() bool {
	q.mu.RLock()
	c := q.closed
	q.mu.RUnlock()
	return c
}

// Wait blocks until an item is available or the queue is closed.
// If there are items on the queue the first is returned immediately,
// closed or not. It returns the zero value and false once the queue is
// closed and empty.
func (q *Queue[T]) Wait() (T, bool) {
	q.mu.Lock()
	for q.count == 0 && !q.closed {
		q.cond.Wait()
	}
	item, ok := q.popLocked()
	q.mu.Unlock()
	return item, ok
}

// Pop removes the item from the front of the queue.
// A false return means the queue was empty or closed.
func (q *Queue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popLocked()
}

func (q *Queue[T]) popLocked() (T, bool) {
	if q.count == 0 {
		var zero T
		return zero, false
	}
	i := q.nodes[q.head]
	q.nodes[q.head] = nil
	// bitwise modulus
	q.head = (q.head + 1) & (len(q.nodes) - 1)
	q.count--
	// Resize down if buffer is one quarter full.
	if len(q.nodes) > minQueueLen && (q.count<<2) == len(q.nodes) {
		q.resize()
	}
	return *i, true
}

// Len returns the current length of the queue.
func (q *Queue[T]) Len() int {
	q.mu.RLock()
	l := q.count
	q.mu.RUnlock()
	return l
}

// IsEmpty returns true when the queue is empty.
func (q *Queue[T]) IsEmpty() bool {
	return q.Len() == 0
}

// resize doubles (or shrinks) the backing slice. Caller must hold mu.
func (q *Queue[T]) resize() {
	nodes := make([]*T, max(q.count<<1, minQueueLen))
	if q.tail > q.head {
		copy(nodes, q.nodes[q.head:q.tail])
	} else {
		n := copy(nodes, q.nodes[q.head:])
		copy(nodes[n:], q.nodes[:q.tail])
	}

	q.tail = q.count
	q.head = 0
	q.nodes = nodes
}
