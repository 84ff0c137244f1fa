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

package bus

import (
	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/hivekit/hive/internal/queue"
	"github.com/hivekit/hive/message"
)

// Subscription is one independent consumer stream of the bus. Envelopes are
// buffered in an unbounded queue so a slow subscriber never blocks the
// publisher or its sibling subscribers.
type Subscription struct {
	id       string
	messages *queue.Queue[*message.Envelope]
	active   atomic.Bool
}

func newSubscription() *Subscription {
	s := &Subscription{
		id:       uuid.NewString(),
		messages: queue.New[*message.Envelope](),
	}
	s.active.Store(true)
	return s
}

// ID returns the unique identifier of the subscription.
func (s *Subscription) ID() string { return s.id }

// Active reports whether the subscription still receives envelopes.
func (s *Subscription) Active() bool { return s.active.Load() }

// Next blocks until an envelope is published or the subscription is closed
// and its buffer drained, in which case ok is false.
func (s *Subscription) Next() (env *message.Envelope, ok bool) {
	return s.messages.Wait()
}

// TryNext returns the next buffered envelope without blocking.
func (s *Subscription) TryNext() (env *message.Envelope, ok bool) {
	return s.messages.Pop()
}

// Len returns the number of envelopes buffered and not yet consumed.
func (s *Subscription) Len() int {
	return s.messages.Len()
}

// Iterator drains the envelopes buffered at the time of invocation and
// returns them through a closed channel. Envelopes delivered concurrently
// with the call are not guaranteed to be included.
func (s *Subscription) Iterator() chan *message.Envelope {
	n := s.messages.Len()
	out := make(chan *message.Envelope, n)
	for i := 0; i < n; i++ {
		env, ok := s.messages.Pop()
		if !ok {
			break
		}
		out <- env
	}
	close(out)
	return out
}

// deliver buffers the envelope for consumption. It reports false when the
// stream is closed so the broker can prune the subscription.
func (s *Subscription) deliver(env *message.Envelope) bool {
	if !s.active.Load() {
		return false
	}
	return s.messages.Push(env)
}

func (s *Subscription) shutdown() {
	if s.active.CompareAndSwap(true, false) {
		s.messages.Close()
	}
}
