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

// Package bus implements the in-process publish/subscribe transport. A Broker
// broadcasts every published envelope to all subscriber streams and holds the
// correlation table that pairs requests with their replies. The broker is
// address-agnostic: routing a broadcast envelope to a concrete mailbox is the
// router's job, not the broker's.
package bus

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hivekit/hive/errors"
	"github.com/hivekit/hive/internal/xsync"
	"github.com/hivekit/hive/log"
	"github.com/hivekit/hive/message"
)

// Broker is the process-scoped publish/subscribe transport. It is created
// once at system start, shared by reference, and closed once at shutdown.
type Broker struct {
	subscribers *xsync.Map[string, *Subscription]
	pending     *xsync.Map[uuid.UUID, *pendingRequest]
	logger      log.Logger
	closed      chan struct{}
	closeOnce   sync.Once
}

// Option configures a Broker.
type Option func(*Broker)

// WithLogger sets the broker logger.
func WithLogger(logger log.Logger) Option {
	return func(b *Broker) {
		b.logger = logger
	}
}

// New creates a Broker.
func New(opts ...Option) *Broker {
	b := &Broker{
		subscribers: xsync.NewMap[string, *Subscription](),
		pending:     xsync.NewMap[uuid.UUID, *pendingRequest](),
		logger:      log.DiscardLogger,
		closed:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a new, independent consumer of every envelope
// subsequently published on the bus. Multiple simultaneous subscribers each
// receive their own copy of the stream.
func (b *Broker) Subscribe() *Subscription {
	sub := newSubscription()
	b.subscribers.Set(sub.ID(), sub)
	return sub
}

// Unsubscribe removes the subscription and closes its stream.
func (b *Broker) Unsubscribe(sub *Subscription) {
	b.subscribers.Delete(sub.ID())
	sub.shutdown()
}

// SubscribersCount returns the number of live subscriber streams.
func (b *Broker) SubscribersCount() int {
	return b.subscribers.Len()
}

// Publish delivers the envelope.
//
// An envelope carrying a correlation id and no recipient is a reply: it
// completes the matching pending request and is not broadcast. Late replies,
// whose pending request has already been resolved, are discarded.
//
// Every other envelope must name a recipient and is broadcast to every
// current subscriber stream. A subscriber whose stream has been closed never
// blocks or fails delivery to the others; it is pruned lazily.
func (b *Broker) Publish(env *message.Envelope) error {
	if b.isClosed() {
		return errors.ErrBusClosed
	}

	if env.IsReply() && env.Recipient() == nil {
		b.completeRequest(env)
		return nil
	}

	if env.Recipient() == nil {
		return errors.ErrNoRecipient
	}

	var stale []*Subscription
	b.subscribers.Range(func(_ string, sub *Subscription) {
		if !sub.deliver(env) {
			stale = append(stale, sub)
		}
	})
	for _, sub := range stale {
		b.subscribers.Delete(sub.ID())
	}
	return nil
}

// PublishRequest publishes the envelope as a request and waits for the
// correlated reply. A timed-out request is a normal outcome: it returns
// (nil, nil), never an error. In every outcome the pending entry is removed
// exactly once, so late replies are discarded rather than leaked.
func (b *Broker) PublishRequest(ctx context.Context, env *message.Envelope, timeout time.Duration) (*message.Envelope, error) {
	if timeout <= 0 {
		return nil, errors.ErrInvalidTimeout
	}
	if b.isClosed() {
		return nil, errors.ErrBusClosed
	}

	correlationID := uuid.New()
	env.WithCorrelationID(correlationID)

	pending := newPendingRequest(timeout)
	b.pending.Set(correlationID, pending)

	if err := b.Publish(env); err != nil {
		b.pending.Take(correlationID)
		return nil, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case reply := <-pending.replyCh:
		return reply, nil
	case <-timer.C:
		return b.settle(correlationID, pending, nil)
	case <-ctx.Done():
		return b.settle(correlationID, pending, ctx.Err())
	case <-b.closed:
		return b.settle(correlationID, pending, errors.ErrBusClosed)
	}
}

// settle removes the pending entry after a timeout or cancellation. When the
// removal races with a reply that already claimed the entry, the reply wins:
// the completer is committed to delivering it, so we wait for it instead of
// reporting a timeout.
func (b *Broker) settle(id uuid.UUID, pending *pendingRequest, cause error) (*message.Envelope, error) {
	if _, ok := b.pending.Take(id); ok {
		return nil, cause
	}
	select {
	case reply := <-pending.replyCh:
		return reply, nil
	case <-b.closed:
		// entry vanished through Close, not through a completer
		return nil, cause
	}
}

// completeRequest resolves the pending request matching the reply envelope.
// The Take below is the single point of resolution: whichever side (reply or
// timeout) claims the entry first wins, and a correlation id can never
// resolve twice.
func (b *Broker) completeRequest(reply *message.Envelope) {
	pending, ok := b.pending.Take(reply.CorrelationID())
	if !ok {
		b.logger.Debugf("discarding late reply for correlation id=%s", reply.CorrelationID())
		return
	}
	pending.replyCh <- reply
}

// PendingRequests returns the number of in-flight request/reply exchanges.
func (b *Broker) PendingRequests() int {
	return b.pending.Len()
}

// Close tears the bus down: every subscriber stream is closed and waiting
// requesters are released.
func (b *Broker) Close() {
	b.closeOnce.Do(func() {
		close(b.closed)
		b.subscribers.Range(func(_ string, sub *Subscription) {
			sub.shutdown()
		})
		b.subscribers.Reset()
		b.pending.Reset()
	})
}

func (b *Broker) isClosed() bool {
	select {
	case <-b.closed:
		return true
	default:
		return false
	}
}

// pendingRequest is one in-flight request/reply exchange: the channel the
// requester waits on, plus bookkeeping timestamps.
type pendingRequest struct {
	replyCh   chan *message.Envelope
	createdAt time.Time
	deadline  time.Time
}

func newPendingRequest(timeout time.Duration) *pendingRequest {
	now := time.Now()
	return &pendingRequest{
		replyCh:   make(chan *message.Envelope, 1),
		createdAt: now,
		deadline:  now.Add(timeout),
	}
}
