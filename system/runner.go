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

package system

import (
	"context"
	"runtime/debug"

	"go.uber.org/atomic"

	"github.com/hivekit/hive/address"
	"github.com/hivekit/hive/errors"
	"github.com/hivekit/hive/log"
	"github.com/hivekit/hive/mailbox"
	"github.com/hivekit/hive/message"
)

// actorRunner owns one actor's processing loop: a single goroutine that
// drains the mailbox in FIFO order and feeds each envelope to Receive.
type actorRunner struct {
	addr      *address.Address
	actor     Actor
	mailbox   mailbox.Mailbox
	system    *System
	logger    log.Logger
	done      chan struct{}
	processed *atomic.Int64
	failures  *atomic.Int64
}

func newActorRunner(system *System, addr *address.Address, actor Actor, mb mailbox.Mailbox) *actorRunner {
	return &actorRunner{
		addr:      addr,
		actor:     actor,
		mailbox:   mb,
		system:    system,
		logger:    system.logger.With("actor", addr.String()),
		done:      make(chan struct{}),
		processed: atomic.NewInt64(0),
		failures:  atomic.NewInt64(0),
	}
}

// run drains the mailbox until it is disposed. Envelopes already enqueued at
// disposal time are still processed before the loop exits.
func (r *actorRunner) run() {
	defer close(r.done)
	for {
		env, ok := r.mailbox.Dequeue()
		if !ok {
			return
		}
		r.process(env)
	}
}

// process feeds one envelope to the actor. Receive errors and panics never
// kill the loop; they are recovered, logged and counted.
func (r *actorRunner) process(env *message.Envelope) {
	defer func() {
		if v := recover(); v != nil {
			r.failures.Inc()
			perr := errors.NewPanicError(v, debug.Stack())
			r.logger.Errorf("actor panicked: %v", perr)
		}
	}()

	ctx := &Context{
		ctx:      context.Background(),
		envelope: env,
		self:     r.addr,
		system:   r.system,
	}
	if err := r.actor.Receive(ctx); err != nil {
		r.failures.Inc()
		r.logger.Errorf("actor receive failed: %v", err)
		return
	}
	r.processed.Inc()
}

// stop disposes the mailbox and waits for the loop to finish draining.
func (r *actorRunner) stop(ctx context.Context) error {
	r.mailbox.Dispose()
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
