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

	"github.com/hivekit/hive/address"
	"github.com/hivekit/hive/errors"
	"github.com/hivekit/hive/message"
)

// Actor processes one envelope at a time. Receive is never invoked
// concurrently for the same actor; messages from its mailbox arrive in
// delivery order. A returned error is logged by the runner and does not stop
// the actor. A panic inside Receive is recovered and surfaced as a
// *errors.PanicError.
type Actor interface {
	Receive(ctx *Context) error
}

// ActorFunc adapts a plain function into an Actor.
type ActorFunc func(ctx *Context) error

// enforce compilation error
var _ Actor = (ActorFunc)(nil)

// Receive implements Actor.
func (f ActorFunc) Receive(ctx *Context) error {
	return f(ctx)
}

// Context carries one delivered envelope together with the runtime
// facilities an actor needs while processing it. A Context is only valid for
// the duration of the Receive call it was created for.
type Context struct {
	ctx      context.Context
	envelope *message.Envelope
	self     *address.Address
	system   *System
}

// Context returns the underlying go context.
func (c *Context) Context() context.Context {
	return c.ctx
}

// Envelope returns the envelope being processed.
func (c *Context) Envelope() *message.Envelope {
	return c.envelope
}

// Payload is shorthand for the envelope's payload.
func (c *Context) Payload() any {
	return c.envelope.Payload()
}

// Sender returns the envelope's sender address, address.NoSender when unset.
func (c *Context) Sender() *address.Address {
	return c.envelope.Sender()
}

// Self returns the address of the receiving actor.
func (c *Context) Self() *address.Address {
	return c.self
}

// System returns the owning actor system.
func (c *Context) System() *System {
	return c.system
}

// Tell sends a fire-and-forget payload to another actor.
func (c *Context) Tell(to *address.Address, payload any) error {
	env := message.New(payload).
		WithSender(c.self).
		WithRecipient(to)
	return c.system.Publish(env)
}

// Reply answers the envelope being processed. For a request envelope the
// reply carries the request's correlation id and resolves the pending
// exchange. For a plain envelope with a reply-to address the payload is sent
// there instead. Anything else has nowhere to go.
func (c *Context) Reply(payload any) error {
	switch {
	case c.envelope.IsReply():
		reply := message.New(payload).
			WithSender(c.self).
			WithCorrelationID(c.envelope.CorrelationID())
		return c.system.Publish(reply)
	case c.envelope.ReplyTo() != nil:
		return c.Tell(c.envelope.ReplyTo(), payload)
	default:
		return errors.ErrNoRecipient
	}
}
