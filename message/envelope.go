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

// Package message defines the envelope that wraps every payload exchanged
// through the bus. Payloads are in-process values owned by the sender until
// enqueued; no wire format exists at this layer.
package message

import (
	"time"

	"github.com/google/uuid"

	"github.com/hivekit/hive/address"
)

// Envelope wraps a payload with its delivery metadata. An envelope is created
// per send and consumed exactly once by the router; ownership transfers from
// the sender to the recipient mailbox.
type Envelope struct {
	payload       any
	sender        *address.Address
	recipient     *address.Address
	replyTo       *address.Address
	correlationID uuid.UUID
	priority      Priority
	ttl           time.Duration
	createdAt     time.Time
}

// New creates an envelope around the given payload with Normal priority and
// no addressing information.
func New(payload any) *Envelope {
	return &Envelope{
		payload:   payload,
		sender:    address.NoSender,
		priority:  PriorityNormal,
		createdAt: time.Now(),
	}
}

// WithSender sets the sender address.
func (e *Envelope) WithSender(sender *address.Address) *Envelope {
	e.sender = sender
	return e
}

// WithRecipient sets the recipient address.
func (e *Envelope) WithRecipient(recipient *address.Address) *Envelope {
	e.recipient = recipient
	return e
}

// WithReplyTo sets the address replies should be routed to.
func (e *Envelope) WithReplyTo(replyTo *address.Address) *Envelope {
	e.replyTo = replyTo
	return e
}

// WithCorrelationID tags the envelope with a request/reply correlation id.
func (e *Envelope) WithCorrelationID(id uuid.UUID) *Envelope {
	e.correlationID = id
	return e
}

// WithPriority sets the priority tag.
func (e *Envelope) WithPriority(priority Priority) *Envelope {
	e.priority = priority
	return e
}

// WithTTL bounds the envelope's useful lifetime. Expired envelopes are not
// delivered; the router hands them to the dead-letter buffer.
func (e *Envelope) WithTTL(ttl time.Duration) *Envelope {
	e.ttl = ttl
	return e
}

// Payload returns the wrapped payload.
func (e *Envelope) Payload() any { return e.payload }

// Sender returns the sender address, or address.NoSender when unset.
func (e *Envelope) Sender() *address.Address { return e.sender }

// Recipient returns the recipient address, or nil when the envelope carries
// no recipient.
func (e *Envelope) Recipient() *address.Address { return e.recipient }

// ReplyTo returns the reply address, or nil when unset.
func (e *Envelope) ReplyTo() *address.Address { return e.replyTo }

// CorrelationID returns the correlation id, or uuid.Nil when the envelope is
// not part of a request/reply exchange.
func (e *Envelope) CorrelationID() uuid.UUID { return e.correlationID }

// IsReply reports whether the envelope carries a correlation id.
func (e *Envelope) IsReply() bool { return e.correlationID != uuid.Nil }

// Priority returns the priority tag.
func (e *Envelope) Priority() Priority { return e.priority }

// TTL returns the time-to-live, zero meaning unbounded.
func (e *Envelope) TTL() time.Duration { return e.ttl }

// CreatedAt returns the envelope creation timestamp.
func (e *Envelope) CreatedAt() time.Time { return e.createdAt }

// Expired reports whether the envelope outlived its TTL.
func (e *Envelope) Expired() bool {
	if e.ttl <= 0 {
		return false
	}
	return time.Since(e.createdAt) > e.ttl
}
