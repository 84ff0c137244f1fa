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

// Package errors defines the error taxonomy shared by the bus, registry and
// supervision engine. Callers match conditions with errors.Is against the
// sentinels below.
package errors

import "errors"

var (
	// ErrInvalidAddress is returned when an address fails validation.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrAddressNotFound is returned when an address cannot be resolved or
	// unregistered because no registry entry exists for it.
	ErrAddressNotFound = errors.New("address not found")

	// ErrMailboxClosed is returned when a message is enqueued into a mailbox
	// that has been disposed.
	ErrMailboxClosed = errors.New("mailbox is closed")

	// ErrMailboxFull is returned when a bounded mailbox rejects a message.
	ErrMailboxFull = errors.New("mailbox is full")

	// ErrSendTimeout indicates that a mailbox send did not complete in time.
	ErrSendTimeout = errors.New("send timed out")

	// ErrNoRecipient is returned when an envelope is published without any
	// recipient information. This is a configuration error, never dropped
	// silently.
	ErrNoRecipient = errors.New("envelope has no recipient")

	// ErrBusClosed is returned when publishing on a closed bus.
	ErrBusClosed = errors.New("bus is closed")

	// ErrRegistryInternal indicates an unexpected registry failure.
	ErrRegistryInternal = errors.New("registry internal error")

	// ErrInvalidTimeout is returned when a timeout value is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrEmptyPool is returned when a pool has no members to select from.
	ErrEmptyPool = errors.New("pool has no members")

	// ErrReplyTypeMismatch is returned when a reply payload does not carry the
	// type the caller expects.
	ErrReplyTypeMismatch = errors.New("reply payload type mismatch")

	// ErrChildNotFound is returned when a supervisor operation references an
	// unknown child id.
	ErrChildNotFound = errors.New("child not found")

	// ErrChildAlreadyExists is returned when a child spec name collides with a
	// live child of the same supervisor.
	ErrChildAlreadyExists = errors.New("child already exists")

	// ErrChildStartFailed indicates that a child factory or Start hook failed,
	// or that the start timeout elapsed.
	ErrChildStartFailed = errors.New("child start failed")

	// ErrChildStopFailed indicates that a child Stop hook failed.
	ErrChildStopFailed = errors.New("child stop failed")

	// ErrRestartLimitExceeded is returned when a child exhausts its restart
	// budget within the sliding window. Terminal for the child, not for the
	// owning supervisor.
	ErrRestartLimitExceeded = errors.New("restart limit exceeded")

	// ErrShutdownTimeout indicates that a graceful stop did not complete within
	// the configured shutdown timeout and the child was terminated forcefully.
	ErrShutdownTimeout = errors.New("shutdown timed out")

	// ErrSupervisorStopped is returned when operating on a supervisor that has
	// already shut down.
	ErrSupervisorStopped = errors.New("supervisor is stopped")

	// ErrSystemNotRunning is returned when spawning or messaging through a
	// system that is shutting down or stopped.
	ErrSystemNotRunning = errors.New("actor system is not running")

	// ErrActorAlreadyExists is returned when spawning an actor under a name
	// that is already registered.
	ErrActorAlreadyExists = errors.New("actor already exists")
)
