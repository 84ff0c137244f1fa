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

import "github.com/hivekit/hive/message"

// Backpressure decides what happens to a send when a bounded mailbox is at
// capacity.
type Backpressure int

const (
	// BackpressureAuto selects the policy from each envelope's priority:
	// critical and high-priority envelopes block, normal-priority envelopes
	// are rejected with errors.ErrMailboxFull, low-priority envelopes are
	// dropped and counted.
	BackpressureAuto Backpressure = iota
	// BackpressureBlock stalls the producer until space frees up or the
	// mailbox is disposed.
	BackpressureBlock
	// BackpressureError fails the send immediately with
	// errors.ErrMailboxFull.
	BackpressureError
	// BackpressureDrop discards the envelope without error. Dropped
	// envelopes are visible through Metrics.Dropped.
	BackpressureDrop
)

// String returns the string representation of the policy.
func (b Backpressure) String() string {
	switch b {
	case BackpressureAuto:
		return "Auto"
	case BackpressureBlock:
		return "Block"
	case BackpressureError:
		return "Error"
	case BackpressureDrop:
		return "Drop"
	default:
		return ""
	}
}

// forPriority resolves BackpressureAuto for one envelope.
func forPriority(p message.Priority) Backpressure {
	switch {
	case p >= message.PriorityHigh:
		return BackpressureBlock
	case p == message.PriorityNormal:
		return BackpressureError
	default:
		return BackpressureDrop
	}
}
