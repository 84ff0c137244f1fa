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
	"sync"
	"time"

	"github.com/hivekit/hive/message"
)

// defaultDeadLetterCapacity bounds the buffer when none is configured.
const defaultDeadLetterCapacity = 1000

// DeadLetter is one undeliverable envelope together with the reason it could
// not be delivered.
type DeadLetter struct {
	// Envelope is the undeliverable envelope.
	Envelope *message.Envelope
	// Reason explains why delivery failed.
	Reason string
	// Time is when the envelope was dead-lettered.
	Time time.Time
}

// deadLetters is a capped ring of the most recent undeliverable envelopes.
type deadLetters struct {
	mu       sync.RWMutex
	letters  []*DeadLetter
	capacity int
	total    uint64
}

func newDeadLetters(capacity int) *deadLetters {
	if capacity <= 0 {
		capacity = defaultDeadLetterCapacity
	}
	return &deadLetters{
		letters:  make([]*DeadLetter, 0, capacity),
		capacity: capacity,
	}
}

func (d *deadLetters) record(env *message.Envelope, reason string) {
	letter := &DeadLetter{
		Envelope: env,
		Reason:   reason,
		Time:     time.Now(),
	}
	d.mu.Lock()
	if len(d.letters) == d.capacity {
		copy(d.letters, d.letters[1:])
		d.letters[len(d.letters)-1] = letter
	} else {
		d.letters = append(d.letters, letter)
	}
	d.total++
	d.mu.Unlock()
}

func (d *deadLetters) snapshot() []*DeadLetter {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*DeadLetter, len(d.letters))
	copy(out, d.letters)
	return out
}

func (d *deadLetters) count() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.total
}
