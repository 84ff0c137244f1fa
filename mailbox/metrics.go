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

import "go.uber.org/atomic"

// Metrics tracks per-mailbox delivery counters with lock-free atomics.
// All methods are safe for concurrent use.
type Metrics struct {
	enqueued  atomic.Int64
	dequeued  atomic.Int64
	rejected  atomic.Int64
	dropped   atomic.Int64
	peakDepth atomic.Int64
}

// NewMetrics creates a zeroed metrics recorder.
func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) recordEnqueue(depth int64) {
	m.enqueued.Inc()
	for {
		peak := m.peakDepth.Load()
		if depth <= peak || m.peakDepth.CompareAndSwap(peak, depth) {
			return
		}
	}
}

func (m *Metrics) recordDequeue() {
	m.dequeued.Inc()
}

func (m *Metrics) recordRejection() {
	m.rejected.Inc()
}

func (m *Metrics) recordDrop() {
	m.dropped.Inc()
}

// Enqueued returns the total number of envelopes accepted.
func (m *Metrics) Enqueued() int64 { return m.enqueued.Load() }

// Dequeued returns the total number of envelopes consumed.
func (m *Metrics) Dequeued() int64 { return m.dequeued.Load() }

// Rejected returns the number of envelopes refused because the mailbox was
// closed or full.
func (m *Metrics) Rejected() int64 { return m.rejected.Load() }

// Dropped returns the number of envelopes discarded by the drop
// backpressure policy.
func (m *Metrics) Dropped() int64 { return m.dropped.Load() }

// Depth returns the current backlog derived from the counters.
func (m *Metrics) Depth() int64 {
	return m.enqueued.Load() - m.dequeued.Load()
}

// PeakDepth returns the highest backlog observed.
func (m *Metrics) PeakDepth() int64 { return m.peakDepth.Load() }
