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

package monitor

import (
	"github.com/hivekit/hive/log"
)

// Logging forwards every lifecycle event to a structured logger.
type Logging struct {
	logger log.Logger
}

// enforce compilation error
var _ Monitor = (*Logging)(nil)

// NewLogging creates a sink that writes events through the given logger.
func NewLogging(logger log.Logger) *Logging {
	if logger == nil {
		logger = log.DefaultLogger
	}
	return &Logging{logger: logger}
}

// Record logs the event. Failures and exceeded restart limits surface at
// warning level, everything else at info.
func (l *Logging) Record(event *Event) {
	fields := []any{
		"supervisor", event.SupervisorID,
		"child", event.ChildID,
		"timestamp", event.Timestamp,
	}
	for k, v := range event.Metadata {
		fields = append(fields, k, v)
	}
	logger := l.logger.With(fields...)
	switch event.Kind {
	case ChildFailed, RestartLimitExceeded:
		logger.Warnf("supervision event: %s", event.Kind)
	default:
		logger.Infof("supervision event: %s", event.Kind)
	}
}

// Fanout replicates each event to every underlying sink.
type Fanout []Monitor

// enforce compilation error
var _ Monitor = (Fanout)(nil)

// Record forwards the event to all sinks in order.
func (f Fanout) Record(event *Event) {
	for _, sink := range f {
		sink.Record(event)
	}
}
