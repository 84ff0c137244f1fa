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
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivekit/hive/log"
)

func event(kind EventKind, child string) *Event {
	return &Event{
		Timestamp:    time.Now(),
		SupervisorID: "node-1",
		ChildID:      child,
		Kind:         kind,
	}
}

func TestInMemory(t *testing.T) {
	t.Run("Retains events in order", func(t *testing.T) {
		sink := NewInMemory(10)
		sink.Record(event(ChildStarted, "a"))
		sink.Record(event(ChildFailed, "a"))
		sink.Record(event(ChildRestarted, "a"))

		events := sink.Events()
		require.Len(t, events, 3)
		assert.Equal(t, ChildStarted, events[0].Kind)
		assert.Equal(t, ChildFailed, events[1].Kind)
		assert.Equal(t, ChildRestarted, events[2].Kind)
		assert.EqualValues(t, 3, sink.Total())
	})

	t.Run("Evicts the oldest entry at capacity", func(t *testing.T) {
		sink := NewInMemory(3)
		for i := 0; i < 5; i++ {
			sink.Record(event(ChildStarted, fmt.Sprintf("c-%d", i)))
		}
		events := sink.Events()
		require.Len(t, events, 3)
		assert.Equal(t, "c-2", events[0].ChildID)
		assert.Equal(t, "c-4", events[2].ChildID)
		assert.EqualValues(t, 5, sink.Total())
	})

	t.Run("Filters by kind", func(t *testing.T) {
		sink := NewInMemory(10)
		sink.Record(event(ChildStarted, "a"))
		sink.Record(event(ChildFailed, "a"))
		sink.Record(event(ChildFailed, "b"))

		failed := sink.EventsOfKind(ChildFailed)
		require.Len(t, failed, 2)
		assert.Empty(t, sink.EventsOfKind(NodeShutdown))
	})

	t.Run("Reset clears retained events", func(t *testing.T) {
		sink := NewInMemory(10)
		sink.Record(event(ChildStarted, "a"))
		sink.Reset()
		assert.Empty(t, sink.Events())
	})

	t.Run("Concurrent recording is safe", func(t *testing.T) {
		sink := NewInMemory(100)
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					sink.Record(event(ChildRestarted, "x"))
				}
			}()
		}
		wg.Wait()
		assert.EqualValues(t, 500, sink.Total())
		assert.Len(t, sink.Events(), 100)
	})
}

func TestSinks(t *testing.T) {
	t.Run("Noop drops everything", func(t *testing.T) {
		var sink Monitor = &Noop{}
		assert.NotPanics(t, func() {
			sink.Record(event(ChildFailed, "a"))
		})
	})

	t.Run("Logging never fails the caller", func(t *testing.T) {
		sink := NewLogging(log.DiscardLogger)
		assert.NotPanics(t, func() {
			sink.Record(&Event{
				Timestamp:    time.Now(),
				SupervisorID: "node-1",
				ChildID:      "a",
				Kind:         RestartLimitExceeded,
				Metadata:     map[string]string{"error": "boom"},
			})
		})
	})

	t.Run("Fanout replicates to every sink", func(t *testing.T) {
		first := NewInMemory(10)
		second := NewInMemory(10)
		fan := Fanout{first, second}

		fan.Record(event(ChildStopped, "a"))
		assert.Len(t, first.Events(), 1)
		assert.Len(t, second.Events(), 1)
	})
}
