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

package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue(t *testing.T) {
	t.Run("FIFO order", func(t *testing.T) {
		q := New[int]()
		for i := 0; i < 100; i++ {
			require.True(t, q.Push(i))
		}
		assert.Equal(t, 100, q.Len())
		for i := 0; i < 100; i++ {
			got, ok := q.Pop()
			require.True(t, ok)
			assert.Equal(t, i, got)
		}
		assert.True(t, q.IsEmpty())
	})

	t.Run("Pop on empty", func(t *testing.T) {
		q := New[string]()
		got, ok := q.Pop()
		assert.False(t, ok)
		assert.Empty(t, got)
	})

	t.Run("Push after close is dropped", func(t *testing.T) {
		q := New[int]()
		q.Close()
		assert.True(t, q.IsClosed())
		assert.False(t, q.Push(1))
		_, ok := q.Pop()
		assert.False(t, ok)
	})

	t.Run("Close retains buffered items", func(t *testing.T) {
		q := New[int]()
		for i := 0; i < 3; i++ {
			require.True(t, q.Push(i))
		}
		q.Close()
		assert.Equal(t, 3, q.Len())
		for i := 0; i < 3; i++ {
			got, ok := q.Wait()
			require.True(t, ok)
			assert.Equal(t, i, got)
		}
		_, ok := q.Wait()
		assert.False(t, ok)
	})

	t.Run("Wait blocks until a push arrives", func(t *testing.T) {
		q := New[int]()
		got := make(chan int, 1)
		go func() {
			v, ok := q.Wait()
			if ok {
				got <- v
			}
		}()
		time.Sleep(10 * time.Millisecond)
		require.True(t, q.Push(42))
		select {
		case v := <-got:
			assert.Equal(t, 42, v)
		case <-time.After(time.Second):
			t.Fatal("Wait never woke up")
		}
	})

	t.Run("Close releases waiters", func(t *testing.T) {
		q := New[int]()
		done := make(chan struct{})
		go func() {
			_, ok := q.Wait()
			assert.False(t, ok)
			close(done)
		}()
		time.Sleep(10 * time.Millisecond)
		q.Close()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("waiter never released")
		}
	})

	t.Run("Ring resize keeps order", func(t *testing.T) {
		q := New[int]()
		// Offset head so the ring wraps before growing.
		for i := 0; i < 12; i++ {
			q.Push(i)
		}
		for i := 0; i < 12; i++ {
			got, ok := q.Pop()
			require.True(t, ok)
			require.Equal(t, i, got)
		}
		for i := 0; i < 1000; i++ {
			q.Push(i)
		}
		for i := 0; i < 1000; i++ {
			got, ok := q.Pop()
			require.True(t, ok)
			require.Equal(t, i, got)
		}
	})

	t.Run("Concurrent producers", func(t *testing.T) {
		q := New[int]()
		var wg sync.WaitGroup
		const producers, each = 8, 100
		for p := 0; p < producers; p++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < each; i++ {
					q.Push(i)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, producers*each, q.Len())
	})
}
