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

package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivekit/hive/address"
	"github.com/hivekit/hive/errors"
	"github.com/hivekit/hive/log"
	"github.com/hivekit/hive/message"
)

func TestPublish(t *testing.T) {
	t.Run("Broadcast reaches every subscriber exactly once", func(t *testing.T) {
		broker := New(WithLogger(log.DiscardLogger))
		defer broker.Close()

		const subscribers = 5
		subs := make([]*Subscription, subscribers)
		for i := range subs {
			subs[i] = broker.Subscribe()
		}
		require.Equal(t, subscribers, broker.SubscribersCount())

		env := message.New("fanout").WithRecipient(address.Named("worker"))
		require.NoError(t, broker.Publish(env))

		for _, sub := range subs {
			got, ok := sub.Next()
			require.True(t, ok)
			assert.Equal(t, "fanout", got.Payload())
			assert.Equal(t, 0, sub.Len())
		}
	})

	t.Run("Publish without recipient is a configuration error", func(t *testing.T) {
		broker := New(WithLogger(log.DiscardLogger))
		defer broker.Close()

		err := broker.Publish(message.New("lost"))
		assert.ErrorIs(t, err, errors.ErrNoRecipient)
	})

	t.Run("A closed subscriber never blocks the others", func(t *testing.T) {
		broker := New(WithLogger(log.DiscardLogger))
		defer broker.Close()

		dead := broker.Subscribe()
		alive := broker.Subscribe()
		broker.Unsubscribe(dead)

		env := message.New("still flowing").WithRecipient(address.Named("worker"))
		require.NoError(t, broker.Publish(env))

		got, ok := alive.Next()
		require.True(t, ok)
		assert.Equal(t, "still flowing", got.Payload())
	})

	t.Run("Publish on a closed bus fails", func(t *testing.T) {
		broker := New(WithLogger(log.DiscardLogger))
		broker.Close()
		err := broker.Publish(message.New("x").WithRecipient(address.Named("worker")))
		assert.ErrorIs(t, err, errors.ErrBusClosed)
	})

	t.Run("Subscription iterator drains queued envelopes", func(t *testing.T) {
		broker := New(WithLogger(log.DiscardLogger))
		sub := broker.Subscribe()

		for i := 0; i < 3; i++ {
			env := message.New(i).WithRecipient(address.Named("worker"))
			require.NoError(t, broker.Publish(env))
		}
		broker.Unsubscribe(sub)

		var seen []any
		for env := range sub.Iterator() {
			seen = append(seen, env.Payload())
		}
		assert.Equal(t, []any{0, 1, 2}, seen)
		broker.Close()
	})
}

func TestPublishRequest(t *testing.T) {
	t.Run("Reply arrives well before the timeout", func(t *testing.T) {
		broker := New(WithLogger(log.DiscardLogger))
		defer broker.Close()

		sub := broker.Subscribe()
		go func() {
			request, ok := sub.Next()
			if !ok {
				return
			}
			time.Sleep(100 * time.Millisecond)
			reply := message.New("pong").WithCorrelationID(request.CorrelationID())
			_ = broker.Publish(reply)
		}()

		env := message.New("ping").WithRecipient(address.Named("responder"))
		started := time.Now()
		reply, err := broker.PublishRequest(context.Background(), env, 2*time.Second)
		require.NoError(t, err)
		require.NotNil(t, reply)
		assert.Equal(t, "pong", reply.Payload())
		assert.Less(t, time.Since(started), time.Second)
		assert.Equal(t, 0, broker.PendingRequests())
	})

	t.Run("Timeout is a normal outcome and leaves no pending entry", func(t *testing.T) {
		broker := New(WithLogger(log.DiscardLogger))
		defer broker.Close()

		sub := broker.Subscribe()
		defer broker.Unsubscribe(sub)

		env := message.New("ping").WithRecipient(address.Named("silent"))
		started := time.Now()
		reply, err := broker.PublishRequest(context.Background(), env, 200*time.Millisecond)
		require.NoError(t, err)
		assert.Nil(t, reply)
		elapsed := time.Since(started)
		assert.GreaterOrEqual(t, elapsed, 200*time.Millisecond)
		assert.Less(t, elapsed, time.Second)
		assert.Equal(t, 0, broker.PendingRequests())
	})

	t.Run("Late replies are discarded, never resolved twice", func(t *testing.T) {
		broker := New(WithLogger(log.DiscardLogger))
		defer broker.Close()

		sub := broker.Subscribe()

		env := message.New("ping").WithRecipient(address.Named("slow"))
		reply, err := broker.PublishRequest(context.Background(), env, 50*time.Millisecond)
		require.NoError(t, err)
		require.Nil(t, reply)
		require.Equal(t, 0, broker.PendingRequests())

		request, ok := sub.Next()
		require.True(t, ok)
		late := message.New("too late").WithCorrelationID(request.CorrelationID())
		require.NoError(t, broker.Publish(late))
		assert.Equal(t, 0, broker.PendingRequests())
	})

	t.Run("Non-positive timeout is rejected", func(t *testing.T) {
		broker := New(WithLogger(log.DiscardLogger))
		defer broker.Close()

		env := message.New("ping").WithRecipient(address.Named("worker"))
		_, err := broker.PublishRequest(context.Background(), env, 0)
		assert.ErrorIs(t, err, errors.ErrInvalidTimeout)
	})

	t.Run("Canceled context settles the pending entry", func(t *testing.T) {
		broker := New(WithLogger(log.DiscardLogger))
		defer broker.Close()

		sub := broker.Subscribe()
		defer broker.Unsubscribe(sub)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()

		env := message.New("ping").WithRecipient(address.Named("silent"))
		reply, err := broker.PublishRequest(ctx, env, 5*time.Second)
		assert.Nil(t, reply)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, broker.PendingRequests())
	})

	t.Run("Closing the bus releases waiting requesters", func(t *testing.T) {
		broker := New(WithLogger(log.DiscardLogger))
		sub := broker.Subscribe()
		_ = sub

		done := make(chan error, 1)
		go func() {
			env := message.New("ping").WithRecipient(address.Named("silent"))
			_, err := broker.PublishRequest(context.Background(), env, 5*time.Second)
			done <- err
		}()

		time.Sleep(50 * time.Millisecond)
		broker.Close()

		select {
		case err := <-done:
			assert.ErrorIs(t, err, errors.ErrBusClosed)
		case <-time.After(time.Second):
			t.Fatal("requester was not released by Close")
		}
	})

	t.Run("Request envelopes broadcast like regular messages", func(t *testing.T) {
		broker := New(WithLogger(log.DiscardLogger))
		defer broker.Close()

		sub := broker.Subscribe()
		go func() {
			request, ok := sub.Next()
			if !ok {
				return
			}
			assert.NotNil(t, request.Recipient())
			assert.True(t, request.IsReply())
			reply := message.New("ack").WithCorrelationID(request.CorrelationID())
			_ = broker.Publish(reply)
		}()

		env := message.New("work").WithRecipient(address.Named("worker"))
		reply, err := broker.PublishRequest(context.Background(), env, time.Second)
		require.NoError(t, err)
		require.NotNil(t, reply)
		assert.Equal(t, "ack", reply.Payload())
	})
}
