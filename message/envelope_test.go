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

package message

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivekit/hive/address"
	"github.com/hivekit/hive/errors"
)

func TestEnvelope(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		env := New("hello")
		assert.Equal(t, "hello", env.Payload())
		assert.True(t, env.Sender().IsNoSender())
		assert.Nil(t, env.Recipient())
		assert.Equal(t, PriorityNormal, env.Priority())
		assert.Equal(t, uuid.Nil, env.CorrelationID())
		assert.False(t, env.IsReply())
		assert.False(t, env.Expired())
		assert.False(t, env.CreatedAt().IsZero())
	})

	t.Run("Builder", func(t *testing.T) {
		sender := address.Named("sender")
		recipient := address.Named("recipient")
		replyTo := address.Named("collector")
		id := uuid.New()

		env := New(42).
			WithSender(sender).
			WithRecipient(recipient).
			WithReplyTo(replyTo).
			WithCorrelationID(id).
			WithPriority(PriorityCritical)

		assert.True(t, sender.Equal(env.Sender()))
		assert.True(t, recipient.Equal(env.Recipient()))
		assert.True(t, replyTo.Equal(env.ReplyTo()))
		assert.Equal(t, id, env.CorrelationID())
		assert.True(t, env.IsReply())
		assert.Equal(t, PriorityCritical, env.Priority())
	})

	t.Run("TTL expiry", func(t *testing.T) {
		env := New("x").WithTTL(time.Nanosecond)
		time.Sleep(time.Millisecond)
		assert.True(t, env.Expired())

		assert.False(t, New("y").WithTTL(time.Hour).Expired())
	})
}

func TestUnwrapAs(t *testing.T) {
	t.Run("Matching type", func(t *testing.T) {
		env := New("payload")
		got, err := UnwrapAs[string](env)
		require.NoError(t, err)
		assert.Equal(t, "payload", got)
	})

	t.Run("Mismatched type fails cleanly", func(t *testing.T) {
		env := New(42)
		_, err := UnwrapAs[string](env)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrReplyTypeMismatch)
	})

	t.Run("Interface targets", func(t *testing.T) {
		env := New(error(nil))
		_, err := UnwrapAs[error](env)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrReplyTypeMismatch)
	})
}
