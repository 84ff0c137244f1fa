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

package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivekit/hive/errors"
)

func TestAddress(t *testing.T) {
	t.Run("Named", func(t *testing.T) {
		addr := Named("worker")
		require.NoError(t, addr.Validate())
		assert.Equal(t, KindNamed, addr.Kind())
		assert.Equal(t, "worker", addr.Name())
		assert.Equal(t, "worker", addr.String())
		assert.False(t, addr.IsPoolMember())
		assert.False(t, addr.IsNoSender())
	})

	t.Run("Anonymous addresses are unique", func(t *testing.T) {
		first := Anonymous()
		second := Anonymous()
		require.NoError(t, first.Validate())
		require.NoError(t, second.Validate())
		assert.Equal(t, KindAnonymous, first.Kind())
		assert.False(t, first.Equal(second))
	})

	t.Run("Pool member", func(t *testing.T) {
		addr := PoolMember("workers", "workers-0")
		require.NoError(t, addr.Validate())
		assert.Equal(t, KindPoolMember, addr.Kind())
		assert.Equal(t, "workers", addr.Pool())
		assert.Equal(t, "workers:workers-0", addr.String())
		assert.True(t, addr.IsPoolMember())
	})

	t.Run("Invalid names fail validation", func(t *testing.T) {
		for _, name := range []string{" ", "-leading", "has space", "bang!"} {
			err := Named(name).Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidAddress)
		}
	})

	t.Run("Routing key is stable", func(t *testing.T) {
		addr := Named("stable")
		key := addr.RoutingKey()
		for i := 0; i < 100; i++ {
			assert.Equal(t, key, addr.RoutingKey())
		}
		assert.Equal(t, Named("stable").RoutingKey(), key)
		assert.NotEqual(t, Named("other").RoutingKey(), key)
	})

	t.Run("Equality follows the canonical form", func(t *testing.T) {
		assert.True(t, Named("a").Equal(Named("a")))
		assert.False(t, Named("a").Equal(Named("b")))
		assert.False(t, Named("a").Equal(nil))
		assert.False(t, Named("a").Equal(PoolMember("a", "a")))
	})

	t.Run("NoSender", func(t *testing.T) {
		require.NoError(t, NoSender.Validate())
		assert.True(t, NoSender.IsNoSender())
	})
}
