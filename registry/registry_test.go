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

package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivekit/hive/address"
	"github.com/hivekit/hive/errors"
	"github.com/hivekit/hive/mailbox"
)

func TestRegistry(t *testing.T) {
	t.Run("Resolution is stable until unregistration", func(t *testing.T) {
		reg := New()
		addr := address.Named("worker")
		mb := mailbox.NewUnbounded()
		require.NoError(t, reg.Register(addr, mb))

		for i := 0; i < 50; i++ {
			resolved, err := reg.Resolve(addr)
			require.NoError(t, err)
			assert.Same(t, mailbox.Mailbox(mb), resolved)
		}

		require.NoError(t, reg.Unregister(addr))
		_, err := reg.Resolve(addr)
		assert.ErrorIs(t, err, errors.ErrAddressNotFound)
	})

	t.Run("Register replaces an existing entry", func(t *testing.T) {
		reg := New()
		addr := address.Named("worker")
		first := mailbox.NewUnbounded()
		second := mailbox.NewUnbounded()

		require.NoError(t, reg.Register(addr, first))
		require.NoError(t, reg.Register(addr, second))
		assert.Equal(t, 1, reg.Count())

		resolved, err := reg.Resolve(addr)
		require.NoError(t, err)
		assert.Same(t, mailbox.Mailbox(second), resolved)
	})

	t.Run("Register rejects invalid addresses", func(t *testing.T) {
		reg := New()
		err := reg.Register(address.Named("not valid"), mailbox.NewUnbounded())
		assert.ErrorIs(t, err, errors.ErrInvalidAddress)
	})

	t.Run("Unregister of an absent address errors", func(t *testing.T) {
		reg := New()
		err := reg.Unregister(address.Named("ghost"))
		assert.ErrorIs(t, err, errors.ErrAddressNotFound)
	})

	t.Run("ResolveKey matches Resolve", func(t *testing.T) {
		reg := New()
		addr := address.Named("keyed")
		mb := mailbox.NewUnbounded()
		require.NoError(t, reg.Register(addr, mb))

		byKey, err := reg.ResolveKey(addr.RoutingKey())
		require.NoError(t, err)
		assert.Same(t, mailbox.Mailbox(mb), byKey)

		require.NoError(t, reg.Unregister(addr))
		_, err = reg.ResolveKey(addr.RoutingKey())
		assert.ErrorIs(t, err, errors.ErrAddressNotFound)
	})

	t.Run("Concurrent registrations and resolves", func(t *testing.T) {
		reg := New()
		const actors = 64

		var wg sync.WaitGroup
		for i := 0; i < actors; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				addr := address.Named(fmt.Sprintf("actor-%d", i))
				require.NoError(t, reg.Register(addr, mailbox.NewUnbounded()))
				_, err := reg.Resolve(addr)
				require.NoError(t, err)
			}(i)
		}
		wg.Wait()
		assert.Equal(t, actors, reg.Count())
		assert.Len(t, reg.Addresses(), actors)
	})
}

func TestPools(t *testing.T) {
	t.Run("Round robin wraps over members", func(t *testing.T) {
		reg := New()
		members := make([]*address.Address, 3)
		for i := range members {
			members[i] = address.PoolMember("workers", fmt.Sprintf("workers-%d", i))
			require.NoError(t, reg.Register(members[i], mailbox.NewUnbounded()))
		}

		var picked []string
		for i := 0; i < 6; i++ {
			member, err := reg.PoolMember("workers", RoundRobin)
			require.NoError(t, err)
			picked = append(picked, member.String())
		}
		assert.Equal(t, picked[:3], picked[3:])
		assert.ElementsMatch(t,
			[]string{members[0].String(), members[1].String(), members[2].String()},
			picked[:3])
	})

	t.Run("Random selection stays within the pool", func(t *testing.T) {
		reg := New()
		valid := map[string]bool{}
		for i := 0; i < 3; i++ {
			m := address.PoolMember("pool", fmt.Sprintf("pool-%d", i))
			require.NoError(t, reg.Register(m, mailbox.NewUnbounded()))
			valid[m.String()] = true
		}
		for i := 0; i < 20; i++ {
			member, err := reg.PoolMember("pool", Random)
			require.NoError(t, err)
			assert.True(t, valid[member.String()])
		}
	})

	t.Run("Empty pool errors", func(t *testing.T) {
		reg := New()
		_, err := reg.PoolMember("nobody", RoundRobin)
		assert.ErrorIs(t, err, errors.ErrEmptyPool)
	})

	t.Run("Unregister removes pool membership", func(t *testing.T) {
		reg := New()
		member := address.PoolMember("solo", "solo-0")
		require.NoError(t, reg.Register(member, mailbox.NewUnbounded()))
		require.Len(t, reg.PoolMembers("solo"), 1)

		require.NoError(t, reg.Unregister(member))
		_, err := reg.PoolMember("solo", RoundRobin)
		assert.ErrorIs(t, err, errors.ErrEmptyPool)
	})
}
