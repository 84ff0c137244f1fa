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

// Package registry maps actor addresses to their mailboxes. Lookups are O(1)
// over sharded concurrent maps so resolves never block each other; writes
// only contend on the shard they touch. Pool membership and round-robin
// cursors live alongside the routing table for load-balanced delivery.
package registry

import (
	csmap "github.com/mhmtszr/concurrent-swiss-map"
	"github.com/zeebo/xxh3"

	"github.com/hivekit/hive/address"
	"github.com/hivekit/hive/errors"
	"github.com/hivekit/hive/internal/xsync"
	"github.com/hivekit/hive/mailbox"
)

const shardCount = 32

// entry pairs a registered address with its mailbox. The routing key is
// precomputed by the address itself.
type entry struct {
	addr    *address.Address
	mailbox mailbox.Mailbox
}

// Registry is the process-scoped routing table. It is created once at system
// start, shared by reference, and torn down at shutdown.
type Registry struct {
	// canonical address form -> entry
	entries *csmap.CsMap[string, *entry]
	// precomputed routing key -> canonical address form
	keys *csmap.CsMap[uint64, string]
	// pool name -> members and rotation cursor
	pools *xsync.Map[string, *pool]
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		entries: csmap.Create[string, *entry](
			csmap.WithShardCount[string, *entry](shardCount),
			csmap.WithCustomHasher[string, *entry](func(key string) uint64 {
				return xxh3.HashString(key)
			}),
		),
		keys: csmap.Create[uint64, string](
			csmap.WithShardCount[uint64, string](shardCount),
			csmap.WithCustomHasher[uint64, string](func(key uint64) uint64 {
				return key
			}),
		),
		pools: xsync.NewMap[string, *pool](),
	}
}

// Register inserts or replaces the mailbox registered under the given
// address. Pool-member addresses are additionally tracked under their pool
// name for load-balanced selection.
func (r *Registry) Register(addr *address.Address, mb mailbox.Mailbox) error {
	if err := addr.Validate(); err != nil {
		return err
	}
	if addr.IsNoSender() {
		return errors.ErrInvalidAddress
	}

	r.entries.Store(addr.String(), &entry{addr: addr, mailbox: mb})
	r.keys.Store(addr.RoutingKey(), addr.String())

	if addr.IsPoolMember() {
		p := r.pool(addr.Pool())
		p.add(addr)
	}
	return nil
}

// Unregister removes the registry entry, the routing-key cache entry and the
// pool membership of the given address. It returns errors.ErrAddressNotFound
// when the address is not registered.
func (r *Registry) Unregister(addr *address.Address) error {
	if !r.entries.Delete(addr.String()) {
		return errors.ErrAddressNotFound
	}
	r.keys.Delete(addr.RoutingKey())

	if addr.IsPoolMember() {
		if p, ok := r.pools.Get(addr.Pool()); ok {
			p.remove(addr)
		}
	}
	return nil
}

// Resolve returns the mailbox registered under the given address.
func (r *Registry) Resolve(addr *address.Address) (mailbox.Mailbox, error) {
	e, ok := r.entries.Load(addr.String())
	if !ok {
		return nil, errors.ErrAddressNotFound
	}
	return e.mailbox, nil
}

// ResolveKey returns the mailbox registered under the given precomputed
// routing key. This is the fast path for routers that cache keys.
func (r *Registry) ResolveKey(key uint64) (mailbox.Mailbox, error) {
	canonical, ok := r.keys.Load(key)
	if !ok {
		return nil, errors.ErrAddressNotFound
	}
	e, ok := r.entries.Load(canonical)
	if !ok {
		return nil, errors.ErrAddressNotFound
	}
	return e.mailbox, nil
}

// Exists reports whether the given address is registered.
func (r *Registry) Exists(addr *address.Address) bool {
	return r.entries.Has(addr.String())
}

// Count returns the number of registered addresses.
func (r *Registry) Count() int {
	return r.entries.Count()
}

// PoolCount returns the number of pools with at least one member.
func (r *Registry) PoolCount() int {
	count := 0
	r.pools.Range(func(_ string, p *pool) {
		if p.size() > 0 {
			count++
		}
	})
	return count
}

// Addresses returns a snapshot of all registered addresses.
func (r *Registry) Addresses() []*address.Address {
	out := make([]*address.Address, 0, r.entries.Count())
	r.entries.Range(func(_ string, e *entry) bool {
		out = append(out, e.addr)
		return false
	})
	return out
}

// Reset removes every entry, key and pool. Used at system teardown.
func (r *Registry) Reset() {
	r.entries.Clear()
	r.keys.Clear()
	r.pools.Reset()
}

func (r *Registry) pool(name string) *pool {
	return r.pools.GetOrSet(name, func() *pool { return newPool(name) })
}
