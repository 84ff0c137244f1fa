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
	"math/rand"
	"sync"

	"go.uber.org/atomic"

	"github.com/hivekit/hive/address"
	"github.com/hivekit/hive/errors"
)

// PoolStrategy selects how a member is picked from a pool.
type PoolStrategy int

const (
	// RoundRobin rotates over the members so that for n members, n
	// selections touch each member exactly once.
	RoundRobin PoolStrategy = iota
	// Random picks a member uniformly at random.
	Random
)

// String returns the string representation of the strategy.
func (s PoolStrategy) String() string {
	switch s {
	case RoundRobin:
		return "RoundRobin"
	case Random:
		return "Random"
	default:
		return ""
	}
}

// pool tracks the members of a named actor pool together with the
// monotonically wrapping cursor used for round-robin selection.
type pool struct {
	name    string
	mu      sync.RWMutex
	members []*address.Address
	cursor  atomic.Uint64
}

func newPool(name string) *pool {
	return &pool{name: name}
}

func (p *pool) add(addr *address.Address) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, member := range p.members {
		if member.Equal(addr) {
			p.members[i] = addr
			return
		}
	}
	p.members = append(p.members, addr)
}

func (p *pool) remove(addr *address.Address) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, member := range p.members {
		if member.Equal(addr) {
			p.members = append(p.members[:i], p.members[i+1:]...)
			return
		}
	}
}

func (p *pool) size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.members)
}

func (p *pool) pick(strategy PoolStrategy) (*address.Address, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.members) == 0 {
		return nil, errors.ErrEmptyPool
	}
	switch strategy {
	case Random:
		return p.members[rand.Intn(len(p.members))], nil
	default:
		next := p.cursor.Inc() - 1
		return p.members[next%uint64(len(p.members))], nil
	}
}

// PoolMember selects one member of the named pool according to the strategy.
// It returns errors.ErrEmptyPool when the pool is unknown or has no members.
func (r *Registry) PoolMember(name string, strategy PoolStrategy) (*address.Address, error) {
	p, ok := r.pools.Get(name)
	if !ok {
		return nil, errors.ErrEmptyPool
	}
	return p.pick(strategy)
}

// PoolMembers returns a snapshot of the member addresses of the named pool.
func (r *Registry) PoolMembers(name string) []*address.Address {
	p, ok := r.pools.Get(name)
	if !ok {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*address.Address, len(p.members))
	copy(out, p.members)
	return out
}
