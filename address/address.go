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

// Package address provides the canonical representation of actor addresses.
//
// An address identifies a single message recipient. Three kinds exist:
//
//   - Named: a stable, caller-chosen name.
//   - Anonymous: a generated, unique name for actors nobody refers to by name.
//   - PoolMember: a member of a named pool of interchangeable actors. The
//     canonical textual form is "<pool>:<member>".
//
// Addresses are immutable once created. Equality and registry keying are
// defined by the canonical string form; the xxh3 hash of that form is
// precomputed at construction and reused as the routing key.
package address

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"

	"github.com/hivekit/hive/errors"
)

// Kind discriminates the address variants.
type Kind int

const (
	// KindNamed is a stable, caller-chosen address.
	KindNamed Kind = iota
	// KindAnonymous is a generated, unique address.
	KindAnonymous
	// KindPoolMember is a member of a named actor pool.
	KindPoolMember
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNamed:
		return "Named"
	case KindAnonymous:
		return "Anonymous"
	case KindPoolMember:
		return "PoolMember"
	default:
		return ""
	}
}

// namePattern matches valid actor and pool names: word characters with
// non-leading '-' or '_'.
var namePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-_]*$`)

// NoSender is the sentinel returned when an envelope carries no sender.
var NoSender = &Address{}

// Address identifies a message recipient. The zero value is the "no sender"
// sentinel; all other values are produced by the constructors in this package
// and are immutable.
type Address struct {
	kind      Kind
	name      string
	pool      string
	id        string
	canonical string
	key       uint64
}

// Named creates a stable address for the given actor name.
func Named(name string) *Address {
	return newAddress(KindNamed, name, "")
}

// Anonymous creates a unique, generated address.
func Anonymous() *Address {
	return newAddress(KindAnonymous, "anon-"+uuid.NewString(), "")
}

// PoolMember creates an address for a member of the named pool.
// Its canonical form is "<pool>:<member>".
func PoolMember(pool, member string) *Address {
	return newAddress(KindPoolMember, member, pool)
}

func newAddress(kind Kind, name, pool string) *Address {
	canonical := name
	if kind == KindPoolMember {
		canonical = pool + ":" + name
	}
	return &Address{
		kind:      kind,
		name:      name,
		pool:      pool,
		id:        uuid.NewString(),
		canonical: canonical,
		key:       xxh3.HashString(canonical),
	}
}

// Kind returns the address kind.
func (a *Address) Kind() Kind { return a.kind }

// Name returns the actor name. For pool members this is the member name
// without the pool prefix.
func (a *Address) Name() string { return a.name }

// Pool returns the pool name for pool-member addresses and the empty string
// otherwise.
func (a *Address) Pool() string { return a.pool }

// ID returns the unique, opaque identifier of this address instance.
func (a *Address) ID() string { return a.id }

// IsPoolMember reports whether the address belongs to a pool.
func (a *Address) IsPoolMember() bool { return a.kind == KindPoolMember }

// IsNoSender reports whether the address is the "no sender" sentinel.
func (a *Address) IsNoSender() bool {
	return a == nil || a == NoSender || a.canonical == ""
}

// String returns the canonical textual form of the address.
func (a *Address) String() string { return a.canonical }

// RoutingKey returns the precomputed xxh3 hash of the canonical form.
// Registries cache this hash so repeat lookups skip rehashing.
func (a *Address) RoutingKey() uint64 { return a.key }

// Equal reports whether both addresses identify the same recipient.
// Equality is defined by the canonical form, not by instance identity.
func (a *Address) Equal(other *Address) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.canonical == other.canonical
}

// Validate checks that the address is well formed. The "no sender" sentinel
// is deliberately valid so it can flow through envelopes.
func (a *Address) Validate() error {
	if a.IsNoSender() {
		return nil
	}
	if !namePattern.MatchString(a.name) {
		return fmt.Errorf("%w: name=%q", errors.ErrInvalidAddress, a.name)
	}
	if a.kind == KindPoolMember && !namePattern.MatchString(a.pool) {
		return fmt.Errorf("%w: pool=%q", errors.ErrInvalidAddress, a.pool)
	}
	return nil
}
