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

package supervisor

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Strategy selects which siblings restart when one child fails. Strategies
// are pure functions over the failed id and the node's start order; they hold
// no state of their own.
type Strategy int

const (
	// OneForOne restarts only the failed child. Siblings are untouched.
	OneForOne Strategy = iota
	// OneForAll restarts every child of the node, in original start order.
	OneForAll
	// RestForOne restarts the failed child and every sibling started after
	// it. Earlier siblings are untouched.
	RestForOne
)

// String implements fmt.Stringer.
func (s Strategy) String() string {
	switch s {
	case OneForOne:
		return "OneForOne"
	case OneForAll:
		return "OneForAll"
	case RestForOne:
		return "RestForOne"
	default:
		return ""
	}
}

// RestartTargets computes the set of children to restart for a failure of
// the given child. order is the node's start order and is never mutated. The
// result preserves start order. An unknown failed id yields an empty result.
func (s Strategy) RestartTargets(failed ChildID, order []ChildID) []ChildID {
	targets := mapset.NewThreadUnsafeSet[ChildID]()
	switch s {
	case OneForOne:
		for _, id := range order {
			if id == failed {
				targets.Add(id)
				break
			}
		}
	case OneForAll:
		for _, id := range order {
			targets.Add(id)
		}
		if !targets.Contains(failed) {
			targets.Clear()
		}
	case RestForOne:
		seen := false
		for _, id := range order {
			if id == failed {
				seen = true
			}
			if seen {
				targets.Add(id)
			}
		}
	}

	if targets.IsEmpty() {
		return nil
	}
	out := make([]ChildID, 0, targets.Cardinality())
	for _, id := range order {
		if targets.Contains(id) {
			out = append(out, id)
		}
	}
	return out
}
