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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrategies(t *testing.T) {
	a, b, c := NewChildID(), NewChildID(), NewChildID()
	order := []ChildID{a, b, c}

	t.Run("OneForOne restarts only the failed child", func(t *testing.T) {
		targets := OneForOne.RestartTargets(b, order)
		assert.Equal(t, []ChildID{b}, targets)
	})

	t.Run("OneForAll restarts every child in start order", func(t *testing.T) {
		targets := OneForAll.RestartTargets(b, order)
		assert.Equal(t, []ChildID{a, b, c}, targets)
	})

	t.Run("RestForOne restarts the failed child and later siblings", func(t *testing.T) {
		targets := RestForOne.RestartTargets(b, order)
		assert.Equal(t, []ChildID{b, c}, targets)

		targets = RestForOne.RestartTargets(a, order)
		assert.Equal(t, []ChildID{a, b, c}, targets)

		targets = RestForOne.RestartTargets(c, order)
		assert.Equal(t, []ChildID{c}, targets)
	})

	t.Run("Unknown id yields no targets", func(t *testing.T) {
		ghost := NewChildID()
		assert.Nil(t, OneForOne.RestartTargets(ghost, order))
		assert.Nil(t, OneForAll.RestartTargets(ghost, order))
		assert.Nil(t, RestForOne.RestartTargets(ghost, order))
	})

	t.Run("Strategies never mutate the order", func(t *testing.T) {
		before := append([]ChildID(nil), order...)
		_ = OneForAll.RestartTargets(b, order)
		assert.Equal(t, before, order)
	})
}
