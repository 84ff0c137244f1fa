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

package errors

import "fmt"

// PanicError wraps a value recovered from a panicking actor or child so the
// supervision path can treat crashes as ordinary failures.
type PanicError struct {
	value any
	stack []byte
}

// NewPanicError creates a PanicError from a recovered value and the stack
// captured at the recovery site.
func NewPanicError(value any, stack []byte) *PanicError {
	return &PanicError{value: value, stack: stack}
}

// Value returns the recovered panic value.
func (e *PanicError) Value() any { return e.value }

// Stack returns the goroutine stack captured when the panic was recovered.
func (e *PanicError) Stack() []byte { return e.stack }

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}
