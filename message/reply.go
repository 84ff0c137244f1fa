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
	"fmt"
	"reflect"

	"github.com/hivekit/hive/errors"
)

// UnwrapAs extracts the payload of a reply envelope as T. The payload's
// dynamic type is verified before unwrapping: a mismatch fails with
// errors.ErrReplyTypeMismatch instead of a blind assertion. Callers on the
// receiving end of a request/reply exchange should always go through this
// helper rather than asserting the payload themselves.
func UnwrapAs[T any](env *Envelope) (T, error) {
	var zero T
	if env == nil {
		return zero, fmt.Errorf("%w: nil envelope", errors.ErrReplyTypeMismatch)
	}
	payload, ok := env.Payload().(T)
	if !ok {
		return zero, fmt.Errorf("%w: want %v, got %v",
			errors.ErrReplyTypeMismatch,
			reflect.TypeOf((*T)(nil)).Elem(),
			reflect.TypeOf(env.Payload()))
	}
	return payload, nil
}
