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

import "context"

// Child is the contract a supervised process implements. Implementations own
// their internal goroutines: Start launches them, Stop winds them down.
//
// Start must honor the context deadline the supervisor derives from the
// spec's StartTimeout. Stop must honor the deadline derived from the spec's
// ShutdownPolicy. HealthCheck is invoked by the health monitor and must be
// cheap relative to the check interval.
type Child interface {
	// Start brings the child up. A non-nil error marks the child Failed.
	Start(ctx context.Context) error
	// Stop winds the child down.
	Stop(ctx context.Context) error
	// HealthCheck probes the child.
	HealthCheck(ctx context.Context) Health
}
