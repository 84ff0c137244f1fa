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
	"fmt"
	"strings"
	"time"

	"github.com/hivekit/hive/errors"
)

const (
	// DefaultStartTimeout bounds a child's Start when the spec leaves it unset.
	DefaultStartTimeout = 30 * time.Second
	// DefaultShutdownTimeout is the grace period used when the spec leaves
	// the shutdown policy unset.
	DefaultShutdownTimeout = 30 * time.Second
)

// ChildSpec describes how a supervisor constructs and manages one child. The
// spec is retained by the node and reused verbatim on every restart, so it
// must remain immutable after submission.
type ChildSpec struct {
	// Name identifies the child within its node. Must be unique there.
	Name string
	// Factory constructs a fresh child instance. Invoked on initial start
	// and on every restart.
	Factory func() Child
	// Restart controls whether the child is restarted after termination.
	// Zero value is RestartPermanent.
	Restart RestartPolicy
	// Shutdown controls how the child is torn down. Zero value is graceful
	// with DefaultShutdownTimeout.
	Shutdown ShutdownPolicy
	// StartTimeout bounds each Start attempt. Zero means DefaultStartTimeout.
	StartTimeout time.Duration
	// Backoff overrides the node's restart budget for this child.
	Backoff *BackoffConfig
}

// Validate reports whether the spec can be submitted to a node.
func (s ChildSpec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: child spec requires a name", errors.ErrChildStartFailed)
	}
	if s.Factory == nil {
		return fmt.Errorf("%w: child spec %q requires a factory", errors.ErrChildStartFailed, s.Name)
	}
	if s.Backoff != nil {
		if err := s.Backoff.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// startTimeout returns the effective start timeout.
func (s ChildSpec) startTimeout() time.Duration {
	if s.StartTimeout <= 0 {
		return DefaultStartTimeout
	}
	return s.StartTimeout
}

// shutdownPolicy returns the effective shutdown policy.
func (s ChildSpec) shutdownPolicy() ShutdownPolicy {
	if s.Shutdown.kind == ShutdownGraceful && s.Shutdown.timeout <= 0 {
		return GracefulShutdown(DefaultShutdownTimeout)
	}
	return s.Shutdown
}
