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
	"math"
	"time"

	"github.com/hivekit/hive/errors"
)

const (
	// DefaultMaxRestarts is the restart budget per window when unset.
	DefaultMaxRestarts = 5
	// DefaultRestartWindow is the sliding window duration when unset.
	DefaultRestartWindow = time.Minute
	// DefaultBaseDelay is the initial restart delay when unset.
	DefaultBaseDelay = 100 * time.Millisecond
	// DefaultMaxDelay caps the restart delay when unset.
	DefaultMaxDelay = time.Minute
	// DefaultMultiplier doubles the delay on each restart within the window.
	DefaultMultiplier = 2.0

	// exponent cap keeps the delay computation from overflowing
	maxExponent = 10
)

// BackoffConfig tunes the restart budget and delay curve of a child.
//
// A Multiplier of 1 yields a fixed delay of BaseDelay. A Multiplier greater
// than 1 yields min(BaseDelay * Multiplier^n, MaxDelay) where n is the number
// of restarts still inside the sliding window.
type BackoffConfig struct {
	// MaxRestarts is the number of restarts tolerated per window before the
	// child is parked as permanently failed.
	MaxRestarts int
	// Window is the sliding window over which restarts are counted.
	Window time.Duration
	// BaseDelay is the delay before the first restart attempt.
	BaseDelay time.Duration
	// MaxDelay caps the computed delay.
	MaxDelay time.Duration
	// Multiplier grows the delay per restart. Values below 1 are invalid.
	Multiplier float64
}

// DefaultBackoffConfig returns the node-level defaults.
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		MaxRestarts: DefaultMaxRestarts,
		Window:      DefaultRestartWindow,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
		Multiplier:  DefaultMultiplier,
	}
}

// Validate reports whether the configuration is usable.
func (c BackoffConfig) Validate() error {
	if c.MaxRestarts <= 0 {
		return fmt.Errorf("%w: max restarts must be positive", errors.ErrRestartLimitExceeded)
	}
	if c.Window <= 0 {
		return fmt.Errorf("%w: restart window must be positive", errors.ErrInvalidTimeout)
	}
	if c.BaseDelay < 0 || c.MaxDelay < 0 {
		return fmt.Errorf("%w: delays must not be negative", errors.ErrInvalidTimeout)
	}
	if c.Multiplier < 1 {
		return fmt.Errorf("%w: multiplier must be at least 1", errors.ErrInvalidTimeout)
	}
	return nil
}

// Backoff tracks restart timestamps in a sliding window and computes the
// delay before the next start attempt. The window decays on its own: once
// enough real time passes without failures the count drops back toward zero,
// so a child is never locked out permanently by old history.
//
// Backoff is not safe for concurrent use. Each instance is exclusively owned
// by the supervisor node that mutates it.
type Backoff struct {
	config  BackoffConfig
	history []time.Time
	clock   func() time.Time
}

// NewBackoff creates a backoff tracker with the given configuration.
func NewBackoff(config BackoffConfig) *Backoff {
	return &Backoff{
		config: config,
		clock:  time.Now,
	}
}

// ShouldRestart reports whether the restart budget still allows another
// attempt. Expired entries are pruned first.
func (b *Backoff) ShouldRestart() bool {
	b.prune()
	return len(b.history) < b.config.MaxRestarts
}

// Record appends a restart at the current time and returns the delay to wait
// before the next start attempt.
func (b *Backoff) Record() time.Duration {
	b.prune()
	b.history = append(b.history, b.clock())
	return b.delay()
}

// Count returns the number of restarts still inside the window.
func (b *Backoff) Count() int {
	b.prune()
	return len(b.history)
}

// Reset clears the restart history. Manual intervention only; the window
// decays on its own during normal operation.
func (b *Backoff) Reset() {
	b.history = b.history[:0]
}

func (b *Backoff) delay() time.Duration {
	n := len(b.history) - 1
	if n < 0 {
		n = 0
	}
	if n > maxExponent {
		n = maxExponent
	}
	delay := time.Duration(float64(b.config.BaseDelay) * math.Pow(b.config.Multiplier, float64(n)))
	if delay > b.config.MaxDelay {
		delay = b.config.MaxDelay
	}
	return delay
}

// prune drops timestamps older than the window. history stays ordered oldest
// first, so the first retained index bounds the cut.
func (b *Backoff) prune() {
	cutoff := b.clock().Add(-b.config.Window)
	keep := 0
	for keep < len(b.history) && !b.history[keep].After(cutoff) {
		keep++
	}
	if keep > 0 {
		b.history = append(b.history[:0], b.history[keep:]...)
	}
}
