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

// Package system ties the runtime together: it spawns actors with their
// mailboxes and processing loops, runs the router that moves published
// envelopes from the bus into mailboxes, and owns startup and shutdown of
// the whole assembly.
package system

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/flowchartsman/retry"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/hivekit/hive/address"
	"github.com/hivekit/hive/bus"
	"github.com/hivekit/hive/errors"
	"github.com/hivekit/hive/internal/xsync"
	"github.com/hivekit/hive/log"
	"github.com/hivekit/hive/mailbox"
	"github.com/hivekit/hive/message"
	"github.com/hivekit/hive/registry"
)

// system lifecycle states
const (
	stateIdle int32 = iota
	stateRunning
	stateShuttingDown
	stateStopped
)

// router redelivery tuning for mailboxes caught mid-replacement
const (
	routerRetries    = 3
	routerRetryDelay = 5 * time.Millisecond
	routerRetryMax   = 50 * time.Millisecond
)

// System is the in-process actor runtime. The registry and the bus are
// created once, handed by reference to everything that needs them, and torn
// down exactly once at shutdown.
type System struct {
	name     string
	logger   log.Logger
	registry *registry.Registry
	broker   *bus.Broker

	state       *atomic.Int32
	actors      *xsync.Map[string, *actorRunner]
	dead        *deadLetters
	capacity    int
	routerSub   *bus.Subscription
	routerDone  chan struct{}
	shutdownTTL time.Duration
}

// Option configures a System.
type Option func(*System)

// WithLogger sets the system logger.
func WithLogger(logger log.Logger) Option {
	return func(s *System) {
		s.logger = logger
	}
}

// WithRegistry injects a registry instead of the system creating its own.
func WithRegistry(reg *registry.Registry) Option {
	return func(s *System) {
		s.registry = reg
	}
}

// WithBroker injects a broker instead of the system creating its own.
func WithBroker(broker *bus.Broker) Option {
	return func(s *System) {
		s.broker = broker
	}
}

// WithMailboxCapacity bounds every spawned actor's mailbox, enabling
// backpressure on senders. Zero keeps mailboxes unbounded.
func WithMailboxCapacity(capacity int) Option {
	return func(s *System) {
		s.capacity = capacity
	}
}

// WithDeadLetterCapacity caps the dead-letter buffer.
func WithDeadLetterCapacity(capacity int) Option {
	return func(s *System) {
		s.dead = newDeadLetters(capacity)
	}
}

// WithShutdownTimeout bounds Shutdown when the caller's context carries no
// deadline of its own.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(s *System) {
		s.shutdownTTL = timeout
	}
}

// New creates a stopped system. Call Start before spawning.
func New(name string, opts ...Option) *System {
	s := &System{
		name:        name,
		logger:      log.DefaultLogger,
		state:       atomic.NewInt32(stateIdle),
		actors:      xsync.NewMap[string, *actorRunner](),
		dead:        newDeadLetters(0),
		routerDone:  make(chan struct{}),
		shutdownTTL: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = registry.New()
	}
	if s.broker == nil {
		s.broker = bus.New(bus.WithLogger(s.logger))
	}
	return s
}

// Name returns the system name.
func (s *System) Name() string {
	return s.name
}

// Registry exposes the address registry.
func (s *System) Registry() *registry.Registry {
	return s.registry
}

// Broker exposes the message bus.
func (s *System) Broker() *bus.Broker {
	return s.broker
}

// Running reports whether the system accepts spawns and messages.
func (s *System) Running() bool {
	return s.state.Load() == stateRunning
}

// Start subscribes the router to the bus and launches its loop. Idempotent
// on a started system; a stopped system cannot be restarted.
func (s *System) Start(ctx context.Context) error {
	if !s.state.CompareAndSwap(stateIdle, stateRunning) {
		if s.state.Load() == stateRunning {
			return nil
		}
		return errors.ErrSystemNotRunning
	}
	s.routerSub = s.broker.Subscribe()
	go s.route()
	s.logger.Infof("actor system=%s started", s.name)
	return nil
}

// Spawn creates a named actor: mailbox, registry entry and processing loop.
func (s *System) Spawn(name string, actor Actor) (*address.Address, error) {
	return s.spawn(address.Named(name), actor)
}

// SpawnAnonymous creates an actor under a generated address.
func (s *System) SpawnAnonymous(actor Actor) (*address.Address, error) {
	return s.spawn(address.Anonymous(), actor)
}

// SpawnPool creates size actors as members of the named pool. The factory is
// invoked once per member. Partially-created pools are torn down on failure.
func (s *System) SpawnPool(pool string, size int, factory func(member int) Actor) ([]*address.Address, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: pool size must be positive", errors.ErrInvalidAddress)
	}
	addrs := make([]*address.Address, 0, size)
	for i := 0; i < size; i++ {
		addr, err := s.spawn(address.PoolMember(pool, fmt.Sprintf("%s-%d", pool, i)), factory(i))
		if err != nil {
			for _, created := range addrs {
				_ = s.Kill(context.Background(), created)
			}
			return nil, err
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

func (s *System) spawn(addr *address.Address, actor Actor) (*address.Address, error) {
	if !s.Running() {
		return nil, errors.ErrSystemNotRunning
	}
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	if s.registry.Exists(addr) {
		return nil, fmt.Errorf("%w: %s", errors.ErrActorAlreadyExists, addr)
	}

	var mb mailbox.Mailbox
	if s.capacity > 0 {
		mb = mailbox.NewBounded(s.capacity)
	} else {
		mb = mailbox.NewUnbounded()
	}

	runner := newActorRunner(s, addr, actor, mb)
	if err := s.registry.Register(addr, mb); err != nil {
		return nil, err
	}
	s.actors.Set(addr.String(), runner)
	go runner.run()
	return addr, nil
}

// Kill stops one actor: the registry entry goes first so no new envelopes
// route to it, then the mailbox drains and the loop exits.
func (s *System) Kill(ctx context.Context, addr *address.Address) error {
	runner, ok := s.actors.Take(addr.String())
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrAddressNotFound, addr)
	}
	if err := s.registry.Unregister(addr); err != nil && !stderrors.Is(err, errors.ErrAddressNotFound) {
		return err
	}
	return runner.stop(ctx)
}

// Publish routes a prepared envelope through the bus.
func (s *System) Publish(env *message.Envelope) error {
	if !s.Running() {
		return errors.ErrSystemNotRunning
	}
	return s.broker.Publish(env)
}

// Tell sends a fire-and-forget payload to the given address.
func (s *System) Tell(ctx context.Context, to *address.Address, payload any) error {
	env := message.New(payload).WithRecipient(to)
	return s.Publish(env)
}

// Ask sends the payload to the given address and waits for the correlated
// reply. A timeout is a normal outcome and yields (nil, nil).
func (s *System) Ask(ctx context.Context, to *address.Address, payload any, timeout time.Duration) (*message.Envelope, error) {
	if !s.Running() {
		return nil, errors.ErrSystemNotRunning
	}
	env := message.New(payload).WithRecipient(to)
	return s.broker.PublishRequest(ctx, env, timeout)
}

// PoolTell sends the payload to one member of the named pool selected by the
// given strategy.
func (s *System) PoolTell(ctx context.Context, pool string, strategy registry.PoolStrategy, payload any) error {
	member, err := s.registry.PoolMember(pool, strategy)
	if err != nil {
		return err
	}
	return s.Tell(ctx, member, payload)
}

// DeadLetters returns a snapshot of the recent undeliverable envelopes.
func (s *System) DeadLetters() []*DeadLetter {
	return s.dead.snapshot()
}

// DeadLetterCount returns the lifetime number of dead-lettered envelopes.
func (s *System) DeadLetterCount() uint64 {
	return s.dead.count()
}

// ActorCount returns the number of live actors.
func (s *System) ActorCount() int {
	return s.actors.Len()
}

// Shutdown stops the runtime: the router unsubscribes and drains, every
// actor's mailbox is disposed and drained concurrently, then the bus and the
// registry are torn down. Idempotent.
func (s *System) Shutdown(ctx context.Context) error {
	if !s.state.CompareAndSwap(stateRunning, stateShuttingDown) {
		return nil
	}
	s.logger.Infof("actor system=%s shutting down", s.name)

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.shutdownTTL)
		defer cancel()
	}

	// no new envelopes enter the router; queued ones still drain
	s.broker.Unsubscribe(s.routerSub)
	select {
	case <-s.routerDone:
	case <-ctx.Done():
	}

	eg, egCtx := errgroup.WithContext(ctx)
	s.actors.Range(func(key string, runner *actorRunner) {
		eg.Go(func() error {
			if err := s.registry.Unregister(runner.addr); err != nil && !stderrors.Is(err, errors.ErrAddressNotFound) {
				return err
			}
			return runner.stop(egCtx)
		})
	})
	err := eg.Wait()

	s.actors.Reset()
	s.broker.Close()
	s.registry.Reset()
	s.state.Store(stateStopped)
	s.logger.Infof("actor system=%s stopped", s.name)
	return err
}

// route is the router loop: one long-lived goroutine that subscribes once
// and forwards every published envelope into the recipient's mailbox.
// Delivery failures never stop the loop.
func (s *System) route() {
	defer close(s.routerDone)
	for {
		env, ok := s.routerSub.Next()
		if !ok {
			return
		}
		s.deliver(env)
	}
}

// deliver resolves the recipient and enqueues the envelope. Unknown
// addresses dead-letter immediately; a closed mailbox is retried briefly in
// case the address is being re-registered, then dead-lettered. Expired
// envelopes are dead-lettered without resolution.
func (s *System) deliver(env *message.Envelope) {
	if env.Expired() {
		s.discard(env, "ttl expired")
		return
	}

	recipient := env.Recipient()
	if _, err := s.registry.Resolve(recipient); err != nil {
		s.discard(env, fmt.Sprintf("unknown recipient %s", recipient))
		return
	}

	retrier := retry.NewRetrier(routerRetries, routerRetryDelay, routerRetryMax)
	err := retrier.Run(func() error {
		mb, rerr := s.registry.Resolve(recipient)
		if rerr != nil {
			return retry.Stop(rerr)
		}
		return mb.Enqueue(env)
	})
	if err != nil {
		s.discard(env, fmt.Sprintf("delivery to %s failed: %v", recipient, err))
	}
}

// discard records an undeliverable envelope. Dead-lettering is the
// documented policy for both unknown recipients and closed mailboxes; the
// event is logged and retained, never silently dropped.
func (s *System) discard(env *message.Envelope, reason string) {
	s.dead.record(env, reason)
	s.logger.Warnf("dead letter: %s", reason)
}
