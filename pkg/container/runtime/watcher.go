// SPDX-FileCopyrightText: Copyright 2025 Operandi Technologies
// SPDX-License-Identifier: Apache-2.0

package runtime

import (
	"context"
	"fmt"
	"io"
	goruntime "runtime"
	"sync"
	"sync/atomic"
	"time"

	"k8s.io/utils/clock"

	"github.com/operanditech/dockerator/pkg/logger"
)

// DefaultPollInterval is the cadence of the polling exit detector.
const DefaultPollInterval = time.Second

// Strategy selects how container termination is detected.
type Strategy string

const (
	// StrategyAuto picks StrategyPolling on platforms where the attach stream
	// does not reliably end with the container process, StrategyEvent elsewhere.
	StrategyAuto Strategy = ""
	// StrategyEvent waits for the attached output stream to end.
	StrategyEvent Strategy = "event"
	// StrategyPolling inspects the container on a fixed interval.
	StrategyPolling Strategy = "polling"
)

// Resolve maps StrategyAuto to a concrete strategy for the host platform.
func (s Strategy) Resolve() Strategy {
	return s.resolveFor(goruntime.GOOS)
}

func (s Strategy) resolveFor(goos string) Strategy {
	if s != StrategyAuto {
		return s
	}
	if goos == "windows" {
		return StrategyPolling
	}
	return StrategyEvent
}

// Completion is a single-settlement completion signal. The first call to
// settle wins; later calls are ignored.
type Completion struct {
	settled atomic.Bool
	done    chan struct{}
	err     error
}

func newCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

// settle records the outcome and reports whether this call won.
func (c *Completion) settle(err error) bool {
	if !c.settled.CompareAndSwap(false, true) {
		return false
	}
	c.err = err
	close(c.done)
	return true
}

// Done is closed once the completion has settled.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// Err returns the settled outcome. It is nil until Done is closed.
func (c *Completion) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Wait blocks until the completion settles or ctx is done.
func (c *Completion) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WatchTarget is the container and attach stream observed by an ExitWatcher.
type WatchTarget struct {
	// ContainerID is the container being watched
	ContainerID string
	// Ended is closed when the attached output stream reaches its end
	Ended <-chan struct{}
	// Stream is released once the polling detector settles
	Stream io.Closer
	// OutputAttached records whether output is forwarded to a sink, which
	// changes the fallback failure message
	OutputAttached bool
}

// ExitWatcher resolves a Completion exactly once when a container terminates.
type ExitWatcher struct {
	engine   Engine
	strategy Strategy
	clock    clock.WithTicker
	interval time.Duration
}

// WatcherOption configures an ExitWatcher.
type WatcherOption func(*ExitWatcher)

// WithStrategy forces a detection strategy.
func WithStrategy(s Strategy) WatcherOption {
	return func(w *ExitWatcher) {
		w.strategy = s
	}
}

// WithClock replaces the clock driving the polling detector.
func WithClock(c clock.WithTicker) WatcherOption {
	return func(w *ExitWatcher) {
		w.clock = c
	}
}

// WithPollInterval changes the polling cadence.
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *ExitWatcher) {
		w.interval = d
	}
}

// NewExitWatcher creates an exit watcher for the given engine.
func NewExitWatcher(engine Engine, opts ...WatcherOption) *ExitWatcher {
	w := &ExitWatcher{
		engine:   engine,
		strategy: StrategyAuto,
		clock:    clock.RealClock{},
		interval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Strategy returns the concrete strategy the watcher will use.
func (w *ExitWatcher) Strategy() Strategy {
	return w.strategy.Resolve()
}

// Arm starts observing target and returns its completion signal. It must be
// called before the container is started so an immediate exit is not missed.
// The detector goroutine exits when the completion settles or ctx is done.
func (w *ExitWatcher) Arm(ctx context.Context, target WatchTarget) *Completion {
	c := newCompletion()

	var d detector
	switch w.Strategy() {
	case StrategyPolling:
		d = &pollingDetector{
			engine:   w.engine,
			target:   target,
			clock:    w.clock,
			interval: w.interval,
		}
	default:
		d = &eventDetector{
			engine: w.engine,
			target: target,
		}
	}

	logger.Debugw("armed exit watcher", "container", target.ContainerID, "strategy", w.Strategy())
	go d.watch(ctx, c)
	return c
}

// detector is one termination detection strategy.
type detector interface {
	watch(ctx context.Context, c *Completion)
}

// classify maps a terminal container state to a completion outcome.
func classify(target WatchTarget, state ContainerState) error {
	if state.Succeeded() {
		return nil
	}
	return NewExecutionError(target.ContainerID, state, target.OutputAttached)
}

// eventDetector waits for the attach stream to end and inspects once.
type eventDetector struct {
	engine Engine
	target WatchTarget
}

func (d *eventDetector) watch(ctx context.Context, c *Completion) {
	select {
	case <-ctx.Done():
		c.settle(ctx.Err())
		return
	case <-d.target.Ended:
	}

	state, err := d.engine.InspectContainer(ctx, d.target.ContainerID)
	if err != nil {
		c.settle(NewContainerError(err, d.target.ContainerID, fmt.Sprintf("failed to inspect container: %v", err)))
		return
	}
	if c.settle(classify(d.target, state)) {
		logger.Debugw("container finished", "container", d.target.ContainerID,
			"status", state.Status, "exit_code", state.ExitCode)
	}
}

// pollingDetector inspects the container on every tick until it is no longer running.
type pollingDetector struct {
	engine   Engine
	target   WatchTarget
	clock    clock.WithTicker
	interval time.Duration

	releaseOnce sync.Once
}

func (d *pollingDetector) watch(ctx context.Context, c *Completion) {
	ticker := d.clock.NewTicker(d.interval)
	defer d.release(ticker)

	for {
		select {
		case <-ctx.Done():
			c.settle(ctx.Err())
			return
		case <-c.Done():
			return
		case <-ticker.C():
			state, err := d.engine.InspectContainer(ctx, d.target.ContainerID)
			if err != nil {
				c.settle(NewContainerError(err, d.target.ContainerID, fmt.Sprintf("failed to inspect container: %v", err)))
				return
			}

			// created covers the window between arming and the start call
			if state.Status == StatusRunning || state.Status == StatusCreated {
				continue
			}

			if c.settle(classify(d.target, state)) {
				logger.Debugw("container finished", "container", d.target.ContainerID,
					"status", state.Status, "exit_code", state.ExitCode)
			}
			return
		}
	}
}

// release stops the ticker and closes the stream exactly once.
func (d *pollingDetector) release(ticker clock.Ticker) {
	d.releaseOnce.Do(func() {
		ticker.Stop()
		if d.target.Stream == nil {
			return
		}
		if err := d.target.Stream.Close(); err != nil {
			logger.Debugf("Failed to close attach stream for %s: %v", d.target.ContainerID, err)
		}
	})
}
