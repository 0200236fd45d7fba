// SPDX-FileCopyrightText: Copyright 2025 Operandi Technologies
// SPDX-License-Identifier: Apache-2.0

// Package lifecycle runs a single container from image provisioning through
// removal, optionally waiting for it to exit.
package lifecycle

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/docker/docker/pkg/stdcopy"

	"github.com/operanditech/dockerator/pkg/container/images"
	"github.com/operanditech/dockerator/pkg/container/runtime"
	"github.com/operanditech/dockerator/pkg/logger"
)

// State is a step in the controller lifecycle.
type State string

// Controller states, in order.
const (
	StateUnprovisioned State = "unprovisioned"
	StateProvisioned   State = "provisioned"
	StateCreated       State = "created"
	StateRunning       State = "running"
	StateAwaitingExit  State = "awaiting-exit"
	StateRemoved       State = "removed"
)

// StartOptions configure Start.
type StartOptions struct {
	// UntilExit waits for the container to exit and removes it afterwards.
	// Ignored for detached runs.
	UntilExit bool
}

// Controller owns one container for the duration of one run. It is not
// reusable: construct a new Controller for every run.
type Controller struct {
	engine  runtime.Engine
	cfg     Config
	output  Output
	watcher *runtime.ExitWatcher

	mu          sync.Mutex
	state       State
	started     bool
	containerID string
}

// Option configures a Controller.
type Option func(*controllerOptions)

type controllerOptions struct {
	watcherOpts []runtime.WatcherOption
}

// WithWatcherOptions passes options to the exit watcher used by Start.
func WithWatcherOptions(opts ...runtime.WatcherOption) Option {
	return func(o *controllerOptions) {
		o.watcherOpts = append(o.watcherOpts, opts...)
	}
}

// New creates a Controller for cfg backed by engine.
func New(engine runtime.Engine, cfg Config, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o controllerOptions
	for _, opt := range opts {
		opt(&o)
	}
	watcherOpts := append([]runtime.WatcherOption{runtime.WithStrategy(cfg.Strategy)}, o.watcherOpts...)

	return &Controller{
		engine:  engine,
		cfg:     cfg,
		output:  cfg.output(),
		watcher: runtime.NewExitWatcher(engine, watcherOpts...),
		state:   StateUnprovisioned,
	}, nil
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ContainerID returns the ID of the created container, or "".
func (c *Controller) ContainerID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.containerID
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

// Setup makes sure the configured image exists locally, building it from
// src when given and the image is missing.
func (c *Controller) Setup(ctx context.Context, src *runtime.BuildSource) error {
	c.mu.Lock()
	consumed := c.started
	c.mu.Unlock()
	if consumed {
		return runtime.ErrControllerConsumed
	}

	var out io.Writer
	if c.output.CanWrite() {
		out = c.output.Stdout()
	}
	p := images.NewProvisioner(c.engine, images.WithOutput(out), images.WithProgress(c.cfg.Progress))
	if err := p.EnsureImage(ctx, c.cfg.Image, src); err != nil {
		return err
	}

	c.setState(StateProvisioned)
	return nil
}

// Start creates and starts the container. With UntilExit it waits for the
// container to exit, removes it, and returns an error wrapping
// runtime.ErrContainerExited when the exit was not clean. If ctx ends while
// waiting, the container is left running and ctx.Err() is returned.
func (c *Controller) Start(ctx context.Context, opts StartOptions) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return runtime.ErrControllerConsumed
	}
	c.started = true
	c.mu.Unlock()

	params, err := c.cfg.CreateParams()
	if err != nil {
		return err
	}

	id, err := c.engine.CreateContainer(ctx, params)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.containerID = id
	c.state = StateCreated
	c.mu.Unlock()

	untilExit := opts.UntilExit && !c.cfg.Detach

	var (
		completion *runtime.Completion
		ended      chan struct{}
		stream     io.ReadCloser
	)
	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()

	if !c.cfg.Detach {
		stream, err = c.engine.AttachContainer(ctx, id)
		if err != nil {
			return err
		}

		ended = make(chan struct{})
		if untilExit {
			// armed before start so an immediate exit cannot be missed
			completion = c.watcher.Arm(watchCtx, runtime.WatchTarget{
				ContainerID:    id,
				Ended:          ended,
				Stream:         stream,
				OutputAttached: c.output.CanWrite(),
			})
		}
		go c.pump(stream, ended, params.Config.Tty)
	}

	if err := c.engine.StartContainer(ctx, id); err != nil {
		if stream != nil {
			_ = stream.Close()
		}
		return err
	}
	c.setState(StateRunning)
	logger.Debugw("container running", "container", id, "image", c.cfg.Image)

	if !untilExit {
		return nil
	}

	c.setState(StateAwaitingExit)
	runErr := completion.Wait(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(runErr, ctxErr) {
		_ = stream.Close()
		return ctxErr
	}

	// flush remaining output before reporting
	<-ended

	cleanupErr := c.teardown(context.WithoutCancel(ctx), id)
	if runErr != nil {
		return errors.Join(runErr, cleanupErr)
	}
	return cleanupErr
}

// Stop stops and removes the container. It fails with runtime.ErrNoContainer
// if no container was created. Stopping an already stopped or removed
// container succeeds.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	id, state := c.containerID, c.state
	c.mu.Unlock()

	if id == "" {
		return runtime.ErrNoContainer
	}
	if state == StateRemoved {
		logger.Debugw("container already removed", "container", id)
		return nil
	}
	return c.teardown(ctx, id)
}

func (c *Controller) teardown(ctx context.Context, id string) error {
	if err := c.engine.StopContainer(ctx, id, c.cfg.StopTimeout); err != nil {
		if !runtime.IsIdempotentConflict(err) {
			return err
		}
		logger.Debugw("stop had nothing to do", "container", id, "error", err)
	}
	if err := c.engine.RemoveContainer(ctx, id); err != nil {
		if !runtime.IsIdempotentConflict(err) {
			return err
		}
		logger.Debugw("remove had nothing to do", "container", id, "error", err)
	}

	c.setState(StateRemoved)
	return nil
}

// pump forwards the attach stream to the output sink, or drains it when
// there is none, then signals the end of the stream.
func (c *Controller) pump(stream io.ReadCloser, ended chan<- struct{}, tty bool) {
	defer close(ended)
	defer func() {
		_ = stream.Close()
	}()

	var err error
	switch {
	case !c.output.CanWrite():
		_, err = io.Copy(io.Discard, stream)
	case tty:
		_, err = io.Copy(c.output.Stdout(), stream)
	default:
		_, err = stdcopy.StdCopy(c.output.Stdout(), c.output.Stderr(), stream)
	}
	if err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, io.ErrClosedPipe) {
		logger.Debugf("Output stream ended with error: %v", err)
	}

	c.output.close()
}
