// SPDX-FileCopyrightText: Copyright 2025 Operandi Technologies
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/operanditech/dockerator/pkg/logger"
)

// DefaultStopTimeout bounds the stop issued by the termination handler.
const DefaultStopTimeout = 30 * time.Second

// SignalSource delivers host signals. It matches the os/signal API.
type SignalSource interface {
	Notify(c chan<- os.Signal, sig ...os.Signal)
	Stop(c chan<- os.Signal)
}

type osSignals struct{}

func (osSignals) Notify(c chan<- os.Signal, sig ...os.Signal) { signal.Notify(c, sig...) }
func (osSignals) Stop(c chan<- os.Signal)                     { signal.Stop(c) }

// TerminationOption configures InstallTerminationHandler.
type TerminationOption func(*terminationConfig)

type terminationConfig struct {
	source  SignalSource
	exit    func(int)
	timeout time.Duration
}

// WithSignalSource replaces the process signal source.
func WithSignalSource(s SignalSource) TerminationOption {
	return func(c *terminationConfig) {
		c.source = s
	}
}

// WithExitFunc replaces os.Exit.
func WithExitFunc(fn func(int)) TerminationOption {
	return func(c *terminationConfig) {
		c.exit = fn
	}
}

// WithStopTimeout bounds how long the handler waits for Stop.
func WithStopTimeout(d time.Duration) TerminationOption {
	return func(c *terminationConfig) {
		c.timeout = d
	}
}

// InstallTerminationHandler stops the container and exits the process on the
// first SIGINT or SIGTERM. The exit code is 0 when the stop succeeded and 1
// otherwise. Each call registers a new handler. The returned function
// unregisters it.
func (c *Controller) InstallTerminationHandler(opts ...TerminationOption) func() {
	cfg := terminationConfig{
		source:  osSignals{},
		exit:    os.Exit,
		timeout: DefaultStopTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	sigCh := make(chan os.Signal, 1)
	done := make(chan struct{})
	cfg.source.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer cfg.source.Stop(sigCh)

		var sig os.Signal
		select {
		case <-done:
			return
		case sig = <-sigCh:
		}
		logger.Infow("received termination signal, stopping container", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.timeout)
		defer cancel()

		code := 0
		if err := c.Stop(ctx); err != nil {
			logger.Errorf("Failed to stop container: %v", err)
			code = 1
		}
		cfg.exit(code)
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}
