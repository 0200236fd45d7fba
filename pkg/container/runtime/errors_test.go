// SPDX-FileCopyrightText: Copyright 2025 Operandi Technologies
// SPDX-License-Identifier: Apache-2.0

package runtime

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/toolhive-core/httperr"
)

func TestContainerError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ContainerError
		expected string
	}{
		{
			name: "message and container ID",
			err: &ContainerError{
				Err:         ErrAlreadyStopped,
				ContainerID: "abc123",
				Message:     "stop returned 304",
			},
			expected: "container already stopped or being removed: stop returned 304 (container: abc123)",
		},
		{
			name: "message without container ID",
			err: &ContainerError{
				Err:     ErrImageNotFound,
				Message: "no such image: alpine:3",
			},
			expected: "image not found: no such image: alpine:3",
		},
		{
			name: "container ID without message",
			err: &ContainerError{
				Err:         ErrContainerNotFound,
				ContainerID: "def456",
			},
			expected: "container not found (container: def456)",
		},
		{
			name:     "bare error only",
			err:      &ContainerError{Err: ErrNoContainer},
			expected: "cannot stop container before starting it",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestContainerError_Unwrap(t *testing.T) {
	t.Parallel()

	ce := NewContainerError(ErrContainerNotFound, "cid", "gone")

	require.NotNil(t, ce)
	assert.Equal(t, ErrContainerNotFound, ce.Unwrap())
	assert.True(t, errors.Is(ce, ErrContainerNotFound))
	assert.False(t, errors.Is(ce, ErrImageNotFound))
	assert.Equal(t, http.StatusNotFound, httperr.Code(ce))
}

func TestExecutionError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		state          ContainerState
		outputAttached bool
		wantMessage    string
	}{
		{
			name:        "engine message wins",
			state:       ContainerState{Status: StatusExited, ExitCode: 127, Error: "exec: not found"},
			wantMessage: "exec: not found",
		},
		{
			name:           "fallback with output attached",
			state:          ContainerState{Status: StatusExited, ExitCode: 1},
			outputAttached: true,
			wantMessage:    "Execution error.",
		},
		{
			name:        "fallback with output suppressed",
			state:       ContainerState{Status: StatusExited, ExitCode: 2},
			wantMessage: "Execution error. If you need more details, enable container stdout.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := NewExecutionError("c1", tt.state, tt.outputAttached)
			assert.Equal(t, tt.wantMessage, err.Error())
			assert.ErrorIs(t, err, ErrContainerExited)

			code, ok := ExitCode(fmt.Errorf("run failed: %w", err))
			require.True(t, ok)
			assert.Equal(t, tt.state.ExitCode, code)
		})
	}
}

func TestExitCode_NotExecutionError(t *testing.T) {
	t.Parallel()

	_, ok := ExitCode(errors.New("boom"))
	assert.False(t, ok)

	_, ok = ExitCode(nil)
	assert.False(t, ok)
}

func TestErrorPredicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		err          error
		notFound     bool
		imageMissing bool
		idempotent   bool
		precondition bool
	}{
		{"container not found", NewContainerError(ErrContainerNotFound, "c", ""), true, false, true, false},
		{"image not found", fmt.Errorf("inspect: %w", ErrImageNotFound), false, true, false, false},
		{"already stopped", NewContainerError(ErrAlreadyStopped, "c", "304"), false, false, true, false},
		{"no container", ErrNoContainer, false, false, false, true},
		{"consumed", fmt.Errorf("start: %w", ErrControllerConsumed), false, false, false, true},
		{"other", errors.New("connection refused"), false, false, false, false},
		{"nil", nil, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.notFound, IsContainerNotFound(tt.err))
			assert.Equal(t, tt.imageMissing, IsImageNotFound(tt.err))
			assert.Equal(t, tt.idempotent, IsIdempotentConflict(tt.err))
			assert.Equal(t, tt.precondition, IsPrecondition(tt.err))
		})
	}
}

func TestStrategyResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		strategy Strategy
		goos     string
		want     Strategy
	}{
		{StrategyAuto, "linux", StrategyEvent},
		{StrategyAuto, "darwin", StrategyEvent},
		{StrategyAuto, "windows", StrategyPolling},
		{StrategyEvent, "windows", StrategyEvent},
		{StrategyPolling, "linux", StrategyPolling},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q on %s", tt.strategy, tt.goos), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.strategy.resolveFor(tt.goos))
		})
	}
}

func TestCompletion_SettlesOnce(t *testing.T) {
	t.Parallel()

	c := newCompletion()
	assert.Nil(t, c.Err())

	const contenders = 64
	wins := make(chan bool, contenders)
	start := make(chan struct{})
	for i := range contenders {
		go func() {
			<-start
			if i%2 == 0 {
				wins <- c.settle(nil)
			} else {
				wins <- c.settle(fmt.Errorf("tick %d", i))
			}
		}()
	}
	close(start)

	won := 0
	for range contenders {
		if <-wins {
			won++
		}
	}

	assert.Equal(t, 1, won)
	<-c.Done()
	first := c.Err()
	assert.False(t, c.settle(errors.New("late")))
	assert.Equal(t, first, c.Err())
}
