// SPDX-FileCopyrightText: Copyright 2025 Operandi Technologies
// SPDX-License-Identifier: Apache-2.0

// Package runtime defines the engine facade consumed by the container lifecycle
// controller, the error taxonomy shared by all engine implementations, and the
// exit watcher used to detect container termination.
package runtime

//go:generate mockgen -destination=mocks/mock_engine.go -package=mocks -source=types.go Engine

import (
	"context"
	"io"

	"github.com/docker/docker/api/types/container"
)

// Type represents the type of container runtime
type Type string

const (
	// TypePodman represents the Podman runtime
	TypePodman Type = "podman"
	// TypeDocker represents the Docker runtime
	TypeDocker Type = "docker"
)

// Container status values reported by the engine.
const (
	StatusCreated    = "created"
	StatusRunning    = "running"
	StatusPaused     = "paused"
	StatusRestarting = "restarting"
	StatusRemoving   = "removing"
	StatusExited     = "exited"
	StatusDead       = "dead"
)

// ContainerState is the subset of container inspection data needed to
// classify termination.
type ContainerState struct {
	// Status is the engine-reported status (e.g. "running", "exited")
	Status string
	// Running is true while the container process is alive
	Running bool
	// ExitCode is the exit code of the container process
	ExitCode int
	// Error is the engine-reported error message, if any
	Error string
}

// Succeeded reports whether the state represents a clean exit.
func (s ContainerState) Succeeded() bool {
	return s.Status == StatusExited && s.ExitCode == 0
}

// BuildSource describes a local build context for an image.
type BuildSource struct {
	// Context is the directory the build runs in
	Context string
	// Files are the paths, relative to Context, sent to the engine as the
	// build context. Directories are included recursively.
	Files []string
	// Dockerfile is the name of the Dockerfile inside the build context.
	// Defaults to "Dockerfile".
	Dockerfile string
}

// DockerfileName returns the configured Dockerfile or the default name.
func (b BuildSource) DockerfileName() string {
	if b.Dockerfile == "" {
		return "Dockerfile"
	}
	return b.Dockerfile
}

// ProgressEvent is a single decoded message from a pull or build progress stream.
type ProgressEvent struct {
	// ID is the layer or step identifier, if any
	ID string
	// Status is the human readable status line
	Status string
	// Progress is the rendered progress bar, if any
	Progress string
	// Stream carries build output
	Stream string
}

// CreateParams are the parameters used to create a container.
type CreateParams struct {
	Config     *container.Config
	HostConfig *container.HostConfig
}

// Engine is the container engine API consumed by this module.
// Implementations classify their failures using the sentinel errors in this
// package so callers never depend on engine specific error types.
type Engine interface {
	// InspectImage checks that an image exists locally. It returns an error
	// wrapping ErrImageNotFound if the image is absent.
	InspectImage(ctx context.Context, image string) error

	// PullImage starts pulling an image and returns its progress stream.
	PullImage(ctx context.Context, image string) (io.ReadCloser, error)

	// BuildImage starts building an image tagged with tag from src and
	// returns its progress stream.
	BuildImage(ctx context.Context, src BuildSource, tag string) (io.ReadCloser, error)

	// FollowProgress drives a progress stream to completion, invoking onEvent
	// for every decoded message. It fails if the stream reports an error.
	FollowProgress(ctx context.Context, stream io.Reader, onEvent func(ProgressEvent)) error

	// CreateContainer creates a container without starting it and returns its ID.
	CreateContainer(ctx context.Context, params CreateParams) (string, error)

	// AttachContainer attaches to the combined stdout/stderr stream of a container.
	AttachContainer(ctx context.Context, containerID string) (io.ReadCloser, error)

	// StartContainer starts a created container.
	StartContainer(ctx context.Context, containerID string) error

	// StopContainer stops a container. A nil timeout uses the engine default.
	StopContainer(ctx context.Context, containerID string, timeout *int) error

	// RemoveContainer removes a container.
	RemoveContainer(ctx context.Context, containerID string) error

	// InspectContainer returns the current state of a container.
	InspectContainer(ctx context.Context, containerID string) (ContainerState, error)
}
