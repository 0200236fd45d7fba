// SPDX-FileCopyrightText: Copyright 2025 Operandi Technologies
// SPDX-License-Identifier: Apache-2.0

// Package sdk locates a Docker-compatible engine socket and builds a Docker
// SDK client bound to it.
package sdk

import (
	"context"
	"fmt"

	"github.com/docker/docker/client"
	"github.com/stacklok/toolhive-core/env"

	"github.com/operanditech/dockerator/pkg/container/runtime"
	"github.com/operanditech/dockerator/pkg/logger"
)

// Common socket paths
const (
	// PodmanSocketPath is the default Podman socket path
	PodmanSocketPath = "/var/run/podman/podman.sock"
	// PodmanXDGRuntimeSocketPath is the XDG runtime Podman socket path
	PodmanXDGRuntimeSocketPath = "podman/podman.sock"
	// DockerSocketPath is the default Docker socket path
	DockerSocketPath = "/var/run/docker.sock"
	// DockerDesktopMacSocketPath is the Docker Desktop socket path on macOS
	DockerDesktopMacSocketPath = ".docker/run/docker.sock"
	// RancherDesktopMacSocketPath is the Rancher Desktop socket path on macOS
	RancherDesktopMacSocketPath = ".rd/docker.sock"
)

// Environment variable names
const (
	// DockerSocketEnv is the environment variable for custom Docker socket path
	DockerSocketEnv = "DOCKERATOR_DOCKER_SOCKET"
	// PodmanSocketEnv is the environment variable for custom Podman socket path
	PodmanSocketEnv = "DOCKERATOR_PODMAN_SOCKET"
)

// Podman first, Docker as fallback.
var supportedSocketPaths = []runtime.Type{runtime.TypePodman, runtime.TypeDocker}

// NewDockerClient discovers an engine socket, connects to it and verifies the
// engine answers a ping. Each supported runtime is tried in turn.
func NewDockerClient(ctx context.Context) (*client.Client, runtime.Type, error) {
	return NewDockerClientWithEnv(ctx, &env.OSReader{})
}

// NewDockerClientWithEnv is NewDockerClient with an injectable environment.
func NewDockerClientWithEnv(ctx context.Context, envReader env.Reader) (*client.Client, runtime.Type, error) {
	var lastErr error

	for _, rt := range supportedSocketPaths {
		socketPath, runtimeType, err := findPlatformContainerSocket(envReader, rt)
		if err != nil {
			logger.Debugf("Failed to find socket for %s: %v", rt, err)
			lastErr = err
			continue
		}

		c, err := NewDockerClientWithSocketPath(ctx, socketPath, runtimeType)
		if err != nil {
			logger.Debugf("Failed to create client for %s: %v", rt, err)
			lastErr = err
			continue
		}

		return c, runtimeType, nil
	}

	if lastErr != nil {
		return nil, "", fmt.Errorf("no supported container runtime available: %w", lastErr)
	}
	return nil, "", runtime.ErrRuntimeNotFound
}

// NewDockerClientWithSocketPath creates a client for a specific socket path and pings it.
func NewDockerClientWithSocketPath(ctx context.Context, socketPath string, runtimeType runtime.Type) (*client.Client, error) {
	_, opts := newPlatformClient(socketPath)

	dockerClient, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, runtime.NewContainerError(err, "", fmt.Sprintf("failed to create client: %v", err))
	}

	if _, err := dockerClient.Ping(ctx); err != nil {
		_ = dockerClient.Close()
		return nil, runtime.NewContainerError(runtime.ErrRuntimeNotFound, "",
			fmt.Sprintf("failed to ping %s: %v", runtimeType, err))
	}
	logger.Debugf("Successfully connected to %s runtime", runtimeType)

	return dockerClient, nil
}
