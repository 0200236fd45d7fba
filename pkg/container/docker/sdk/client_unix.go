// SPDX-FileCopyrightText: Copyright 2025 Operandi Technologies
// SPDX-License-Identifier: Apache-2.0

//go:build !windows

package sdk

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/docker/docker/client"
	"github.com/stacklok/toolhive-core/env"

	"github.com/operanditech/dockerator/pkg/container/runtime"
	"github.com/operanditech/dockerator/pkg/logger"
)

// newPlatformClient creates a Docker client using Unix sockets
func newPlatformClient(socketPath string) (*http.Client, []client.Opt) {
	httpClient := &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", socketPath)
			},
		},
	}

	opts := []client.Opt{
		client.WithAPIVersionNegotiation(),
		client.WithHTTPClient(httpClient),
		client.WithHost("unix://" + socketPath),
	}

	return httpClient, opts
}

// findPlatformContainerSocket finds a container socket path on Unix systems
func findPlatformContainerSocket(envReader env.Reader, rt runtime.Type) (string, runtime.Type, error) {
	if customSocketPath := envReader.Getenv(PodmanSocketEnv); customSocketPath != "" {
		logger.Debugf("Using Podman socket from env: %s", customSocketPath)
		if _, err := os.Stat(customSocketPath); err != nil {
			return "", runtime.TypePodman, fmt.Errorf("invalid Podman socket path: %w", err)
		}
		return customSocketPath, runtime.TypePodman, nil
	}

	if customSocketPath := envReader.Getenv(DockerSocketEnv); customSocketPath != "" {
		logger.Debugf("Using Docker socket from env: %s", customSocketPath)
		if _, err := os.Stat(customSocketPath); err != nil {
			return "", runtime.TypeDocker, fmt.Errorf("invalid Docker socket path: %w", err)
		}
		return customSocketPath, runtime.TypeDocker, nil
	}

	switch rt {
	case runtime.TypePodman:
		if socketPath, err := findPodmanSocket(envReader); err == nil {
			return socketPath, runtime.TypePodman, nil
		}
	case runtime.TypeDocker:
		if socketPath, err := findDockerSocket(envReader); err == nil {
			return socketPath, runtime.TypeDocker, nil
		}
	}

	return "", "", runtime.ErrRuntimeNotFound
}

func findPodmanSocket(envReader env.Reader) (string, error) {
	candidates := []string{PodmanSocketPath}
	if xdgRuntimeDir := envReader.Getenv("XDG_RUNTIME_DIR"); xdgRuntimeDir != "" {
		candidates = append(candidates, filepath.Join(xdgRuntimeDir, PodmanXDGRuntimeSocketPath))
	}
	if home := envReader.Getenv("HOME"); home != "" {
		candidates = append(candidates, filepath.Join(home, ".local/share/containers/podman/machine/podman.sock"))
	}

	if path, ok := firstExisting(candidates); ok {
		return path, nil
	}
	return "", fmt.Errorf("podman socket not found in standard locations")
}

func findDockerSocket(envReader env.Reader) (string, error) {
	candidates := []string{DockerSocketPath}
	if home := envReader.Getenv("HOME"); home != "" {
		candidates = append(candidates,
			filepath.Join(home, DockerDesktopMacSocketPath),
			filepath.Join(home, RancherDesktopMacSocketPath),
		)
	}

	if path, ok := firstExisting(candidates); ok {
		return path, nil
	}
	return "", fmt.Errorf("docker socket not found in standard locations")
}

func firstExisting(paths []string) (string, bool) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			logger.Debugf("Failed to check socket at %s: %v", p, err)
			continue
		}
		logger.Debugf("Found socket at %s", p)
		return p, true
	}
	return "", false
}
