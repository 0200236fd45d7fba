// SPDX-FileCopyrightText: Copyright 2025 Operandi Technologies
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package sdk

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Microsoft/go-winio"
	"github.com/docker/docker/client"
	"github.com/stacklok/toolhive-core/env"

	"github.com/operanditech/dockerator/pkg/container/runtime"
	"github.com/operanditech/dockerator/pkg/logger"
)

// Windows named pipe paths
const (
	// DockerDesktopWindowsPipePath is the Docker Desktop named pipe path on Windows
	DockerDesktopWindowsPipePath = `\\.\pipe\docker_engine`

	// PodmanDesktopWindowsPipePath is the Podman Desktop named pipe path on Windows
	PodmanDesktopWindowsPipePath = `\\.\pipe\podman-api`
)

const pipeConnectionTimeout = 2 * time.Second

// newPlatformClient creates a Docker client using Windows named pipes
func newPlatformClient(pipePath string) (*http.Client, []client.Opt) {
	httpClient := &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				dialCtx, cancel := context.WithTimeout(ctx, pipeConnectionTimeout)
				defer cancel()
				return winio.DialPipeContext(dialCtx, pipePath)
			},
		},
	}

	opts := []client.Opt{
		client.WithAPIVersionNegotiation(),
		client.WithHTTPClient(httpClient),
		client.WithHost("npipe://" + pipePath),
	}

	return httpClient, opts
}

func probePipe(pipePath string) error {
	ctx, cancel := context.WithTimeout(context.Background(), pipeConnectionTimeout)
	defer cancel()
	conn, err := winio.DialPipeContext(ctx, pipePath)
	if err != nil {
		return err
	}
	return conn.Close()
}

// findPlatformContainerSocket finds a container named pipe on Windows
func findPlatformContainerSocket(envReader env.Reader, rt runtime.Type) (string, runtime.Type, error) {
	if customPipePath := envReader.Getenv(PodmanSocketEnv); customPipePath != "" {
		logger.Debugw("using Podman pipe from env", "path", customPipePath)
		if err := probePipe(customPipePath); err != nil {
			return "", runtime.TypePodman, fmt.Errorf("invalid Podman pipe path: %w", err)
		}
		return customPipePath, runtime.TypePodman, nil
	}

	if customPipePath := envReader.Getenv(DockerSocketEnv); customPipePath != "" {
		logger.Debugw("using Docker pipe from env", "path", customPipePath)
		if err := probePipe(customPipePath); err != nil {
			return "", runtime.TypeDocker, fmt.Errorf("invalid Docker pipe path: %w", err)
		}
		return customPipePath, runtime.TypeDocker, nil
	}

	pipePath := DockerDesktopWindowsPipePath
	if rt == runtime.TypePodman {
		pipePath = PodmanDesktopWindowsPipePath
	}
	if err := probePipe(pipePath); err != nil {
		logger.Debugw("failed to connect to pipe", "path", pipePath, "error", err)
		return "", "", runtime.ErrRuntimeNotFound
	}
	logger.Debugw("found pipe", "path", pipePath)
	return pipePath, rt, nil
}
