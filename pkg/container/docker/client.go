// SPDX-FileCopyrightText: Copyright 2025 Operandi Technologies
// SPDX-License-Identifier: Apache-2.0

// Package docker implements the container engine facade on top of the
// Docker Engine SDK. It works against Docker and Podman sockets alike.
package docker

import (
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/container"
	dockerimage "github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	v1 "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/operanditech/dockerator/pkg/container/docker/sdk"
	"github.com/operanditech/dockerator/pkg/container/runtime"
	"github.com/operanditech/dockerator/pkg/logger"
)

// dockerAPI is the subset of the Docker SDK client used by Client.
type dockerAPI interface {
	ImageInspect(ctx context.Context, imageID string, opts ...client.ImageInspectOption) (dockerimage.InspectResponse, error)
	ImagePull(ctx context.Context, ref string, options dockerimage.PullOptions) (io.ReadCloser, error)
	ImageBuild(ctx context.Context, buildContext io.Reader, options build.ImageBuildOptions) (build.ImageBuildResponse, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig,
		networkingConfig *network.NetworkingConfig, platform *v1.Platform, containerName string) (container.CreateResponse, error)
	ContainerAttach(ctx context.Context, containerID string, options container.AttachOptions) (types.HijackedResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error)
}

// Client implements runtime.Engine for Docker compatible runtimes.
type Client struct {
	runtimeType runtime.Type
	api         dockerAPI
}

var _ runtime.Engine = (*Client)(nil)

// NewClient discovers an engine socket and returns a connected client.
func NewClient(ctx context.Context) (*Client, error) {
	dockerClient, runtimeType, err := sdk.NewDockerClient(ctx)
	if err != nil {
		return nil, err
	}
	return &Client{runtimeType: runtimeType, api: dockerClient}, nil
}

// NewClientFromSDK wraps an existing SDK client.
func NewClientFromSDK(dockerClient *client.Client, runtimeType runtime.Type) *Client {
	return &Client{runtimeType: runtimeType, api: dockerClient}
}

// RuntimeType returns the detected runtime.
func (c *Client) RuntimeType() runtime.Type {
	return c.runtimeType
}

// InspectImage checks that an image exists locally
func (c *Client) InspectImage(ctx context.Context, image string) error {
	if _, err := c.api.ImageInspect(ctx, image); err != nil {
		return classifyImageError(err, image)
	}
	return nil
}

// CreateContainer creates a container and returns its ID
func (c *Client) CreateContainer(ctx context.Context, params runtime.CreateParams) (string, error) {
	if params.Config == nil {
		return "", fmt.Errorf("container config is required")
	}

	resp, err := c.api.ContainerCreate(ctx, params.Config, params.HostConfig, nil, nil, "")
	if err != nil {
		return "", classifyError(err, "", "create container")
	}
	for _, w := range resp.Warnings {
		logger.Warnw("engine warning on create", "container", resp.ID, "warning", w)
	}
	logger.Debugw("created container", "container", resp.ID, "image", params.Config.Image)

	return resp.ID, nil
}

// AttachContainer attaches to the combined stdout/stderr stream of a container
func (c *Client) AttachContainer(ctx context.Context, containerID string) (io.ReadCloser, error) {
	resp, err := c.api.ContainerAttach(ctx, containerID, container.AttachOptions{
		Stream: true,
		Stdout: true,
		Stderr: true,
	})
	if err != nil {
		return nil, runtime.NewContainerError(runtime.ErrAttachFailed, containerID, err.Error())
	}
	return &hijackedStream{resp: resp}, nil
}

// StartContainer starts a created container
func (c *Client) StartContainer(ctx context.Context, containerID string) error {
	if err := c.api.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return classifyError(err, containerID, "start container")
	}
	logger.Debugw("started container", "container", containerID)
	return nil
}

// StopContainer stops a container
func (c *Client) StopContainer(ctx context.Context, containerID string, timeout *int) error {
	if err := c.api.ContainerStop(ctx, containerID, container.StopOptions{Timeout: timeout}); err != nil {
		return classifyTeardownError(err, containerID, "stop container")
	}
	logger.Debugw("stopped container", "container", containerID)
	return nil
}

// RemoveContainer removes a container
func (c *Client) RemoveContainer(ctx context.Context, containerID string) error {
	if err := c.api.ContainerRemove(ctx, containerID, container.RemoveOptions{}); err != nil {
		return classifyTeardownError(err, containerID, "remove container")
	}
	logger.Debugw("removed container", "container", containerID)
	return nil
}

// InspectContainer returns the current state of a container
func (c *Client) InspectContainer(ctx context.Context, containerID string) (runtime.ContainerState, error) {
	info, err := c.api.ContainerInspect(ctx, containerID)
	if err != nil {
		return runtime.ContainerState{}, classifyError(err, containerID, "inspect container")
	}
	if info.ContainerJSONBase == nil || info.State == nil {
		return runtime.ContainerState{}, nil
	}

	return runtime.ContainerState{
		Status:   string(info.State.Status),
		Running:  info.State.Running,
		ExitCode: info.State.ExitCode,
		Error:    info.State.Error,
	}, nil
}

// hijackedStream adapts a hijacked attach connection to io.ReadCloser.
type hijackedStream struct {
	resp types.HijackedResponse
}

func (h *hijackedStream) Read(p []byte) (int, error) {
	return h.resp.Reader.Read(p)
}

func (h *hijackedStream) Close() error {
	h.resp.Close()
	return nil
}
