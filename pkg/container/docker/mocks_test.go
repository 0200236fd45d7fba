// SPDX-FileCopyrightText: Copyright 2025 Operandi Technologies
// SPDX-License-Identifier: Apache-2.0

package docker

import (
	"context"
	"io"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/container"
	dockerimage "github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	v1 "github.com/opencontainers/image-spec/specs-go/v1"
)

// fakeDockerAPI provides a minimal test double for dockerAPI used by Client.
type fakeDockerAPI struct {
	imageInspectFunc func(ctx context.Context, image string) (dockerimage.InspectResponse, error)
	pullFunc         func(ctx context.Context, ref string, options dockerimage.PullOptions) (io.ReadCloser, error)
	buildFunc        func(ctx context.Context, buildContext io.Reader, options build.ImageBuildOptions) (build.ImageBuildResponse, error)
	createFunc       func(ctx context.Context, config *container.Config, hostConfig *container.HostConfig) (container.CreateResponse, error)
	attachFunc       func(ctx context.Context, containerID string, options container.AttachOptions) (types.HijackedResponse, error)
	startFunc        func(ctx context.Context, containerID string, options container.StartOptions) error
	stopFunc         func(ctx context.Context, containerID string, options container.StopOptions) error
	removeFunc       func(ctx context.Context, containerID string, options container.RemoveOptions) error
	inspectFunc      func(ctx context.Context, containerID string) (container.InspectResponse, error)
}

func (f *fakeDockerAPI) ImageInspect(ctx context.Context, imageID string, _ ...client.ImageInspectOption) (dockerimage.InspectResponse, error) {
	if f.imageInspectFunc != nil {
		return f.imageInspectFunc(ctx, imageID)
	}
	return dockerimage.InspectResponse{}, nil
}

func (f *fakeDockerAPI) ImagePull(ctx context.Context, ref string, options dockerimage.PullOptions) (io.ReadCloser, error) {
	if f.pullFunc != nil {
		return f.pullFunc(ctx, ref, options)
	}
	return io.NopCloser(nil), nil
}

func (f *fakeDockerAPI) ImageBuild(ctx context.Context, buildContext io.Reader, options build.ImageBuildOptions) (build.ImageBuildResponse, error) {
	if f.buildFunc != nil {
		return f.buildFunc(ctx, buildContext, options)
	}
	return build.ImageBuildResponse{}, nil
}

func (f *fakeDockerAPI) ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig,
	_ *network.NetworkingConfig, _ *v1.Platform, _ string) (container.CreateResponse, error) {
	if f.createFunc != nil {
		return f.createFunc(ctx, config, hostConfig)
	}
	return container.CreateResponse{}, nil
}

func (f *fakeDockerAPI) ContainerAttach(ctx context.Context, containerID string, options container.AttachOptions) (types.HijackedResponse, error) {
	if f.attachFunc != nil {
		return f.attachFunc(ctx, containerID, options)
	}
	return types.HijackedResponse{}, nil
}

func (f *fakeDockerAPI) ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error {
	if f.startFunc != nil {
		return f.startFunc(ctx, containerID, options)
	}
	return nil
}

func (f *fakeDockerAPI) ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error {
	if f.stopFunc != nil {
		return f.stopFunc(ctx, containerID, options)
	}
	return nil
}

func (f *fakeDockerAPI) ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error {
	if f.removeFunc != nil {
		return f.removeFunc(ctx, containerID, options)
	}
	return nil
}

func (f *fakeDockerAPI) ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error) {
	if f.inspectFunc != nil {
		return f.inspectFunc(ctx, containerID)
	}
	return container.InspectResponse{}, nil
}
