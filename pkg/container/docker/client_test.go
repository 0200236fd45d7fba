// SPDX-FileCopyrightText: Copyright 2025 Operandi Technologies
// SPDX-License-Identifier: Apache-2.0

package docker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	dockerimage "github.com/docker/docker/api/types/image"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"

	"github.com/operanditech/dockerator/pkg/container/runtime"
)

func newTestClient(api dockerAPI) *Client {
	return &Client{runtimeType: runtime.TypeDocker, api: api}
}

func TestInspectImage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		err          error
		wantErr      bool
		wantNotFound bool
	}{
		{name: "present"},
		{name: "missing", err: fmt.Errorf("no such image: %w", errdefs.ErrNotFound), wantErr: true, wantNotFound: true},
		{name: "engine failure", err: errors.New("connection reset"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(&fakeDockerAPI{
				imageInspectFunc: func(_ context.Context, image string) (dockerimage.InspectResponse, error) {
					assert.Equal(t, "alpine:3.20", image)
					return dockerimage.InspectResponse{}, tt.err
				},
			})

			err := c.InspectImage(context.Background(), "alpine:3.20")
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantNotFound, runtime.IsImageNotFound(err))
		})
	}
}

func TestCreateContainer(t *testing.T) {
	t.Parallel()

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()
		_, err := newTestClient(&fakeDockerAPI{}).CreateContainer(context.Background(), runtime.CreateParams{})
		assert.Error(t, err)
	})

	t.Run("passes parameters through", func(t *testing.T) {
		t.Parallel()
		params := runtime.CreateParams{
			Config:     &container.Config{Image: "alpine", Cmd: []string{"true"}, Tty: true},
			HostConfig: &container.HostConfig{},
		}
		c := newTestClient(&fakeDockerAPI{
			createFunc: func(_ context.Context, config *container.Config, hostConfig *container.HostConfig) (container.CreateResponse, error) {
				assert.Same(t, params.Config, config)
				assert.Same(t, params.HostConfig, hostConfig)
				return container.CreateResponse{ID: "abc", Warnings: []string{"low memory"}}, nil
			},
		})

		id, err := c.CreateContainer(context.Background(), params)
		require.NoError(t, err)
		assert.Equal(t, "abc", id)
	})

	t.Run("engine failure", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(&fakeDockerAPI{
			createFunc: func(context.Context, *container.Config, *container.HostConfig) (container.CreateResponse, error) {
				return container.CreateResponse{}, errors.New("no space left")
			},
		})
		_, err := c.CreateContainer(context.Background(), runtime.CreateParams{Config: &container.Config{Image: "alpine"}})
		assert.ErrorContains(t, err, "no space left")
	})
}

func TestTeardownClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		err            error
		wantIdempotent bool
		wantNotFound   bool
	}{
		{name: "success"},
		{name: "conflict", err: fmt.Errorf("removal in progress: %w", errdefs.ErrConflict), wantIdempotent: true},
		{name: "not modified", err: fmt.Errorf("already stopped: %w", errdefs.ErrNotModified), wantIdempotent: true},
		{name: "not found", err: fmt.Errorf("no such container: %w", errdefs.ErrNotFound), wantIdempotent: true, wantNotFound: true},
		{name: "transport", err: errors.New("EOF")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotTimeout *int
			c := newTestClient(&fakeDockerAPI{
				stopFunc: func(_ context.Context, id string, options container.StopOptions) error {
					assert.Equal(t, "c1", id)
					gotTimeout = options.Timeout
					return tt.err
				},
				removeFunc: func(_ context.Context, id string, _ container.RemoveOptions) error {
					assert.Equal(t, "c1", id)
					return tt.err
				},
			})

			stopErr := c.StopContainer(context.Background(), "c1", ptr.To(5))
			removeErr := c.RemoveContainer(context.Background(), "c1")
			require.NotNil(t, gotTimeout)
			assert.Equal(t, 5, *gotTimeout)

			for _, err := range []error{stopErr, removeErr} {
				if tt.err == nil {
					assert.NoError(t, err)
					continue
				}
				require.Error(t, err)
				assert.Equal(t, tt.wantIdempotent, runtime.IsIdempotentConflict(err))
				assert.Equal(t, tt.wantNotFound, runtime.IsContainerNotFound(err))
			}
		})
	}
}

func TestStartContainer_NotFound(t *testing.T) {
	t.Parallel()
	c := newTestClient(&fakeDockerAPI{
		startFunc: func(context.Context, string, container.StartOptions) error {
			return fmt.Errorf("no such container: %w", errdefs.ErrNotFound)
		},
	})
	err := c.StartContainer(context.Background(), "gone")
	assert.True(t, runtime.IsContainerNotFound(err))
}

func TestInspectContainer(t *testing.T) {
	t.Parallel()

	t.Run("maps state", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(&fakeDockerAPI{
			inspectFunc: func(context.Context, string) (container.InspectResponse, error) {
				return container.InspectResponse{
					ContainerJSONBase: &container.ContainerJSONBase{
						State: &container.State{
							Status:   container.StateExited,
							ExitCode: 2,
							Error:    "oom",
						},
					},
				}, nil
			},
		})
		state, err := c.InspectContainer(context.Background(), "c1")
		require.NoError(t, err)
		assert.Equal(t, runtime.ContainerState{Status: runtime.StatusExited, ExitCode: 2, Error: "oom"}, state)
		assert.False(t, state.Succeeded())
	})

	t.Run("missing state", func(t *testing.T) {
		t.Parallel()
		state, err := newTestClient(&fakeDockerAPI{}).InspectContainer(context.Background(), "c1")
		require.NoError(t, err)
		assert.Equal(t, runtime.ContainerState{}, state)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(&fakeDockerAPI{
			inspectFunc: func(context.Context, string) (container.InspectResponse, error) {
				return container.InspectResponse{}, fmt.Errorf("no such container: %w", errdefs.ErrNotFound)
			},
		})
		_, err := c.InspectContainer(context.Background(), "c1")
		assert.True(t, runtime.IsContainerNotFound(err))
	})
}

func TestAttachContainer(t *testing.T) {
	t.Parallel()

	t.Run("streams output and closes the connection", func(t *testing.T) {
		t.Parallel()
		server, conn := net.Pipe()
		c := newTestClient(&fakeDockerAPI{
			attachFunc: func(_ context.Context, id string, options container.AttachOptions) (types.HijackedResponse, error) {
				assert.Equal(t, "c1", id)
				assert.True(t, options.Stream)
				assert.True(t, options.Stdout)
				assert.True(t, options.Stderr)
				assert.False(t, options.Stdin)
				return types.NewHijackedResponse(conn, ""), nil
			},
		})

		stream, err := c.AttachContainer(context.Background(), "c1")
		require.NoError(t, err)

		go func() {
			_, _ = server.Write([]byte("hello\n"))
			_ = server.Close()
		}()

		out, err := io.ReadAll(stream)
		require.NoError(t, err)
		assert.Equal(t, "hello\n", string(out))
		require.NoError(t, stream.Close())

		_, err = conn.Write([]byte("x"))
		assert.Error(t, err)
	})

	t.Run("attach failure", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(&fakeDockerAPI{
			attachFunc: func(context.Context, string, container.AttachOptions) (types.HijackedResponse, error) {
				return types.HijackedResponse{}, errors.New("hijack refused")
			},
		})
		_, err := c.AttachContainer(context.Background(), "c1")
		require.ErrorIs(t, err, runtime.ErrAttachFailed)
		assert.Contains(t, err.Error(), "hijack refused")
	})
}
