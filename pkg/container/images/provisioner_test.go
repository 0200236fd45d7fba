// SPDX-FileCopyrightText: Copyright 2025 Operandi Technologies
// SPDX-License-Identifier: Apache-2.0

package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/operanditech/dockerator/pkg/container/runtime"
	"github.com/operanditech/dockerator/pkg/container/runtime/mocks"
)

type trackedStream struct {
	io.Reader
	closed bool
}

func (s *trackedStream) Close() error {
	s.closed = true
	return nil
}

func notFound(image string) error {
	return fmt.Errorf("%w: %s", runtime.ErrImageNotFound, image)
}

func TestEnsureImage_PresentImageIsNotAcquired(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	engine.EXPECT().InspectImage(gomock.Any(), "alpine").Return(nil)

	var out bytes.Buffer
	p := NewProvisioner(engine, WithOutput(&out))

	require.NoError(t, p.EnsureImage(context.Background(), "alpine", nil))
	assert.Empty(t, out.String())
}

func TestEnsureImage_PullsMissingImage(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)

	stream := &trackedStream{Reader: strings.NewReader("")}
	gomock.InOrder(
		engine.EXPECT().InspectImage(gomock.Any(), "mongo:4").Return(notFound("mongo:4")),
		engine.EXPECT().PullImage(gomock.Any(), "mongo:4").Return(stream, nil).Times(1),
		engine.EXPECT().FollowProgress(gomock.Any(), stream, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ io.Reader, onEvent func(runtime.ProgressEvent)) error {
				onEvent(runtime.ProgressEvent{Status: "Downloading", ID: "l1", Progress: "[==>   ] 1MB/4MB"})
				return nil
			}),
	)

	var out bytes.Buffer
	p := NewProvisioner(engine, WithOutput(&out))

	require.NoError(t, p.EnsureImage(context.Background(), "mongo:4", nil))
	assert.Equal(t, PreparingMessage+ReadyMessage, out.String())
	assert.True(t, stream.closed)
}

func TestEnsureImage_BuildsWhenSourceGiven(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)

	src := &runtime.BuildSource{Context: "../operator", Files: []string{"Dockerfile"}}
	stream := &trackedStream{Reader: strings.NewReader("")}
	engine.EXPECT().InspectImage(gomock.Any(), "operator").Return(notFound("operator"))
	engine.EXPECT().BuildImage(gomock.Any(), *src, "operator").Return(stream, nil).Times(1)
	engine.EXPECT().PullImage(gomock.Any(), gomock.Any()).Times(0)
	engine.EXPECT().FollowProgress(gomock.Any(), stream, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ io.Reader, onEvent func(runtime.ProgressEvent)) error {
			onEvent(runtime.ProgressEvent{Stream: "Step 1/1 : FROM alpine\n"})
			onEvent(runtime.ProgressEvent{Status: "Extracting", ID: "l1", Progress: " 50% "})
			onEvent(runtime.ProgressEvent{})
			return nil
		})

	var out bytes.Buffer
	p := NewProvisioner(engine, WithOutput(&out), WithProgress(true))

	require.NoError(t, p.EnsureImage(context.Background(), "operator", src))
	assert.Equal(t,
		PreparingMessage+"Step 1/1 : FROM alpine\n"+"Extracting: l1 50%\n"+ReadyMessage,
		out.String())
	assert.True(t, stream.closed)
}

func TestEnsureImage_Failures(t *testing.T) {
	t.Parallel()

	engineDown := errors.New("dial unix /var/run/docker.sock: connect: permission denied")

	tests := []struct {
		name      string
		setup     func(e *mocks.MockEngine)
		wantErr   error
		wantMsg   string
		wantReady bool
	}{
		{
			name: "inspect failure other than not found is propagated unchanged",
			setup: func(e *mocks.MockEngine) {
				e.EXPECT().InspectImage(gomock.Any(), "img").Return(engineDown)
			},
			wantErr: engineDown,
		},
		{
			name: "pull request failure",
			setup: func(e *mocks.MockEngine) {
				e.EXPECT().InspectImage(gomock.Any(), "img").Return(notFound("img"))
				e.EXPECT().PullImage(gomock.Any(), "img").Return(nil, engineDown)
			},
			wantErr: engineDown,
		},
		{
			name: "progress stream reports an error",
			setup: func(e *mocks.MockEngine) {
				stream := &trackedStream{Reader: strings.NewReader("")}
				e.EXPECT().InspectImage(gomock.Any(), "img").Return(notFound("img"))
				e.EXPECT().PullImage(gomock.Any(), "img").Return(stream, nil)
				e.EXPECT().FollowProgress(gomock.Any(), stream, gomock.Any()).
					Return(errors.New("engine reported error: manifest unknown"))
			},
			wantMsg: "manifest unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			engine := mocks.NewMockEngine(ctrl)
			tt.setup(engine)

			var out bytes.Buffer
			err := NewProvisioner(engine, WithOutput(&out)).EnsureImage(context.Background(), "img", nil)

			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
			assert.NotContains(t, out.String(), ReadyMessage)
		})
	}
}

func TestEnsureImage_SilentWithoutOutput(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)

	stream := &trackedStream{Reader: strings.NewReader("")}
	engine.EXPECT().InspectImage(gomock.Any(), "img").Return(notFound("img"))
	engine.EXPECT().PullImage(gomock.Any(), "img").Return(stream, nil)
	engine.EXPECT().FollowProgress(gomock.Any(), stream, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ io.Reader, onEvent func(runtime.ProgressEvent)) error {
			onEvent(runtime.ProgressEvent{Status: "Pulling"})
			return nil
		})

	p := NewProvisioner(engine, WithProgress(true))
	assert.NoError(t, p.EnsureImage(context.Background(), "img", nil))
}
