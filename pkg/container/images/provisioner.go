// SPDX-FileCopyrightText: Copyright 2025 Operandi Technologies
// SPDX-License-Identifier: Apache-2.0

// Package images makes sure a container image is available locally before a
// container is created from it.
package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/operanditech/dockerator/pkg/container/runtime"
	"github.com/operanditech/dockerator/pkg/logger"
)

// Messages written to the output sink around image acquisition.
const (
	PreparingMessage = "Preparing docker image...\n"
	ReadyMessage     = "Docker image ready\n"
)

// Provisioner ensures images exist locally, pulling or building them on demand.
type Provisioner struct {
	engine   runtime.Engine
	out      io.Writer
	progress bool
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithOutput sets the writer that receives the preparing and ready messages.
// A nil writer keeps the provisioner silent.
func WithOutput(w io.Writer) Option {
	return func(p *Provisioner) {
		p.out = w
	}
}

// WithProgress enables a line per progress event on the output writer.
func WithProgress(enabled bool) Option {
	return func(p *Provisioner) {
		p.progress = enabled
	}
}

// NewProvisioner creates a Provisioner backed by engine.
func NewProvisioner(engine runtime.Engine, opts ...Option) *Provisioner {
	p := &Provisioner{engine: engine}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// EnsureImage makes image available locally. If the image is missing it is
// built from src when src is non-nil and pulled otherwise. The returned
// error is the engine's own error for any inspect failure other than a
// missing image.
func (p *Provisioner) EnsureImage(ctx context.Context, image string, src *runtime.BuildSource) error {
	err := p.engine.InspectImage(ctx, image)
	if err == nil {
		logger.Debugw("image present", "image", image)
		return nil
	}
	if !runtime.IsImageNotFound(err) {
		return err
	}

	p.write(PreparingMessage)

	var stream io.ReadCloser
	if src != nil {
		logger.Infow("building image", "image", image, "context", src.Context)
		stream, err = p.engine.BuildImage(ctx, *src, image)
	} else {
		logger.Infow("pulling image", "image", image)
		stream, err = p.engine.PullImage(ctx, image)
	}
	if err != nil {
		return err
	}

	followErr := p.engine.FollowProgress(ctx, stream, p.onEvent)
	closeErr := stream.Close()
	if followErr != nil {
		return fmt.Errorf("failed to prepare image %s: %w", image, followErr)
	}
	if closeErr != nil {
		logger.Debugf("Failed to close progress stream: %v", closeErr)
	}

	p.write(ReadyMessage)
	return nil
}

func (p *Provisioner) onEvent(e runtime.ProgressEvent) {
	if !p.progress || p.out == nil {
		return
	}
	line := formatEvent(e)
	if line == "" {
		return
	}
	p.write(line)
}

func (p *Provisioner) write(msg string) {
	if p.out == nil {
		return
	}
	if _, err := io.WriteString(p.out, msg); err != nil && !errors.Is(err, io.ErrClosedPipe) {
		logger.Debugf("Failed to write to output: %v", err)
	}
}

// formatEvent renders a progress event the way the engine CLI prints it.
func formatEvent(e runtime.ProgressEvent) string {
	switch {
	case e.Stream != "":
		return e.Stream
	case e.Progress != "":
		return fmt.Sprintf("%s: %s %s\n", e.Status, e.ID, strings.TrimSpace(e.Progress))
	case e.ID != "":
		return fmt.Sprintf("%s: %s\n", e.Status, e.ID)
	case e.Status != "":
		return e.Status + "\n"
	default:
		return ""
	}
}
