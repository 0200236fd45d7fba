// SPDX-FileCopyrightText: Copyright 2025 Operandi Technologies
// SPDX-License-Identifier: Apache-2.0

package docker

import (
	"fmt"

	"github.com/containerd/errdefs"

	"github.com/operanditech/dockerator/pkg/container/runtime"
)

// classifyImageError maps an image inspect failure onto the runtime sentinels.
func classifyImageError(err error, image string) error {
	if errdefs.IsNotFound(err) {
		return fmt.Errorf("%w: %s", runtime.ErrImageNotFound, image)
	}
	return fmt.Errorf("failed to inspect image %s: %w", image, err)
}

// classifyError maps a container operation failure onto the runtime sentinels.
// Only "not found" is recognised; everything else is wrapped unchanged.
func classifyError(err error, containerID, action string) error {
	if errdefs.IsNotFound(err) {
		return runtime.NewContainerError(runtime.ErrContainerNotFound, containerID, fmt.Sprintf("failed to %s: %v", action, err))
	}
	return runtime.NewContainerError(err, containerID, fmt.Sprintf("failed to %s", action))
}

// classifyTeardownError additionally recognises the conditions the engine
// reports when a stop or remove has nothing left to do.
func classifyTeardownError(err error, containerID, action string) error {
	if errdefs.IsNotModified(err) || errdefs.IsConflict(err) {
		return runtime.NewContainerError(runtime.ErrAlreadyStopped, containerID, fmt.Sprintf("failed to %s: %v", action, err))
	}
	return classifyError(err, containerID, action)
}
