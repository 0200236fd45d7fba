// SPDX-FileCopyrightText: Copyright 2025 Operandi Technologies
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"fmt"
	"io"
	"os"

	"dario.cat/mergo"
	"github.com/docker/docker/api/types/container"

	"github.com/operanditech/dockerator/pkg/container/runtime"
	"github.com/operanditech/dockerator/pkg/logger"
	"github.com/operanditech/dockerator/pkg/ports"
)

type outputKind int

const (
	outputInherit outputKind = iota
	outputIgnore
	outputCustom
)

// Output selects where container output is forwarded. The zero value
// inherits the host's standard streams.
type Output struct {
	kind   outputKind
	stdout io.Writer
	stderr io.Writer
}

// IgnoreOutput discards container output.
func IgnoreOutput() Output {
	return Output{kind: outputIgnore}
}

// InheritOutput forwards container output to the host's stdout and stderr.
func InheritOutput() Output {
	return Output{kind: outputInherit}
}

// CustomOutput forwards container output to the given writers. A nil stdout
// makes the sink non-writable. A nil stderr falls back to stdout. Writers
// implementing io.Closer are closed when the container output ends.
func CustomOutput(stdout, stderr io.Writer) Output {
	return Output{kind: outputCustom, stdout: stdout, stderr: stderr}
}

// Stdout returns the writer receiving standard output, or nil.
func (o Output) Stdout() io.Writer {
	switch o.kind {
	case outputInherit:
		return os.Stdout
	case outputCustom:
		return o.stdout
	default:
		return nil
	}
}

// Stderr returns the writer receiving standard error, falling back to Stdout.
func (o Output) Stderr() io.Writer {
	switch o.kind {
	case outputInherit:
		return os.Stderr
	case outputCustom:
		if o.stderr != nil {
			return o.stderr
		}
		return o.stdout
	default:
		return nil
	}
}

// CanWrite reports whether output is forwarded anywhere.
func (o Output) CanWrite() bool {
	return o.Stdout() != nil
}

// close ends custom sinks. Host streams are never closed.
func (o Output) close() {
	if o.kind != outputCustom {
		return
	}
	closeWriter(o.stdout)
	if o.stderr != o.stdout {
		closeWriter(o.stderr)
	}
}

func closeWriter(w io.Writer) {
	c, ok := w.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		logger.Debugf("Failed to close output writer: %v", err)
	}
}

// Overrides are engine-specific creation parameters layered over the ones
// derived from Config. Set fields win on collision; zero-valued fields never
// clear a derived value, so the pseudo-terminal is turned off through TTY.
type Overrides struct {
	Config     *container.Config
	HostConfig *container.HostConfig
	TTY        *bool
}

// Config is the immutable description of a single container run.
type Config struct {
	// Image is the image reference to run. Required.
	Image string
	// Command overrides the image's default command when non-empty.
	Command []string
	// Detach skips output attachment and exit detection.
	Detach bool
	// PortMappings publishes container ports on the host.
	PortMappings []ports.Mapping
	// Output selects where container output goes.
	Output Output
	// Overrides are merged into the container creation parameters.
	Overrides Overrides
	// StopTimeout is the grace period in seconds; nil uses the engine default.
	StopTimeout *int
	// Strategy selects how run-to-completion detects container exit.
	Strategy runtime.Strategy
	// Progress enables per-event progress lines while an image is acquired.
	Progress bool
}

// Validate checks the configuration for required fields.
func (c Config) Validate() error {
	if c.Image == "" {
		return fmt.Errorf("image is required")
	}
	return nil
}

// output returns the effective sink. Detached runs never forward output.
func (c Config) output() Output {
	if c.Detach {
		return IgnoreOutput()
	}
	return c.Output
}

// CreateParams derives the container creation parameters from the
// configuration and merges the overrides on top.
func (c Config) CreateParams() (runtime.CreateParams, error) {
	exposed, bindings, err := ports.Derive(c.PortMappings)
	if err != nil {
		return runtime.CreateParams{}, err
	}

	var cmd []string
	if len(c.Command) > 0 {
		cmd = append(cmd, c.Command...)
	}

	base := runtime.CreateParams{
		Config: &container.Config{
			Image:        c.Image,
			Cmd:          cmd,
			AttachStdin:  false,
			AttachStdout: true,
			AttachStderr: true,
			Tty:          true,
			OpenStdin:    false,
			StdinOnce:    false,
			ExposedPorts: exposed,
		},
		HostConfig: &container.HostConfig{
			PortBindings: bindings,
		},
	}

	return MergeCreateParams(base, c.Overrides)
}

// MergeCreateParams layers overrides over base. Base fields come first,
// non-zero override fields replace them and map entries are merged with
// the override key winning.
func MergeCreateParams(base runtime.CreateParams, o Overrides) (runtime.CreateParams, error) {
	if base.Config == nil {
		base.Config = &container.Config{}
	}
	if base.HostConfig == nil {
		base.HostConfig = &container.HostConfig{}
	}

	if o.Config != nil {
		if err := mergo.Merge(base.Config, o.Config, mergo.WithOverride); err != nil {
			return runtime.CreateParams{}, fmt.Errorf("failed to merge container config overrides: %w", err)
		}
	}
	if o.HostConfig != nil {
		if err := mergo.Merge(base.HostConfig, o.HostConfig, mergo.WithOverride); err != nil {
			return runtime.CreateParams{}, fmt.Errorf("failed to merge host config overrides: %w", err)
		}
	}
	if o.TTY != nil {
		base.Config.Tty = *o.TTY
	}

	return base, nil
}
