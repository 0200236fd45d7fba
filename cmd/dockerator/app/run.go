// SPDX-FileCopyrightText: Copyright 2025 Operandi Technologies
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"k8s.io/utils/ptr"

	"github.com/operanditech/dockerator/pkg/container/docker"
	"github.com/operanditech/dockerator/pkg/container/runtime"
	"github.com/operanditech/dockerator/pkg/lifecycle"
	"github.com/operanditech/dockerator/pkg/logger"
	"github.com/operanditech/dockerator/pkg/ports"
)

// EnvPrefix prefixes environment variables that set run keys, e.g.
// DOCKERATOR_STOP_TIMEOUT.
const EnvPrefix = "DOCKERATOR"

// Run configuration keys, shared by flags, environment and the run file.
const (
	keyImage        = "image"
	keyCommand      = "command"
	keyPorts        = "ports"
	keyDetach       = "detach"
	keyUntilExit    = "until-exit"
	keyBuildContext = "build.context"
	keyBuildFiles   = "build.files"
	keyStopTimeout  = "stop-timeout"
	keyQuiet        = "quiet"
	keyStrategy     = "exit-detection"
)

// runOptions is the resolved input of one run.
type runOptions struct {
	config    lifecycle.Config
	build     *runtime.BuildSource
	untilExit bool
}

func newRunCmd() *cobra.Command {
	v := viper.New()
	var configFile string

	cmd := &cobra.Command{
		Use:   "run [flags] [IMAGE] [-- COMMAND...]",
		Short: "Run a container",
		Long: `Run makes sure IMAGE exists locally, pulling it or building it from
--build-context when missing, then creates and starts a container.

Without --detach the container output is forwarded to the terminal and the
container is stopped and removed on SIGINT or SIGTERM. With --until-exit the
command returns when the container exits, removing it, and exits with the
container's exit code.

Every flag can also be set in a YAML run file given with --config, or through
DOCKERATOR_ prefixed environment variables. Flags take precedence.`,
		Example: `  dockerator run -p 27017:27017 mongo:4.0.6
  dockerator run --until-exit alpine -- sh -c 'echo hello'
  dockerator run --build-context ./operator --build-file Dockerfile --build-file src operator`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				v.SetConfigFile(configFile)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("failed to read run file %s: %w", configFile, err)
				}
			}

			opts, err := loadRunOptions(v, args, cmd.ArgsLenAtDash())
			if err != nil {
				return err
			}
			opts.config.Progress = term.IsTerminal(int(os.Stdout.Fd()))

			return runContainer(cmd, opts)
		},
	}

	flags := cmd.Flags()
	// flags after IMAGE belong to the container command
	flags.SetInterspersed(false)
	flags.StringVar(&configFile, "config", "", "YAML run file")
	addRunFlags(flags)
	bindRunConfig(v, flags)

	return cmd
}

func addRunFlags(flags *pflag.FlagSet) {
	flags.StringSliceP("publish", "p", nil, "Publish a container port on the host (host:container)")
	flags.BoolP("detach", "d", false, "Start the container and return without attaching")
	flags.Bool("until-exit", false, "Wait for the container to exit, then remove it")
	flags.String("build-context", "", "Directory to build the image from when it is missing")
	flags.StringSlice("build-file", nil, "Path inside the build context to send to the engine (repeatable)")
	flags.Int("stop-timeout", 0, "Seconds to wait for the container to stop before killing it")
	flags.Bool("quiet", false, "Do not forward container output")
	flags.String("exit-detection", "", "How container exit is detected: event or polling (default depends on the platform)")
}

// bindRunConfig layers flags over DOCKERATOR_ environment variables over
// the run file.
func bindRunConfig(v *viper.Viper, flags *pflag.FlagSet) {
	for key, flag := range map[string]string{
		keyPorts:        "publish",
		keyDetach:       "detach",
		keyUntilExit:    "until-exit",
		keyBuildContext: "build-context",
		keyBuildFiles:   "build-file",
		keyStopTimeout:  "stop-timeout",
		keyQuiet:        "quiet",
		keyStrategy:     "exit-detection",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			logger.Errorf("Error binding %s flag: %v", flag, err)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
}

// loadRunOptions resolves positional arguments and viper keys into a run.
// dash is the index of the first argument after "--", or -1.
func loadRunOptions(v *viper.Viper, args []string, dash int) (runOptions, error) {
	image := v.GetString(keyImage)
	var command []string
	if fromConfig := v.GetStringSlice(keyCommand); len(fromConfig) > 0 {
		command = fromConfig
	}

	positional, trailing := args, []string(nil)
	if dash >= 0 {
		positional, trailing = args[:dash], args[dash:]
	}
	switch len(positional) {
	case 0:
	case 1:
		image = positional[0]
	default:
		// "run IMAGE CMD ARGS..." without a dash
		image = positional[0]
		trailing = append(append([]string{}, positional[1:]...), trailing...)
	}
	if len(trailing) > 0 {
		command = trailing
	}
	if image == "" {
		return runOptions{}, fmt.Errorf("an image is required, as an argument or the %q key", keyImage)
	}

	mappings, err := ports.ParseAll(v.GetStringSlice(keyPorts))
	if err != nil {
		return runOptions{}, err
	}

	strategy := runtime.Strategy(v.GetString(keyStrategy))
	switch strategy {
	case runtime.StrategyAuto, runtime.StrategyEvent, runtime.StrategyPolling:
	default:
		return runOptions{}, fmt.Errorf("unknown exit detection %q, want event or polling", strategy)
	}

	cfg := lifecycle.Config{
		Image:        image,
		Command:      command,
		Detach:       v.GetBool(keyDetach),
		PortMappings: mappings,
		Output:       lifecycle.InheritOutput(),
		Strategy:     strategy,
	}
	if v.GetBool(keyQuiet) {
		cfg.Output = lifecycle.IgnoreOutput()
	}
	if v.IsSet(keyStopTimeout) {
		timeout := v.GetInt(keyStopTimeout)
		if timeout < 0 {
			return runOptions{}, fmt.Errorf("stop timeout must not be negative, got %d", timeout)
		}
		cfg.StopTimeout = ptr.To(timeout)
	}

	opts := runOptions{config: cfg, untilExit: v.GetBool(keyUntilExit)}
	if buildContext := v.GetString(keyBuildContext); buildContext != "" {
		opts.build = &runtime.BuildSource{
			Context: buildContext,
			Files:   v.GetStringSlice(keyBuildFiles),
		}
	}
	return opts, nil
}

func runContainer(cmd *cobra.Command, opts runOptions) error {
	ctx := cmd.Context()

	engine, err := docker.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to the container engine: %w", err)
	}
	logger.Debugw("connected to container engine", "runtime", engine.RuntimeType())

	ctrl, err := lifecycle.New(engine, opts.config)
	if err != nil {
		return err
	}
	if err := ctrl.Setup(ctx, opts.build); err != nil {
		return err
	}

	uninstall := ctrl.InstallTerminationHandler()
	defer uninstall()

	if err := ctrl.Start(ctx, lifecycle.StartOptions{UntilExit: opts.untilExit}); err != nil {
		if ctrl.ContainerID() == "" {
			return err
		}
		if stopErr := ctrl.Stop(context.WithoutCancel(ctx)); stopErr != nil {
			logger.Warnf("Failed to clean up container %s: %v", ctrl.ContainerID(), stopErr)
		}
		return err
	}

	if opts.config.Detach {
		fmt.Fprintln(cmd.OutOrStdout(), ctrl.ContainerID())
		return nil
	}
	if opts.untilExit {
		return nil
	}

	// the termination handler exits the process
	<-ctx.Done()
	return ctx.Err()
}
