// SPDX-FileCopyrightText: Copyright 2025 Operandi Technologies
// SPDX-License-Identifier: Apache-2.0

// Package app provides the command tree of the dockerator CLI.
package app

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/operanditech/dockerator/pkg/logger"
)

// NewRootCmd creates the root command of the dockerator CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "dockerator",
		DisableAutoGenTag: true,
		Short:             "dockerator runs a single Docker container from image to removal",
		Long: `dockerator makes sure an image is available locally, pulling or building it,
then creates, starts, watches and removes one container.

It talks to the Docker or Podman socket directly.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logger.Initialize()
		},
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				logger.Errorf("Error displaying help: %v", err)
			}
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")
	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		logger.Errorf("Error binding debug flag: %v", err)
	}

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
