// SPDX-FileCopyrightText: Copyright 2025 Operandi Technologies
// SPDX-License-Identifier: Apache-2.0

// Package main is the entry point for the dockerator CLI.
package main

import (
	"context"
	"os"

	"github.com/operanditech/dockerator/cmd/dockerator/app"
	"github.com/operanditech/dockerator/pkg/container/runtime"
	"github.com/operanditech/dockerator/pkg/logger"
)

func main() {
	logger.Initialize()

	if err := app.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		// a failed container run exits with the container's own code
		if code, ok := runtime.ExitCode(err); ok && code > 0 {
			os.Exit(code)
		}
		os.Exit(1)
	}
}
