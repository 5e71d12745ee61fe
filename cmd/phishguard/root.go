// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the PhishGuard CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phishguard",
		Short: "PhishGuard - phishing-awareness campaign dashboard",
		Long: `PhishGuard is a dashboard for running phishing-awareness campaigns:
account registration with email verification, cookie sessions, password
recovery, and a catalog-backed campaign builder.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	cmd.PersistentFlags().String("database.url", "", "PostgreSQL connection URL")
	cmd.PersistentFlags().String("server.addr", "", "HTTP listen address")
	cmd.PersistentFlags().String("logging.format", "", "log format (json or text)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewCleanupCmd())

	return cmd
}
