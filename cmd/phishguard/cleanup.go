// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/phishguard/phishguard/internal/auth"
	authpg "github.com/phishguard/phishguard/internal/auth/postgres"
	"github.com/phishguard/phishguard/internal/config"
	"github.com/phishguard/phishguard/internal/store"
)

// NewCleanupCmd creates the cleanup subcommand.
func NewCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired sessions and tokens",
		Long: `Run one sweep over the session and verification-token tables, deleting
rows past their expiry. The serve command runs the same sweep on a timer;
this is for operators who want it on their own schedule.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := store.Connect(ctx, cfg.Database.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			janitor := auth.NewJanitor(
				authpg.NewSessionRepository(pool),
				authpg.NewTokenRepository(pool),
				nil,
			)
			result, err := janitor.Sweep(ctx)
			if err != nil {
				return err
			}

			cmd.Printf("deleted %d sessions and %d tokens\n", result.Sessions, result.Tokens)
			return nil
		},
	}
}
