// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/phishguard/phishguard/internal/config"
	"github.com/phishguard/phishguard/internal/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	var down bool
	var steps int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply pending schema migrations against the PostgreSQL database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}

			migrator, err := store.NewMigrator(cfg.Database.URL)
			if err != nil {
				return err
			}
			defer migrator.Close() //nolint:errcheck // close error is secondary

			switch {
			case steps != 0:
				err = migrator.Steps(steps)
			case down:
				err = migrator.Down()
			default:
				err = migrator.Up()
			}
			if err != nil {
				return err
			}

			version, dirty, err := migrator.Version()
			if err != nil {
				return err
			}
			cmd.Printf("schema version %d (dirty=%v)\n", version, dirty)
			return nil
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "roll back all migrations")
	cmd.Flags().IntVar(&steps, "steps", 0, "apply exactly n migrations (negative rolls back)")
	return cmd
}
