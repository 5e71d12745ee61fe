// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/phishguard/phishguard/internal/campaign"
	campaignpg "github.com/phishguard/phishguard/internal/campaign/postgres"
	"github.com/phishguard/phishguard/internal/config"
	"github.com/phishguard/phishguard/internal/store"
)

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the phishing template catalog",
		Long:  `Insert or refresh the built-in phishing template catalog. Safe to re-run.`,
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

			templates := campaignpg.NewTemplateRepository(pool)
			if err := campaign.Seed(ctx, templates); err != nil {
				return err
			}

			cmd.Printf("seeded %d templates\n", len(campaign.BuiltinTemplates()))
			return nil
		},
	}
}
