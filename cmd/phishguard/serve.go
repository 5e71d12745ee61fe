// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

package main

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/phishguard/phishguard/internal/auth"
	authpg "github.com/phishguard/phishguard/internal/auth/postgres"
	"github.com/phishguard/phishguard/internal/campaign"
	campaignpg "github.com/phishguard/phishguard/internal/campaign/postgres"
	"github.com/phishguard/phishguard/internal/config"
	"github.com/phishguard/phishguard/internal/logging"
	"github.com/phishguard/phishguard/internal/mail"
	"github.com/phishguard/phishguard/internal/observability"
	"github.com/phishguard/phishguard/internal/store"
	"github.com/phishguard/phishguard/internal/web"
	"github.com/phishguard/phishguard/pkg/errutil"
)

const shutdownTimeout = 15 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard server",
		Long: `Start the PhishGuard HTTP server: the auth and campaign APIs plus the
observability endpoints on a separate listener.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger := logging.Setup("phishguard", version, cfg.Logging.Format, os.Stderr)
	ctx := cmd.Context()

	if cfg.Database.AutoMigrate {
		migrator, err := store.NewMigrator(cfg.Database.URL)
		if err != nil {
			return err
		}
		if err := migrator.Up(); err != nil {
			_ = migrator.Close()
			return err
		}
		if err := migrator.Close(); err != nil {
			errutil.LogWarn(logger, "closing migrator", err)
		}
		logger.Info("migrations applied")
	}

	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	var ready atomic.Bool
	obs := observability.NewServer(cfg.Observability.Addr, ready.Load)
	obsErr, err := obs.Start()
	if err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := obs.Stop(stopCtx); err != nil {
			errutil.LogWarn(logger, "stopping observability server", err)
		}
	}()

	sender, err := mail.NewSMTPSender(mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, logger)
	if err != nil {
		return err
	}

	accounts := authpg.NewAccountRepository(pool)
	sessionRepo := authpg.NewSessionRepository(pool)
	tokenRepo := authpg.NewTokenRepository(pool)
	sessionManager := auth.NewSessionManager(sessionRepo, cfg.Session.TTL)
	flows := auth.NewFlows(auth.FlowsConfig{
		Accounts: accounts,
		Sessions: sessionManager,
		Tokens:   auth.NewTokenIssuer(tokenRepo),
		Hasher:   auth.NewArgon2idHasher(),
		Sender:   sender,
		Resend:   auth.NewResendLimiter(cfg.Session.ResendInterval),
		Metrics:  auth.NewMetrics(obs.Registry()),
		Logger:   logger,
		BaseURL:  cfg.Server.BaseURL,
	})

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	janitorDone := make(chan struct{})
	go func() {
		defer close(janitorDone)
		auth.NewJanitor(sessionRepo, tokenRepo, logger).Run(janitorCtx, auth.DefaultSweepInterval)
	}()

	campaigns := campaign.NewService(
		campaignpg.NewCampaignRepository(pool),
		campaignpg.NewTemplateRepository(pool),
		logger,
	)

	server := web.NewServer(web.ServerConfig{
		Flows:         flows,
		Sessions:      sessionManager,
		Accounts:      accounts,
		Campaigns:     campaigns,
		Logger:        logger,
		SecureCookies: cfg.Server.SecureCookies,
		SessionTTL:    cfg.Session.TTL,
	})

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr)
		serveErr <- server.Listen(cfg.Server.Addr)
	}()
	ready.Store(true)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return err
	case err := <-obsErr:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ready.Store(false)
	stopJanitor()
	<-janitorDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
