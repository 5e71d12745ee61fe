// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
)

// DefaultSweepInterval is how often the janitor runs when no interval is
// given.
const DefaultSweepInterval = time.Hour

// Janitor removes expired and revoked sessions and spent verification
// tokens. Expired rows are already invisible to reads; sweeping them is
// storage hygiene, not a correctness requirement.
type Janitor struct {
	sessions SessionRepository
	tokens   TokenRepository
	logger   *slog.Logger
}

// NewJanitor wires a janitor. A nil logger falls back to the default.
func NewJanitor(sessions SessionRepository, tokens TokenRepository, logger *slog.Logger) *Janitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Janitor{sessions: sessions, tokens: tokens, logger: logger}
}

// SweepResult reports how many rows a sweep removed.
type SweepResult struct {
	Sessions int64
	Tokens   int64
}

// Sweep deletes everything past its expiry in one pass. Both stores are
// always attempted; the first error is returned along with the counts
// collected so far.
func (j *Janitor) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	sessions, sessErr := j.sessions.DeleteExpired(ctx)
	result.Sessions = sessions

	tokens, tokErr := j.tokens.DeleteExpired(ctx)
	result.Tokens = tokens

	if sessErr != nil {
		return result, oops.Code("CLEANUP_FAILED").With("store", "sessions").Wrap(sessErr)
	}
	if tokErr != nil {
		return result, oops.Code("CLEANUP_FAILED").With("store", "tokens").Wrap(tokErr)
	}

	j.logger.InfoContext(ctx, "expired auth records swept",
		slog.Int64("sessions", result.Sessions),
		slog.Int64("tokens", result.Tokens))
	return result, nil
}

// Run sweeps on the interval until the context is cancelled. Sweep errors
// are logged and the loop keeps going; a non-positive interval falls back
// to DefaultSweepInterval.
func (j *Janitor) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := j.Sweep(ctx); err != nil {
				j.logger.WarnContext(ctx, "sweep failed", slog.Any("error", err))
			}
		}
	}
}
