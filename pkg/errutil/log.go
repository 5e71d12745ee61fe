// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

// Package errutil provides helpers for logging and asserting structured errors.
package errutil

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs an error with structured context if it's an oops error.
// For oops errors, it extracts and logs the message, code, and context.
// For standard errors, it logs the error string.
func LogError(logger *slog.Logger, msg string, err error) {
	logAt(logger, slog.LevelError, msg, err)
}

// LogWarn logs an error at warning level with the same structure as LogError.
// Used for expected, recoverable failures (e.g. a best-effort mail send).
func LogWarn(logger *slog.Logger, msg string, err error) {
	logAt(logger, slog.LevelWarn, msg, err)
}

func logAt(logger *slog.Logger, level slog.Level, msg string, err error) {
	if oopsErr, ok := oops.AsOops(err); ok {
		attrs := []any{
			"error", oopsErr.Error(),
		}
		if code := oopsErr.Code(); code != "" {
			attrs = append(attrs, "code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			attrs = append(attrs, "context", ctx)
		}
		logger.Log(context.Background(), level, msg, attrs...)
		return
	}
	logger.Log(context.Background(), level, msg, "error", err)
}
