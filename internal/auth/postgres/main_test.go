// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/phishguard/phishguard/internal/store"
)

// testPool is shared by all integration tests in this package. It points at a
// disposable PostgreSQL container with all migrations applied.
var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := pgcontainer.Run(ctx,
		"postgres:16-alpine",
		pgcontainer.WithDatabase("phishguard_test"),
		pgcontainer.WithUsername("test"),
		pgcontainer.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2)),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start postgres container: %v\n", err)
		os.Exit(1)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Fprintf(os.Stderr, "container connection string: %v\n", err)
		_ = container.Terminate(ctx)
		os.Exit(1)
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create migrator: %v\n", err)
		_ = container.Terminate(ctx)
		os.Exit(1)
	}
	if err := migrator.Up(); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		_ = container.Terminate(ctx)
		os.Exit(1)
	}
	_ = migrator.Close()

	testPool, err = store.Connect(ctx, connStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect pool: %v\n", err)
		_ = container.Terminate(ctx)
		os.Exit(1)
	}

	code := m.Run()

	testPool.Close()
	_ = container.Terminate(ctx)
	os.Exit(code)
}
