// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

package store

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phishguard/phishguard/pkg/errutil"
)

func TestNewMigrator_InvalidURL(t *testing.T) {
	_, err := NewMigrator("invalid://url")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_INIT_FAILED")
}

func TestNewMigrator_PostgresqlSchemeIsConverted(t *testing.T) {
	// postgresql:// must be rewritten to pgx5://; a failure here should be
	// a connection error, never "unknown driver".
	_, err := NewMigrator("postgresql://localhost:1/phishguard")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "unknown driver")
}

// fakeMigrate implements migrateIface without a database.
type fakeMigrate struct {
	upErr      error
	downErr    error
	stepsErr   error
	version    uint
	dirty      bool
	versionErr error
	forceErr   error
	srcErr     error
	dbErr      error

	forcedTo int
	stepped  int
}

func (f *fakeMigrate) Up() error                { return f.upErr }
func (f *fakeMigrate) Down() error              { return f.downErr }
func (f *fakeMigrate) Steps(n int) error        { f.stepped = n; return f.stepsErr }
func (f *fakeMigrate) Force(version int) error  { f.forcedTo = version; return f.forceErr }
func (f *fakeMigrate) Close() (error, error)    { return f.srcErr, f.dbErr }
func (f *fakeMigrate) Version() (uint, bool, error) {
	return f.version, f.dirty, f.versionErr
}

func TestMigrator_Up(t *testing.T) {
	t.Run("no change is not an error", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{upErr: migrate.ErrNoChange}}
		assert.NoError(t, m.Up())
	})

	t.Run("real failure is wrapped", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{upErr: errors.New("boom")}}
		err := m.Up()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_UP_FAILED")
	})
}

func TestMigrator_Version(t *testing.T) {
	t.Run("nil version means zero", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}
		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Zero(t, version)
		assert.False(t, dirty)
	})

	t.Run("propagates version and dirty flag", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{version: 4, dirty: true}}
		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(4), version)
		assert.True(t, dirty)
	})
}

func TestMigrator_Force(t *testing.T) {
	t.Run("rejects negative version", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{}}
		err := m.Force(-1)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "INVALID_VERSION")
	})

	t.Run("forwards non-negative version", func(t *testing.T) {
		fake := &fakeMigrate{}
		m := &Migrator{m: fake}
		require.NoError(t, m.Force(3))
		assert.Equal(t, 3, fake.forcedTo)
	})
}

func TestMigrator_Close(t *testing.T) {
	t.Run("both errors are combined", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{srcErr: errors.New("src"), dbErr: errors.New("db")}}
		err := m.Close()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "src")
		assert.Contains(t, err.Error(), "db")
	})

	t.Run("clean close", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{}}
		assert.NoError(t, m.Close())
	})
}
