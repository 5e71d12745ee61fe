// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phishguard/phishguard/internal/auth"
	"github.com/phishguard/phishguard/pkg/errutil"
)

func TestNewAccount(t *testing.T) {
	t.Run("creates account with normalized email", func(t *testing.T) {
		account, err := auth.NewAccount("  Alice@Example.COM ", "Alice", "$argon2id$fake")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", account.Email)
		assert.Equal(t, "Alice", account.DisplayName)
		assert.False(t, account.EmailVerified)
		assert.NotEqual(t, ulid.ULID{}, account.ID)
		assert.False(t, account.CreatedAt.IsZero())
	})

	t.Run("rejects empty hash", func(t *testing.T) {
		_, err := auth.NewAccount("alice@example.com", "Alice", "")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_HASH")
	})
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "valid", email: "user@example.com"},
		{name: "valid with plus tag", email: "user+tag@example.com"},
		{name: "empty", email: "", wantErr: true},
		{name: "missing at", email: "userexample.com", wantErr: true},
		{name: "missing domain dot", email: "user@example", wantErr: true},
		{name: "embedded space", email: "us er@example.com", wantErr: true},
		{name: "too long", email: strings.Repeat("a", 250) + "@x.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ValidateEmail(tt.email)
			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, "AUTH_INVALID_EMAIL")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDisplayName(t *testing.T) {
	assert.NoError(t, auth.ValidateDisplayName("Bo"))
	assert.NoError(t, auth.ValidateDisplayName("Alice Liddell"))

	err := auth.ValidateDisplayName("A")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "AUTH_INVALID_NAME")

	err = auth.ValidateDisplayName(strings.Repeat("x", auth.MaxDisplayNameLength+1))
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "AUTH_INVALID_NAME")
}

func TestAccount_FailureTracking(t *testing.T) {
	account, err := auth.NewAccount("alice@example.com", "Alice", "$argon2id$fake")
	require.NoError(t, err)

	t.Run("below threshold does not lock", func(t *testing.T) {
		for range auth.LockoutThreshold - 1 {
			account.RecordFailure()
		}
		assert.False(t, account.IsLocked())
		assert.Equal(t, auth.LockoutThreshold-1, account.FailedAttempts)
	})

	t.Run("threshold locks the account", func(t *testing.T) {
		account.RecordFailure()
		assert.True(t, account.IsLocked())
		require.NotNil(t, account.LockedUntil)
	})

	t.Run("success resets counter and lockout", func(t *testing.T) {
		account.RecordSuccess()
		assert.False(t, account.IsLocked())
		assert.Zero(t, account.FailedAttempts)
		assert.Nil(t, account.LockedUntil)
	})
}
