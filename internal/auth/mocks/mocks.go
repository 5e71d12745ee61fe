// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

// Package mocks provides hand-maintained testify mocks for the auth
// package's ports.
package mocks

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/phishguard/phishguard/internal/auth"
)

// MockAccountRepository is a mock for auth.AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

// NewMockAccountRepository creates a mock wired to the test lifecycle.
func NewMockAccountRepository(t *testing.T) *MockAccountRepository {
	t.Helper()
	m := &MockAccountRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAccountRepository) Create(ctx context.Context, account *auth.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*auth.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Account), args.Error(1)
}

func (m *MockAccountRepository) Update(ctx context.Context, account *auth.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockAccountRepository) SetEmailVerified(ctx context.Context, id ulid.ULID, verified bool) error {
	args := m.Called(ctx, id, verified)
	return args.Error(0)
}

// MockSessionRepository is a mock for auth.SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

// NewMockSessionRepository creates a mock wired to the test lifecycle.
func NewMockSessionRepository(t *testing.T) *MockSessionRepository {
	t.Helper()
	m := &MockSessionRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSessionRepository) Create(ctx context.Context, session *auth.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.Session, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Session), args.Error(1)
}

func (m *MockSessionRepository) GetByAccount(ctx context.Context, accountID ulid.ULID) ([]*auth.Session, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auth.Session), args.Error(1)
}

func (m *MockSessionRepository) UpdateLastSeen(ctx context.Context, id ulid.ULID, lastSeen time.Time) error {
	args := m.Called(ctx, id, lastSeen)
	return args.Error(0)
}

func (m *MockSessionRepository) Revoke(ctx context.Context, tokenHash string, at time.Time) error {
	args := m.Called(ctx, tokenHash, at)
	return args.Error(0)
}

func (m *MockSessionRepository) RevokeAllForAccount(ctx context.Context, accountID ulid.ULID, at time.Time) error {
	args := m.Called(ctx, accountID, at)
	return args.Error(0)
}

func (m *MockSessionRepository) RevokeAllForAccountExcept(ctx context.Context, accountID, keepID ulid.ULID, at time.Time) error {
	args := m.Called(ctx, accountID, keepID, at)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockTokenRepository is a mock for auth.TokenRepository.
type MockTokenRepository struct {
	mock.Mock
}

// NewMockTokenRepository creates a mock wired to the test lifecycle.
func NewMockTokenRepository(t *testing.T) *MockTokenRepository {
	t.Helper()
	m := &MockTokenRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTokenRepository) Create(ctx context.Context, token *auth.VerificationToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.VerificationToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.VerificationToken), args.Error(1)
}

func (m *MockTokenRepository) Consume(ctx context.Context, tokenHash string, purpose auth.TokenPurpose, now time.Time) (*auth.VerificationToken, error) {
	args := m.Called(ctx, tokenHash, purpose, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.VerificationToken), args.Error(1)
}

func (m *MockTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockPasswordHasher is a mock for auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a mock wired to the test lifecycle.
func NewMockPasswordHasher(t *testing.T) *MockPasswordHasher {
	t.Helper()
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(password, hash string) (bool, error) {
	args := m.Called(password, hash)
	return args.Bool(0), args.Error(1)
}

func (m *MockPasswordHasher) NeedsUpgrade(hash string) bool {
	args := m.Called(hash)
	return args.Bool(0)
}

// MockNotificationSender is a mock for auth.NotificationSender.
type MockNotificationSender struct {
	mock.Mock
}

// NewMockNotificationSender creates a mock wired to the test lifecycle.
func NewMockNotificationSender(t *testing.T) *MockNotificationSender {
	t.Helper()
	m := &MockNotificationSender{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockNotificationSender) SendVerificationEmail(ctx context.Context, recipient, verificationURL, displayName string) error {
	args := m.Called(ctx, recipient, verificationURL, displayName)
	return args.Error(0)
}

func (m *MockNotificationSender) SendResetPasswordEmail(ctx context.Context, recipient, resetURL, displayName string) error {
	args := m.Called(ctx, recipient, resetURL, displayName)
	return args.Error(0)
}
