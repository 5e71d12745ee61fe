// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// SessionManager establishes, validates, and revokes sessions.
// All session state lives in the repository; the manager itself is
// stateless and safe for concurrent use.
type SessionManager struct {
	sessions SessionRepository
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionManager creates a SessionManager. A non-positive ttl falls
// back to DefaultSessionExpiry.
func NewSessionManager(sessions SessionRepository, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionExpiry
	}
	return &SessionManager{
		sessions: sessions,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create issues an opaque session token for the account and persists the
// session. Returns the session and the plaintext token for the cookie.
func (m *SessionManager) Create(ctx context.Context, accountID ulid.ULID, userAgent, ipAddress string) (*Session, string, error) {
	token, tokenHash, err := GenerateSessionToken()
	if err != nil {
		return nil, "", err
	}

	session, err := NewSession(accountID, tokenHash, userAgent, ipAddress, m.now().Add(m.ttl))
	if err != nil {
		return nil, "", err
	}

	if err := m.sessions.Create(ctx, session); err != nil {
		return nil, "", oops.Code("SESSION_CREATE_FAILED").
			With("account_id", accountID.String()).
			Wrap(err)
	}

	return session, token, nil
}

// Validate resolves a plaintext token to its live session.
// Absent, expired, and revoked sessions all return (nil, nil): absence is
// a normal outcome, not an error. Errors are reserved for store failures.
// Touches LastSeenAt on success, best effort.
func (m *SessionManager) Validate(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}

	session, err := m.sessions.GetByTokenHash(ctx, HashSessionToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, oops.Code("SESSION_VALIDATE_FAILED").Wrap(err)
	}

	if !session.IsValidAt(m.now()) {
		return nil, nil
	}

	_ = m.sessions.UpdateLastSeen(ctx, session.ID, m.now()) //nolint:errcheck // Best effort, validation succeeds regardless

	return session, nil
}

// Revoke marks the session for the given token as revoked. Idempotent:
// revoking an absent or already-revoked session is a no-op.
func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.sessions.Revoke(ctx, HashSessionToken(token), m.now()); err != nil {
		return oops.Code("SESSION_REVOKE_FAILED").Wrap(err)
	}
	return nil
}

// RevokeAllForAccount revokes every active session for the account.
// Used on security-sensitive changes such as a password reset.
func (m *SessionManager) RevokeAllForAccount(ctx context.Context, accountID ulid.ULID) error {
	if err := m.sessions.RevokeAllForAccount(ctx, accountID, m.now()); err != nil {
		return oops.Code("SESSION_REVOKE_FAILED").
			With("account_id", accountID.String()).
			Wrap(err)
	}
	return nil
}

// RevokeOthers revokes every active session for the account except the
// one identified by keepID.
func (m *SessionManager) RevokeOthers(ctx context.Context, accountID, keepID ulid.ULID) error {
	if err := m.sessions.RevokeAllForAccountExcept(ctx, accountID, keepID, m.now()); err != nil {
		return oops.Code("SESSION_REVOKE_FAILED").
			With("account_id", accountID.String()).
			Wrap(err)
	}
	return nil
}
