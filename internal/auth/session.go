// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Session token configuration.
const (
	SessionTokenBytes    = 32                 // 32 bytes = 64 hex chars
	DefaultSessionExpiry = 7 * 24 * time.Hour // config-overridable
)

// Session represents an authenticated browser context.
// The plaintext token lives only in the client cookie; the store keeps
// its SHA256 hash.
type Session struct {
	ID         ulid.ULID
	AccountID  ulid.ULID
	TokenHash  string
	UserAgent  string
	IPAddress  string
	ExpiresAt  time.Time
	RevokedAt  *time.Time
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// NewSession creates a validated Session instance.
// UserAgent and IPAddress are optional and may be empty.
func NewSession(accountID ulid.ULID, tokenHash, userAgent, ipAddress string, expiresAt time.Time) (*Session, error) {
	if accountID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("SESSION_INVALID_ACCOUNT").Errorf("account ID cannot be zero")
	}
	if tokenHash == "" {
		return nil, oops.Code("SESSION_INVALID_HASH").Errorf("token hash cannot be empty")
	}
	if expiresAt.IsZero() {
		return nil, oops.Code("SESSION_INVALID_EXPIRY").Errorf("expiry time cannot be zero")
	}

	now := time.Now()
	return &Session{
		ID:         ulid.Make(),
		AccountID:  accountID,
		TokenHash:  tokenHash,
		UserAgent:  userAgent,
		IPAddress:  ipAddress,
		ExpiresAt:  expiresAt,
		CreatedAt:  now,
		LastSeenAt: now,
	}, nil
}

// IsRevoked returns true if the session has been revoked.
func (s *Session) IsRevoked() bool {
	return s.RevokedAt != nil
}

// IsExpiredAt returns true if the session would be expired at the given
// time. Expired and Revoked are both terminal; there is no way back to
// Active.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return t.After(s.ExpiresAt)
}

// IsValidAt returns true if the session authorizes requests at the given
// time.
func (s *Session) IsValidAt(t time.Time) bool {
	return !s.IsRevoked() && !s.IsExpiredAt(t)
}

// GenerateSessionToken creates a secure random token and its hash.
// Returns (plaintext_token, sha256_hash, error).
// The plaintext token is sent to the client; the hash is stored in the database.
func GenerateSessionToken() (token, hash string, err error) {
	tokenBytes := make([]byte, SessionTokenBytes)
	if _, err = rand.Read(tokenBytes); err != nil {
		return "", "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("requested_bytes", SessionTokenBytes).
			Wrap(err)
	}

	token = hex.EncodeToString(tokenBytes)
	hash = HashSessionToken(token)

	return token, hash, nil
}

// HashSessionToken computes the SHA256 hash of a session token.
func HashSessionToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// SessionRepository manages session persistence.
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// GetByTokenHash retrieves a session by its token hash.
	GetByTokenHash(ctx context.Context, tokenHash string) (*Session, error)

	// GetByAccount retrieves all non-revoked sessions for an account.
	GetByAccount(ctx context.Context, accountID ulid.ULID) ([]*Session, error)

	// UpdateLastSeen updates the LastSeenAt timestamp for a session.
	UpdateLastSeen(ctx context.Context, id ulid.ULID, lastSeen time.Time) error

	// Revoke marks the session with the given token hash as revoked.
	// No-op if the session is absent or already revoked.
	Revoke(ctx context.Context, tokenHash string, at time.Time) error

	// RevokeAllForAccount revokes every active session for an account.
	RevokeAllForAccount(ctx context.Context, accountID ulid.ULID, at time.Time) error

	// RevokeAllForAccountExcept revokes every active session for an
	// account except the one with the given ID.
	RevokeAllForAccountExcept(ctx context.Context, accountID, keepID ulid.ULID, at time.Time) error

	// DeleteExpired removes expired and revoked sessions and returns the
	// count of deleted records.
	DeleteExpired(ctx context.Context) (int64, error)
}
