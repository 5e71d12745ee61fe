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

// TokenPurpose scopes a verification token to a single flow. A token
// issued for one purpose can never be redeemed for another.
type TokenPurpose string

// Supported token purposes.
const (
	PurposeVerifyEmail   TokenPurpose = "verify-email"
	PurposeResetPassword TokenPurpose = "reset-password"
)

// Valid returns true for a known purpose.
func (p TokenPurpose) Valid() bool {
	return p == PurposeVerifyEmail || p == PurposeResetPassword
}

// Verification token configuration.
const (
	VerificationTokenBytes = 32 // 32 bytes = 64 hex chars

	VerifyEmailTokenTTL   = 24 * time.Hour
	ResetPasswordTokenTTL = time.Hour
)

// VerificationToken is a single-use, time-bound secret proving control
// of an email inbox. Possession of the plaintext token is the sole proof;
// the store keeps only its hash plus the authoritative consumed state.
type VerificationToken struct {
	ID         ulid.ULID
	AccountID  ulid.ULID
	TokenHash  string
	Purpose    TokenPurpose
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

// IsConsumed returns true if the token has already been redeemed.
func (t *VerificationToken) IsConsumed() bool {
	return t.ConsumedAt != nil
}

// IsExpiredAt returns true if the token would be expired at the given time.
func (t *VerificationToken) IsExpiredAt(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// GenerateVerificationToken creates a secure random token and its hash.
// Returns (plaintext_token, sha256_hash, error).
// The plaintext token goes into the mailed URL; the hash is stored.
func GenerateVerificationToken() (token, hash string, err error) {
	tokenBytes := make([]byte, VerificationTokenBytes)
	if _, err = rand.Read(tokenBytes); err != nil {
		return "", "", oops.Code("TOKEN_GENERATE_FAILED").Wrap(err)
	}

	token = hex.EncodeToString(tokenBytes)
	hash = HashVerificationToken(token)

	return token, hash, nil
}

// HashVerificationToken computes the SHA256 hash of a token.
func HashVerificationToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// TokenRepository manages verification token persistence.
type TokenRepository interface {
	// Create stores a new verification token.
	Create(ctx context.Context, token *VerificationToken) error

	// GetByTokenHash retrieves a token by its hash regardless of state.
	// Used to classify redemption failures.
	GetByTokenHash(ctx context.Context, tokenHash string) (*VerificationToken, error)

	// Consume atomically marks the token consumed and returns it.
	// The store must apply a compare-and-set (consumed-at still null,
	// expiry still in the future, purpose matching) so that concurrent
	// redemptions of the same token succeed at most once. Returns
	// ErrNotFound when the compare-and-set matches no row.
	Consume(ctx context.Context, tokenHash string, purpose TokenPurpose, now time.Time) (*VerificationToken, error)

	// DeleteExpired removes expired and consumed tokens and returns the
	// count of deleted records.
	DeleteExpired(ctx context.Context) (int64, error)
}
