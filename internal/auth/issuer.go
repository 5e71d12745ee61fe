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

// TokenIssuer creates and redeems single-use verification tokens.
// Redemption is at-most-once: the repository's compare-and-set is the
// authority, not a read-then-write in this layer.
type TokenIssuer struct {
	tokens TokenRepository
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer backed by the given repository.
func NewTokenIssuer(tokens TokenRepository) *TokenIssuer {
	return &TokenIssuer{
		tokens: tokens,
		now:    time.Now,
	}
}

// Issue generates an unguessable token bound to the account and purpose,
// persists its hash with expiry now+ttl, and returns the plaintext token
// for embedding in a mailed URL.
func (i *TokenIssuer) Issue(ctx context.Context, accountID ulid.ULID, purpose TokenPurpose, ttl time.Duration) (string, error) {
	if accountID.Compare(ulid.ULID{}) == 0 {
		return "", oops.Code("TOKEN_INVALID_ACCOUNT").Errorf("account ID cannot be zero")
	}
	if !purpose.Valid() {
		return "", oops.Code("TOKEN_INVALID_PURPOSE").
			With("purpose", string(purpose)).
			Errorf("unknown token purpose")
	}
	if ttl <= 0 {
		return "", oops.Code("TOKEN_INVALID_TTL").Errorf("ttl must be positive")
	}

	plaintext, hash, err := GenerateVerificationToken()
	if err != nil {
		return "", err
	}

	now := i.now()
	record := &VerificationToken{
		ID:        ulid.Make(),
		AccountID: accountID,
		TokenHash: hash,
		Purpose:   purpose,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	if err := i.tokens.Create(ctx, record); err != nil {
		return "", oops.Code("TOKEN_ISSUE_FAILED").
			With("purpose", string(purpose)).
			Wrap(err)
	}

	return plaintext, nil
}

// Redeem consumes a token and returns the bound account ID.
// Fails with TOKEN_INVALID if the token is absent or issued for another
// purpose, TOKEN_EXPIRED if past expiry, and TOKEN_ALREADY_USED if it was
// consumed before (including losing a concurrent redemption race).
func (i *TokenIssuer) Redeem(ctx context.Context, token string, purpose TokenPurpose) (ulid.ULID, error) {
	if token == "" {
		return ulid.ULID{}, oops.Code("TOKEN_INVALID").Errorf("token is not valid")
	}

	now := i.now()
	hash := HashVerificationToken(token)

	record, err := i.tokens.Consume(ctx, hash, purpose, now)
	if err == nil {
		return record.AccountID, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return ulid.ULID{}, oops.Code("TOKEN_REDEEM_FAILED").
			With("purpose", string(purpose)).
			Wrap(err)
	}

	// The compare-and-set matched nothing. Look the token up to tell the
	// caller which remediation applies.
	return ulid.ULID{}, i.classifyRedeemFailure(ctx, hash, purpose, now)
}

func (i *TokenIssuer) classifyRedeemFailure(ctx context.Context, hash string, purpose TokenPurpose, now time.Time) error {
	record, err := i.tokens.GetByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("TOKEN_INVALID").Errorf("token is not valid")
		}
		return oops.Code("TOKEN_REDEEM_FAILED").
			With("purpose", string(purpose)).
			Wrap(err)
	}

	switch {
	case record.Purpose != purpose:
		return oops.Code("TOKEN_INVALID").Errorf("token is not valid")
	case record.IsConsumed():
		return oops.Code("TOKEN_ALREADY_USED").Errorf("token has already been used")
	case record.IsExpiredAt(now):
		return oops.Code("TOKEN_EXPIRED").Errorf("token has expired")
	default:
		// Consumed between our compare-and-set and this read.
		return oops.Code("TOKEN_ALREADY_USED").Errorf("token has already been used")
	}
}
