// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/phishguard/phishguard/internal/auth"
)

// TokenRepository implements auth.TokenRepository using PostgreSQL.
type TokenRepository struct {
	db Querier
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db Querier) *TokenRepository {
	return &TokenRepository{db: db}
}

// Create stores a new verification token.
func (r *TokenRepository) Create(ctx context.Context, token *auth.VerificationToken) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO verification_tokens (
			id, account_id, token_hash, purpose,
			expires_at, consumed_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		token.ID.String(),
		token.AccountID.String(),
		token.TokenHash,
		string(token.Purpose),
		token.ExpiresAt,
		token.ConsumedAt,
		token.CreatedAt,
	)
	if err != nil {
		return oops.Code("TOKEN_CREATE_FAILED").
			With("purpose", string(token.Purpose)).
			Wrap(err)
	}
	return nil
}

// GetByTokenHash retrieves a token by its hash regardless of state.
func (r *TokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.VerificationToken, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, account_id, token_hash, purpose,
		       expires_at, consumed_at, created_at
		FROM verification_tokens
		WHERE token_hash = $1
	`, tokenHash)

	token, err := scanToken(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TOKEN_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("TOKEN_GET_FAILED").Wrap(err)
	}
	return token, nil
}

// Consume atomically marks the token consumed. The conditional UPDATE is
// the at-most-once guarantee: under concurrent redemption exactly one
// caller matches the row, everyone else gets auth.ErrNotFound.
func (r *TokenRepository) Consume(ctx context.Context, tokenHash string, purpose auth.TokenPurpose, now time.Time) (*auth.VerificationToken, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE verification_tokens
		SET consumed_at = $3
		WHERE token_hash = $1 AND purpose = $2
		  AND consumed_at IS NULL AND expires_at > $3
		RETURNING id, account_id, token_hash, purpose,
		          expires_at, consumed_at, created_at
	`, tokenHash, string(purpose), now)

	token, err := scanToken(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TOKEN_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("TOKEN_CONSUME_FAILED").
			With("purpose", string(purpose)).
			Wrap(err)
	}
	return token, nil
}

// DeleteExpired removes expired and consumed tokens.
func (r *TokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM verification_tokens
		WHERE expires_at < now() OR consumed_at IS NOT NULL
	`)
	if err != nil {
		return 0, oops.Code("TOKEN_GC_FAILED").Wrap(err)
	}
	return tag.RowsAffected(), nil
}

func scanToken(row pgx.Row) (*auth.VerificationToken, error) {
	var token auth.VerificationToken
	var idStr, accountIDStr, purposeStr string

	err := row.Scan(
		&idStr,
		&accountIDStr,
		&token.TokenHash,
		&purposeStr,
		&token.ExpiresAt,
		&token.ConsumedAt,
		&token.CreatedAt,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers classify pgx.ErrNoRows
	}

	token.Purpose = auth.TokenPurpose(purposeStr)
	if token.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.Code("TOKEN_INVALID_ID").With("id", idStr).Wrap(err)
	}
	if token.AccountID, err = ulid.Parse(accountIDStr); err != nil {
		return nil, oops.Code("TOKEN_INVALID_ID").With("account_id", accountIDStr).Wrap(err)
	}
	return &token, nil
}
