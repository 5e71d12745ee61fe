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

// SessionRepository implements auth.SessionRepository using PostgreSQL.
type SessionRepository struct {
	db Querier
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db Querier) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create stores a new session.
func (r *SessionRepository) Create(ctx context.Context, session *auth.Session) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sessions (
			id, account_id, token_hash, user_agent, ip_address,
			expires_at, revoked_at, created_at, last_seen_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		session.ID.String(),
		session.AccountID.String(),
		session.TokenHash,
		session.UserAgent,
		session.IPAddress,
		session.ExpiresAt,
		session.RevokedAt,
		session.CreatedAt,
		session.LastSeenAt,
	)
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").
			With("account_id", session.AccountID.String()).
			Wrap(err)
	}
	return nil
}

// GetByTokenHash retrieves a session by its token hash.
func (r *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.Session, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, account_id, token_hash, user_agent, ip_address,
		       expires_at, revoked_at, created_at, last_seen_at
		FROM sessions
		WHERE token_hash = $1
	`, tokenHash)

	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_FAILED").Wrap(err)
	}
	return session, nil
}

// GetByAccount retrieves all non-revoked sessions for an account.
func (r *SessionRepository) GetByAccount(ctx context.Context, accountID ulid.ULID) ([]*auth.Session, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, account_id, token_hash, user_agent, ip_address,
		       expires_at, revoked_at, created_at, last_seen_at
		FROM sessions
		WHERE account_id = $1 AND revoked_at IS NULL
		ORDER BY created_at DESC
	`, accountID.String())
	if err != nil {
		return nil, oops.Code("SESSION_LIST_FAILED").
			With("account_id", accountID.String()).
			Wrap(err)
	}
	defer rows.Close()

	var sessions []*auth.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, oops.Code("SESSION_LIST_FAILED").
				With("account_id", accountID.String()).
				Wrap(err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("SESSION_LIST_FAILED").
			With("account_id", accountID.String()).
			Wrap(err)
	}
	return sessions, nil
}

// UpdateLastSeen updates the LastSeenAt timestamp for a session.
func (r *SessionRepository) UpdateLastSeen(ctx context.Context, id ulid.ULID, lastSeen time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE sessions SET last_seen_at = $2 WHERE id = $1
	`, id.String(), lastSeen)
	if err != nil {
		return oops.Code("SESSION_TOUCH_FAILED").
			With("id", id.String()).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("SESSION_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// Revoke marks the session with the given token hash as revoked.
// Idempotent: absent or already-revoked sessions are a no-op.
func (r *SessionRepository) Revoke(ctx context.Context, tokenHash string, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE sessions SET revoked_at = $2
		WHERE token_hash = $1 AND revoked_at IS NULL
	`, tokenHash, at)
	if err != nil {
		return oops.Code("SESSION_REVOKE_FAILED").Wrap(err)
	}
	return nil
}

// RevokeAllForAccount revokes every active session for an account.
func (r *SessionRepository) RevokeAllForAccount(ctx context.Context, accountID ulid.ULID, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE sessions SET revoked_at = $2
		WHERE account_id = $1 AND revoked_at IS NULL
	`, accountID.String(), at)
	if err != nil {
		return oops.Code("SESSION_REVOKE_FAILED").
			With("account_id", accountID.String()).
			Wrap(err)
	}
	return nil
}

// RevokeAllForAccountExcept revokes every active session for an account
// except the one with the given ID.
func (r *SessionRepository) RevokeAllForAccountExcept(ctx context.Context, accountID, keepID ulid.ULID, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE sessions SET revoked_at = $3
		WHERE account_id = $1 AND id <> $2 AND revoked_at IS NULL
	`, accountID.String(), keepID.String(), at)
	if err != nil {
		return oops.Code("SESSION_REVOKE_FAILED").
			With("account_id", accountID.String()).
			Wrap(err)
	}
	return nil
}

// DeleteExpired removes expired and revoked sessions.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM sessions
		WHERE expires_at < now() OR revoked_at IS NOT NULL
	`)
	if err != nil {
		return 0, oops.Code("SESSION_GC_FAILED").Wrap(err)
	}
	return tag.RowsAffected(), nil
}

func scanSession(row pgx.Row) (*auth.Session, error) {
	var session auth.Session
	var idStr, accountIDStr string

	err := row.Scan(
		&idStr,
		&accountIDStr,
		&session.TokenHash,
		&session.UserAgent,
		&session.IPAddress,
		&session.ExpiresAt,
		&session.RevokedAt,
		&session.CreatedAt,
		&session.LastSeenAt,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers classify pgx.ErrNoRows
	}

	if session.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.Code("SESSION_INVALID_ID").With("id", idStr).Wrap(err)
	}
	if session.AccountID, err = ulid.Parse(accountIDStr); err != nil {
		return nil, oops.Code("SESSION_INVALID_ID").With("account_id", accountIDStr).Wrap(err)
	}
	return &session, nil
}
