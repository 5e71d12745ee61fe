// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/phishguard/phishguard/internal/auth"
)

// AccountRepository implements auth.AccountRepository using PostgreSQL.
type AccountRepository struct {
	db Querier
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db Querier) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create stores a new account. Email uniqueness is enforced by a unique
// index on LOWER(email); a violation surfaces as auth.ErrDuplicateEmail.
func (r *AccountRepository) Create(ctx context.Context, account *auth.Account) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO accounts (
			id, email, display_name, password_hash, email_verified,
			failed_attempts, locked_until, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		account.ID.String(),
		account.Email,
		account.DisplayName,
		account.PasswordHash,
		account.EmailVerified,
		account.FailedAttempts,
		account.LockedUntil,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("ACCOUNT_DUPLICATE_EMAIL").
				With("email", account.Email).
				Wrap(auth.ErrDuplicateEmail)
		}
		return oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "insert account").
			Wrap(err)
	}
	return nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, email, display_name, password_hash, email_verified,
		       failed_attempts, locked_until, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`, id.String())

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_ID_FAILED").
			With("id", id.String()).
			Wrap(err)
	}
	return account, nil
}

// GetByEmail retrieves an account by email (case-insensitive).
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*auth.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, email, display_name, password_hash, email_verified,
		       failed_attempts, locked_until, created_at, updated_at
		FROM accounts
		WHERE LOWER(email) = LOWER($1)
	`, email)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("email", email).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_EMAIL_FAILED").
			With("email", email).
			Wrap(err)
	}
	return account, nil
}

// Update updates an existing account.
func (r *AccountRepository) Update(ctx context.Context, account *auth.Account) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET email = $2, display_name = $3, password_hash = $4,
		    email_verified = $5, failed_attempts = $6, locked_until = $7,
		    updated_at = $8
		WHERE id = $1
	`,
		account.ID.String(),
		account.Email,
		account.DisplayName,
		account.PasswordHash,
		account.EmailVerified,
		account.FailedAttempts,
		account.LockedUntil,
		account.UpdatedAt,
	)
	if err != nil {
		return oops.Code("ACCOUNT_UPDATE_FAILED").
			With("id", account.ID.String()).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("id", account.ID.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// UpdatePassword updates only the password hash for an account.
func (r *AccountRepository) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET password_hash = $2, updated_at = now()
		WHERE id = $1
	`, id.String(), passwordHash)
	if err != nil {
		return oops.Code("ACCOUNT_UPDATE_PASSWORD_FAILED").
			With("id", id.String()).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// SetEmailVerified flips the email-verification flag.
func (r *AccountRepository) SetEmailVerified(ctx context.Context, id ulid.ULID, verified bool) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET email_verified = $2, updated_at = now()
		WHERE id = $1
	`, id.String(), verified)
	if err != nil {
		return oops.Code("ACCOUNT_SET_VERIFIED_FAILED").
			With("id", id.String()).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

func scanAccount(row pgx.Row) (*auth.Account, error) {
	var account auth.Account
	var idStr string

	err := row.Scan(
		&idStr,
		&account.Email,
		&account.DisplayName,
		&account.PasswordHash,
		&account.EmailVerified,
		&account.FailedAttempts,
		&account.LockedUntil,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers classify pgx.ErrNoRows
	}

	account.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("ACCOUNT_INVALID_ID").
			With("id", idStr).
			Wrap(err)
	}
	return &account, nil
}
