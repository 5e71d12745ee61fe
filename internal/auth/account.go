// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

package auth

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Display name validation constraints.
const (
	MinDisplayNameLength = 2
	MaxDisplayNameLength = 100
)

// emailRegex is a light structural check: one @, no whitespace, a dot in
// the domain. Real deliverability is proven by the verification mail.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Account represents a registered dashboard identity.
type Account struct {
	ID             ulid.ULID
	Email          string
	DisplayName    string
	PasswordHash   string
	EmailVerified  bool
	FailedAttempts int
	LockedUntil    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewAccount creates a validated Account with a fresh ULID.
// The email is stored lowercased; uniqueness is enforced by the store.
func NewAccount(email, displayName, passwordHash string) (*Account, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidateDisplayName(displayName); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("AUTH_INVALID_HASH").Errorf("password hash cannot be empty")
	}

	now := time.Now()
	return &Account{
		ID:           ulid.Make(),
		Email:        NormalizeEmail(email),
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// NormalizeEmail lowercases and trims an email address for comparison
// and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the structural shape of an email address.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if len(email) > 254 {
		return oops.Code("AUTH_INVALID_EMAIL").
			With("max", 254).
			Errorf("email must be at most 254 characters")
	}
	if !emailRegex.MatchString(email) {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email address is not valid")
	}
	return nil
}

// ValidateDisplayName checks display name length bounds.
func ValidateDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) < MinDisplayNameLength {
		return oops.Code("AUTH_INVALID_NAME").
			With("min", MinDisplayNameLength).
			Errorf("display name must be at least %d characters", MinDisplayNameLength)
	}
	if len(name) > MaxDisplayNameLength {
		return oops.Code("AUTH_INVALID_NAME").
			With("max", MaxDisplayNameLength).
			Errorf("display name must be at most %d characters", MaxDisplayNameLength)
	}
	return nil
}

// IsLocked returns true if the account is currently locked out.
func (a *Account) IsLocked() bool {
	return IsLockedOut(a.LockedUntil)
}

// RecordFailure increments the failure counter and sets lockout if the
// threshold is reached.
func (a *Account) RecordFailure() {
	a.FailedAttempts++
	a.LockedUntil = ComputeLockoutTime(a.FailedAttempts)
	a.UpdatedAt = time.Now()
}

// RecordSuccess resets the failure counter and lockout.
func (a *Account) RecordSuccess() {
	a.FailedAttempts = 0
	a.LockedUntil = nil
	a.UpdatedAt = time.Now()
}

// AccountRepository manages account persistence.
type AccountRepository interface {
	// Create stores a new account. Returns ErrDuplicateEmail if the email
	// is already registered (case-insensitive, enforced by the store).
	Create(ctx context.Context, account *Account) error

	// GetByID retrieves an account by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Account, error)

	// GetByEmail retrieves an account by email (case-insensitive).
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// Update updates an existing account.
	Update(ctx context.Context, account *Account) error

	// UpdatePassword updates only the password hash for an account.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error

	// SetEmailVerified flips the email-verification flag.
	SetEmailVerified(ctx context.Context, id ulid.ULID, verified bool) error
}
