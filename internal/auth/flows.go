// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/phishguard/phishguard/pkg/errutil"
)

// NotificationSender delivers credential-flow mails. Implementations are
// best-effort collaborators: Register treats failures as log-only, while
// explicit "send now" actions may surface them.
type NotificationSender interface {
	// SendVerificationEmail mails a verify-email link.
	SendVerificationEmail(ctx context.Context, recipient, verificationURL, displayName string) error

	// SendResetPasswordEmail mails a password-reset link.
	SendResetPasswordEmail(ctx context.Context, recipient, resetURL, displayName string) error
}

// dummyPasswordHash is used when an account doesn't exist to prevent timing
// attacks. We still run password verification to make response time consistent.
// This is NOT a real credential - it's a fake hash that will never match any password.
//
//nolint:gosec // G101: This is an intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// FlowsConfig carries the collaborators for Flows. Metrics and Logger
// are optional.
type FlowsConfig struct {
	Accounts AccountRepository
	Sessions *SessionManager
	Tokens   *TokenIssuer
	Hasher   PasswordHasher
	Sender   NotificationSender
	Resend   *ResendLimiter
	Metrics  *Metrics
	Logger   *slog.Logger

	// Sleep overrides the wait used for progressive login-failure
	// delays. Nil means a real context-aware timer.
	Sleep func(context.Context, time.Duration)

	// BaseURL is the externally visible origin used to build mailed
	// links, e.g. "https://phishguard.example.com".
	BaseURL string
}

// Flows orchestrates the credential lifecycle end to end: register,
// verify-email, login, recovery, reset, change-password, logout. It holds
// no mutable state of its own and is safe for concurrent use.
type Flows struct {
	accounts AccountRepository
	sessions *SessionManager
	tokens   *TokenIssuer
	hasher   PasswordHasher
	sender   NotificationSender
	resend   *ResendLimiter
	metrics  *Metrics
	logger   *slog.Logger
	baseURL  string
	sleep    func(context.Context, time.Duration)
}

// NewFlows creates a Flows from its configuration.
func NewFlows(cfg FlowsConfig) *Flows {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return &Flows{
		accounts: cfg.Accounts,
		sessions: cfg.Sessions,
		tokens:   cfg.Tokens,
		hasher:   cfg.Hasher,
		sender:   cfg.Sender,
		resend:   cfg.Resend,
		metrics:  cfg.Metrics,
		logger:   logger,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		sleep:    sleep,
	}
}

// sleepContext waits for the duration or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// invalidCredentials returns the uniform login failure. Unknown email and
// wrong password produce bit-identical payloads so responses cannot be
// used to enumerate accounts.
func invalidCredentials() error {
	return oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid email or password")
}

func weakPassword(result PolicyResult) error {
	return oops.Code("AUTH_WEAK_PASSWORD").
		With("violations", result.Violations).
		With("tip", result.PrimaryTip()).
		Errorf("password does not meet strength requirements")
}

// Register creates an unverified account and mails a verification link.
// A failed mail send is logged, not surfaced: the account stays usable
// and the user can request a resend.
func (f *Flows) Register(ctx context.Context, displayName, email, password, confirmPassword string) (*Account, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidateDisplayName(displayName); err != nil {
		return nil, err
	}
	if password != confirmPassword {
		return nil, oops.Code("AUTH_PASSWORD_MISMATCH").Errorf("passwords do not match")
	}
	if result := EvaluatePassword(password); !result.Valid {
		return nil, weakPassword(result)
	}

	hash, err := f.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").Wrap(err)
	}

	account, err := NewAccount(email, displayName, hash)
	if err != nil {
		return nil, err
	}

	if err := f.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, oops.Code("AUTH_ACCOUNT_EXISTS").
				Errorf("an account with this email already exists")
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").Wrap(err)
	}
	f.metrics.RegistrationCreated()

	if err := f.sendVerification(ctx, account); err != nil {
		errutil.LogWarn(f.logger, "verification mail not sent after registration", err)
	}

	return account, nil
}

// VerifyEmail redeems a verify-email token and flips the account's
// verification flag. Token errors stay distinguishable so the UI can
// offer "resend" for expiry and "already verified" handling for reuse.
func (f *Flows) VerifyEmail(ctx context.Context, token string) error {
	accountID, err := f.tokens.Redeem(ctx, token, PurposeVerifyEmail)
	f.metrics.TokenRedeemed(PurposeVerifyEmail, err == nil)
	if err != nil {
		return err
	}

	if err := f.accounts.SetEmailVerified(ctx, accountID, true); err != nil {
		return oops.Code("AUTH_VERIFY_FAILED").
			With("account_id", accountID.String()).
			Wrap(err)
	}
	return nil
}

// ResendVerification issues a fresh verification token and mails it.
// Always returns nil: whether the email is registered, already verified,
// rate limited, or the send failed is never revealed to the caller.
// Previously issued tokens stay independently valid until they expire.
func (f *Flows) ResendVerification(ctx context.Context, email string) error {
	if err := ValidateEmail(email); err != nil {
		return nil
	}
	if f.resend != nil && !f.resend.Allow(email) {
		return nil
	}

	account, err := f.accounts.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			errutil.LogError(f.logger, "resend verification lookup failed", err)
		}
		return nil
	}
	if account.EmailVerified {
		return nil
	}

	if err := f.sendVerification(ctx, account); err != nil {
		errutil.LogWarn(f.logger, "verification mail not sent on resend", err)
	}
	return nil
}

// Login authenticates an account and creates a session. Verification of
// the email address gates dashboard features, not login itself.
// Uses constant-time operations to prevent timing-based enumeration.
func (f *Flows) Login(ctx context.Context, email, password, userAgent, ipAddress string) (*Session, string, error) {
	account, lookupErr := f.accounts.GetByEmail(ctx, NormalizeEmail(email))

	var targetHash string
	var accountExists bool

	if lookupErr != nil {
		if errors.Is(lookupErr, ErrNotFound) {
			// Verify against the dummy hash to keep timing uniform.
			targetHash = dummyPasswordHash
		} else {
			return nil, "", oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get account by email").
				Wrap(lookupErr)
		}
	} else {
		targetHash = account.PasswordHash
		accountExists = true
	}

	valid, verifyErr := f.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if !accountExists {
			f.metrics.LoginAttempt(false)
			return nil, "", invalidCredentials()
		}
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if !accountExists || !valid {
		if accountExists {
			account.RecordFailure()
			_ = f.accounts.Update(ctx, account) //nolint:errcheck // Best effort
			// Progressive delay on repeated failures below the lockout
			// threshold. The lockout takes over past it.
			f.sleep(ctx, FailureDelay(account.FailedAttempts))
		}
		f.metrics.LoginAttempt(false)
		return nil, "", invalidCredentials()
	}

	// Check lockout AFTER password verification to maintain constant time.
	if account.IsLocked() {
		f.metrics.LoginAttempt(false)
		return nil, "", oops.Code("AUTH_ACCOUNT_LOCKED").
			With("locked_until", account.LockedUntil).
			Errorf("account is temporarily locked")
	}

	account.RecordSuccess()

	// Transparent hash upgrade for legacy (non-argon2id) credentials.
	if f.hasher.NeedsUpgrade(account.PasswordHash) {
		if newHash, hashErr := f.hasher.Hash(password); hashErr == nil {
			account.PasswordHash = newHash
		}
	}

	_ = f.accounts.Update(ctx, account) //nolint:errcheck // Best effort, login succeeds regardless

	session, token, err := f.sessions.Create(ctx, account.ID, userAgent, ipAddress)
	if err != nil {
		return nil, "", err
	}

	f.metrics.LoginAttempt(true)
	return session, token, nil
}

// RequestPasswordRecovery issues a reset token and mails it when the
// email belongs to an account. Always returns nil regardless of lookup
// outcome (anti-enumeration); real failures are logged server-side only.
func (f *Flows) RequestPasswordRecovery(ctx context.Context, email string) error {
	if err := ValidateEmail(email); err != nil {
		return nil
	}
	if f.resend != nil && !f.resend.Allow(email) {
		return nil
	}

	account, err := f.accounts.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			errutil.LogError(f.logger, "password recovery lookup failed", err)
		}
		return nil
	}

	token, err := f.tokens.Issue(ctx, account.ID, PurposeResetPassword, ResetPasswordTokenTTL)
	if err != nil {
		errutil.LogError(f.logger, "reset token issue failed", err)
		return nil
	}
	f.metrics.TokenIssued(PurposeResetPassword)

	resetURL := f.flowURL("/reset-password", token)
	if err := f.sender.SendResetPasswordEmail(ctx, account.Email, resetURL, account.DisplayName); err != nil {
		f.metrics.MailSent("reset-password", false)
		errutil.LogWarn(f.logger, "reset mail not sent", err)
		return nil
	}
	f.metrics.MailSent("reset-password", true)
	return nil
}

// ResetPassword redeems a reset token and replaces the account credential.
// All sessions for the account are revoked: whoever requested the reset
// may not be the only one holding a session.
func (f *Flows) ResetPassword(ctx context.Context, token, newPassword, confirmNewPassword string) error {
	if newPassword != confirmNewPassword {
		return oops.Code("AUTH_PASSWORD_MISMATCH").Errorf("passwords do not match")
	}

	accountID, err := f.tokens.Redeem(ctx, token, PurposeResetPassword)
	f.metrics.TokenRedeemed(PurposeResetPassword, err == nil)
	if err != nil {
		return err
	}

	if result := EvaluatePassword(newPassword); !result.Valid {
		return weakPassword(result)
	}

	hash, err := f.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code("AUTH_RESET_FAILED").Wrap(err)
	}

	if err := f.accounts.UpdatePassword(ctx, accountID, hash); err != nil {
		return oops.Code("AUTH_RESET_FAILED").
			With("account_id", accountID.String()).
			Wrap(err)
	}

	if err := f.sessions.RevokeAllForAccount(ctx, accountID); err != nil {
		errutil.LogError(f.logger, "session revocation after reset failed", err)
	}
	return nil
}

// ChangePassword replaces the credential for an authenticated account.
// The current-password check runs first: when both the current password
// is wrong and the new one equals it, only InvalidCredentials surfaces.
// Other sessions are revoked only when the caller asks for it.
func (f *Flows) ChangePassword(ctx context.Context, sessionToken, currentPassword, newPassword, confirmNewPassword string, revokeOthers bool) error {
	if newPassword != confirmNewPassword {
		return oops.Code("AUTH_PASSWORD_MISMATCH").Errorf("passwords do not match")
	}

	session, err := f.sessions.Validate(ctx, sessionToken)
	if err != nil {
		return err
	}
	if session == nil {
		return oops.Code("SESSION_INVALID").Errorf("session is not valid")
	}

	account, err := f.accounts.GetByID(ctx, session.AccountID)
	if err != nil {
		return oops.Code("AUTH_CHANGE_FAILED").
			With("account_id", session.AccountID.String()).
			Wrap(err)
	}

	valid, err := f.hasher.Verify(currentPassword, account.PasswordHash)
	if err != nil {
		return oops.Code("AUTH_CHANGE_FAILED").
			With("operation", "verify current password").
			Wrap(err)
	}
	if !valid {
		return invalidCredentials()
	}

	if newPassword == currentPassword {
		return oops.Code("AUTH_SAME_PASSWORD").
			Errorf("new password must be different from the current password")
	}

	if result := EvaluatePassword(newPassword); !result.Valid {
		return weakPassword(result)
	}

	hash, err := f.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code("AUTH_CHANGE_FAILED").Wrap(err)
	}

	if err := f.accounts.UpdatePassword(ctx, account.ID, hash); err != nil {
		return oops.Code("AUTH_CHANGE_FAILED").
			With("account_id", account.ID.String()).
			Wrap(err)
	}

	if revokeOthers {
		if err := f.sessions.RevokeOthers(ctx, account.ID, session.ID); err != nil {
			errutil.LogError(f.logger, "session revocation after password change failed", err)
		}
	}
	return nil
}

// Logout revokes the session for the given token. Idempotent.
func (f *Flows) Logout(ctx context.Context, sessionToken string) error {
	return f.sessions.Revoke(ctx, sessionToken)
}

func (f *Flows) sendVerification(ctx context.Context, account *Account) error {
	token, err := f.tokens.Issue(ctx, account.ID, PurposeVerifyEmail, VerifyEmailTokenTTL)
	if err != nil {
		return err
	}
	f.metrics.TokenIssued(PurposeVerifyEmail)

	verifyURL := f.flowURL("/verify-email", token)
	if err := f.sender.SendVerificationEmail(ctx, account.Email, verifyURL, account.DisplayName); err != nil {
		f.metrics.MailSent("verify-email", false)
		return err
	}
	f.metrics.MailSent("verify-email", true)
	return nil
}

func (f *Flows) flowURL(path, token string) string {
	return f.baseURL + path + "?token=" + url.QueryEscape(token)
}
