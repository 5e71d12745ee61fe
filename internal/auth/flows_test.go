// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phishguard/phishguard/internal/auth"
	"github.com/phishguard/phishguard/internal/auth/mocks"
	"github.com/phishguard/phishguard/pkg/errutil"
)

const testBaseURL = "https://phishguard.test"

type flowsFixture struct {
	accounts *mocks.MockAccountRepository
	sessions *mocks.MockSessionRepository
	tokens   *mocks.MockTokenRepository
	hasher   *mocks.MockPasswordHasher
	sender   *mocks.MockNotificationSender
	flows    *auth.Flows
	delays   []time.Duration
}

func newFlowsFixture(t *testing.T, resend *auth.ResendLimiter) *flowsFixture {
	t.Helper()
	f := &flowsFixture{
		accounts: mocks.NewMockAccountRepository(t),
		sessions: mocks.NewMockSessionRepository(t),
		tokens:   mocks.NewMockTokenRepository(t),
		hasher:   mocks.NewMockPasswordHasher(t),
		sender:   mocks.NewMockNotificationSender(t),
	}
	f.flows = auth.NewFlows(auth.FlowsConfig{
		Accounts: f.accounts,
		Sessions: auth.NewSessionManager(f.sessions, time.Hour),
		Tokens:   auth.NewTokenIssuer(f.tokens),
		Hasher:   f.hasher,
		Sender:   f.sender,
		Resend:   resend,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		BaseURL:  testBaseURL,
		Sleep: func(_ context.Context, d time.Duration) {
			f.delays = append(f.delays, d)
		},
	})
	return f
}

func storedAccount(hash string) *auth.Account {
	now := time.Now()
	return &auth.Account{
		ID:           ulid.Make(),
		Email:        "alice@example.com",
		DisplayName:  "Alice",
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func wrappedNotFound() error {
	return oops.Code("ACCOUNT_NOT_FOUND").Wrap(auth.ErrNotFound)
}

func storedToken(accountID ulid.ULID, purpose auth.TokenPurpose) *auth.VerificationToken {
	return &auth.VerificationToken{
		ID:        ulid.Make(),
		AccountID: accountID,
		TokenHash: auth.HashVerificationToken("tok"),
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
}

func urlWithPrefix(prefix string) any {
	return mock.MatchedBy(func(u string) bool {
		return strings.HasPrefix(u, prefix+"?token=")
	})
}

func TestFlows_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates account and mails verification link", func(t *testing.T) {
		f := newFlowsFixture(t, nil)

		f.hasher.On("Hash", "Abc12345!").Return("$argon2id$h", nil)
		f.accounts.On("Create", ctx, mock.AnythingOfType("*auth.Account")).Return(nil)
		f.tokens.On("Create", ctx, mock.AnythingOfType("*auth.VerificationToken")).Return(nil)
		f.sender.On("SendVerificationEmail", ctx, "alice@example.com",
			urlWithPrefix(testBaseURL+"/verify-email"), "Alice").Return(nil)

		account, err := f.flows.Register(ctx, "Alice", "Alice@Example.com", "Abc12345!", "Abc12345!")
		require.NoError(t, err)
		require.NotNil(t, account)
		assert.Equal(t, "alice@example.com", account.Email)
		assert.False(t, account.EmailVerified)
	})

	t.Run("rejects invalid email before any side effect", func(t *testing.T) {
		f := newFlowsFixture(t, nil)

		_, err := f.flows.Register(ctx, "Alice", "not-an-email", "Abc12345!", "Abc12345!")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_EMAIL")
	})

	t.Run("rejects mismatched confirmation", func(t *testing.T) {
		f := newFlowsFixture(t, nil)

		_, err := f.flows.Register(ctx, "Alice", "alice@example.com", "Abc12345!", "Abc12345?")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_PASSWORD_MISMATCH")
	})

	t.Run("rejects weak password listing all violations", func(t *testing.T) {
		f := newFlowsFixture(t, nil)

		_, err := f.flows.Register(ctx, "Alice", "alice@example.com", "abc12345", "abc12345")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_WEAK_PASSWORD")
		errutil.AssertErrorContext(t, err, "violations",
			[]string{auth.RuleUppercase, auth.RuleSymbol})
	})

	t.Run("duplicate email surfaces as account exists", func(t *testing.T) {
		f := newFlowsFixture(t, nil)

		f.hasher.On("Hash", "Abc12345!").Return("$argon2id$h", nil)
		f.accounts.On("Create", ctx, mock.AnythingOfType("*auth.Account")).
			Return(oops.Code("ACCOUNT_DUPLICATE_EMAIL").Wrap(auth.ErrDuplicateEmail))

		_, err := f.flows.Register(ctx, "Alice", "alice@example.com", "Abc12345!", "Abc12345!")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_ACCOUNT_EXISTS")
	})

	t.Run("mail failure does not roll back the account", func(t *testing.T) {
		f := newFlowsFixture(t, nil)

		f.hasher.On("Hash", "Abc12345!").Return("$argon2id$h", nil)
		f.accounts.On("Create", ctx, mock.AnythingOfType("*auth.Account")).Return(nil)
		f.tokens.On("Create", ctx, mock.AnythingOfType("*auth.VerificationToken")).Return(nil)
		f.sender.On("SendVerificationEmail", ctx, "alice@example.com",
			urlWithPrefix(testBaseURL+"/verify-email"), "Alice").
			Return(errors.New("smtp unreachable"))

		account, err := f.flows.Register(ctx, "Alice", "alice@example.com", "Abc12345!", "Abc12345!")
		require.NoError(t, err)
		require.NotNil(t, account)
	})
}

func TestFlows_VerifyEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("redeems token and flips the flag", func(t *testing.T) {
		f := newFlowsFixture(t, nil)
		accountID := ulid.Make()

		f.tokens.On("Consume", ctx, auth.HashVerificationToken("tok"),
			auth.PurposeVerifyEmail, mock.AnythingOfType("time.Time")).
			Return(storedToken(accountID, auth.PurposeVerifyEmail), nil)
		f.accounts.On("SetEmailVerified", ctx, accountID, true).Return(nil)

		require.NoError(t, f.flows.VerifyEmail(ctx, "tok"))
	})

	t.Run("reused token reports already used", func(t *testing.T) {
		f := newFlowsFixture(t, nil)
		accountID := ulid.Make()

		consumed := storedToken(accountID, auth.PurposeVerifyEmail)
		consumedAt := time.Now()
		consumed.ConsumedAt = &consumedAt

		f.tokens.On("Consume", ctx, auth.HashVerificationToken("tok"),
			auth.PurposeVerifyEmail, mock.AnythingOfType("time.Time")).
			Return(nil, oops.Code("TOKEN_NOT_FOUND").Wrap(auth.ErrNotFound))
		f.tokens.On("GetByTokenHash", ctx, auth.HashVerificationToken("tok")).
			Return(consumed, nil)

		err := f.flows.VerifyEmail(ctx, "tok")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "TOKEN_ALREADY_USED")
	})

	t.Run("unknown token reports invalid", func(t *testing.T) {
		f := newFlowsFixture(t, nil)

		f.tokens.On("Consume", ctx, auth.HashVerificationToken("tok"),
			auth.PurposeVerifyEmail, mock.AnythingOfType("time.Time")).
			Return(nil, oops.Code("TOKEN_NOT_FOUND").Wrap(auth.ErrNotFound))
		f.tokens.On("GetByTokenHash", ctx, auth.HashVerificationToken("tok")).
			Return(nil, oops.Code("TOKEN_NOT_FOUND").Wrap(auth.ErrNotFound))

		err := f.flows.VerifyEmail(ctx, "tok")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "TOKEN_INVALID")
	})
}

func TestFlows_ResendVerification(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email still reports success", func(t *testing.T) {
		f := newFlowsFixture(t, nil)

		f.accounts.On("GetByEmail", ctx, "ghost@example.com").
			Return(nil, wrappedNotFound())

		require.NoError(t, f.flows.ResendVerification(ctx, "ghost@example.com"))
	})

	t.Run("already verified account gets no mail", func(t *testing.T) {
		f := newFlowsFixture(t, nil)

		account := storedAccount("$argon2id$h")
		account.EmailVerified = true
		f.accounts.On("GetByEmail", ctx, "alice@example.com").Return(account, nil)

		require.NoError(t, f.flows.ResendVerification(ctx, "alice@example.com"))
	})

	t.Run("unverified account gets a fresh token", func(t *testing.T) {
		f := newFlowsFixture(t, nil)

		account := storedAccount("$argon2id$h")
		f.accounts.On("GetByEmail", ctx, "alice@example.com").Return(account, nil)
		f.tokens.On("Create", ctx, mock.AnythingOfType("*auth.VerificationToken")).Return(nil)
		f.sender.On("SendVerificationEmail", ctx, "alice@example.com",
			urlWithPrefix(testBaseURL+"/verify-email"), "Alice").Return(nil)

		require.NoError(t, f.flows.ResendVerification(ctx, "alice@example.com"))
	})

	t.Run("send failure still reports success", func(t *testing.T) {
		f := newFlowsFixture(t, nil)

		account := storedAccount("$argon2id$h")
		f.accounts.On("GetByEmail", ctx, "alice@example.com").Return(account, nil)
		f.tokens.On("Create", ctx, mock.AnythingOfType("*auth.VerificationToken")).Return(nil)
		f.sender.On("SendVerificationEmail", ctx, "alice@example.com",
			urlWithPrefix(testBaseURL+"/verify-email"), "Alice").
			Return(errors.New("smtp unreachable"))

		require.NoError(t, f.flows.ResendVerification(ctx, "alice@example.com"))
	})

	t.Run("rate limited resend is silently dropped", func(t *testing.T) {
		f := newFlowsFixture(t, auth.NewResendLimiter(time.Hour))

		account := storedAccount("$argon2id$h")
		f.accounts.On("GetByEmail", ctx, "alice@example.com").Return(account, nil).Once()
		f.tokens.On("Create", ctx, mock.AnythingOfType("*auth.VerificationToken")).Return(nil).Once()
		f.sender.On("SendVerificationEmail", ctx, "alice@example.com",
			urlWithPrefix(testBaseURL+"/verify-email"), "Alice").Return(nil).Once()

		require.NoError(t, f.flows.ResendVerification(ctx, "alice@example.com"))
		require.NoError(t, f.flows.ResendVerification(ctx, "alice@example.com"))
	})
}

func TestFlows_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials create a session", func(t *testing.T) {
		f := newFlowsFixture(t, nil)
		account := storedAccount("$argon2id$stored")

		f.accounts.On("GetByEmail", ctx, "alice@example.com").Return(account, nil)
		f.hasher.On("Verify", "Abc12345!", "$argon2id$stored").Return(true, nil)
		f.hasher.On("NeedsUpgrade", "$argon2id$stored").Return(false)
		f.accounts.On("Update", ctx, account).Return(nil)
		f.sessions.On("Create", ctx, mock.AnythingOfType("*auth.Session")).Return(nil)

		session, token, err := f.flows.Login(ctx, "Alice@Example.com", "Abc12345!", "agent", "10.0.0.1")
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, account.ID, session.AccountID)
		assert.Equal(t, auth.HashSessionToken(token), session.TokenHash)
	})

	t.Run("login succeeds before email verification", func(t *testing.T) {
		f := newFlowsFixture(t, nil)
		account := storedAccount("$argon2id$stored")
		require.False(t, account.EmailVerified)

		f.accounts.On("GetByEmail", ctx, "alice@example.com").Return(account, nil)
		f.hasher.On("Verify", "Abc12345!", "$argon2id$stored").Return(true, nil)
		f.hasher.On("NeedsUpgrade", "$argon2id$stored").Return(false)
		f.accounts.On("Update", ctx, account).Return(nil)
		f.sessions.On("Create", ctx, mock.AnythingOfType("*auth.Session")).Return(nil)

		_, _, err := f.flows.Login(ctx, "alice@example.com", "Abc12345!", "", "")
		require.NoError(t, err)
	})

	t.Run("unknown email and wrong password are bit-identical", func(t *testing.T) {
		unknown := newFlowsFixture(t, nil)
		unknown.accounts.On("GetByEmail", ctx, "ghost@example.com").
			Return(nil, wrappedNotFound())
		unknown.hasher.On("Verify", "Abc12345!", mock.AnythingOfType("string")).
			Return(false, nil)

		_, _, errUnknown := unknown.flows.Login(ctx, "ghost@example.com", "Abc12345!", "", "")
		require.Error(t, errUnknown)

		wrong := newFlowsFixture(t, nil)
		account := storedAccount("$argon2id$stored")
		wrong.accounts.On("GetByEmail", ctx, "alice@example.com").Return(account, nil)
		wrong.hasher.On("Verify", "Abc12345!", "$argon2id$stored").Return(false, nil)
		wrong.accounts.On("Update", ctx, account).Return(nil)

		_, _, errWrong := wrong.flows.Login(ctx, "alice@example.com", "Abc12345!", "", "")
		require.Error(t, errWrong)

		assert.Equal(t, errUnknown.Error(), errWrong.Error())
		errutil.AssertErrorCode(t, errUnknown, "AUTH_INVALID_CREDENTIALS")
		errutil.AssertErrorCode(t, errWrong, "AUTH_INVALID_CREDENTIALS")
	})

	t.Run("failed attempts are recorded", func(t *testing.T) {
		f := newFlowsFixture(t, nil)
		account := storedAccount("$argon2id$stored")

		f.accounts.On("GetByEmail", ctx, "alice@example.com").Return(account, nil)
		f.hasher.On("Verify", "nope", "$argon2id$stored").Return(false, nil)
		f.accounts.On("Update", ctx, account).Return(nil)

		_, _, err := f.flows.Login(ctx, "alice@example.com", "nope", "", "")
		require.Error(t, err)
		assert.Equal(t, 1, account.FailedAttempts)
	})

	t.Run("repeated failures are slowed down progressively", func(t *testing.T) {
		f := newFlowsFixture(t, nil)
		account := storedAccount("$argon2id$stored")
		account.FailedAttempts = 3

		f.accounts.On("GetByEmail", ctx, "alice@example.com").Return(account, nil)
		f.hasher.On("Verify", "nope", "$argon2id$stored").Return(false, nil)
		f.accounts.On("Update", ctx, account).Return(nil)

		_, _, err := f.flows.Login(ctx, "alice@example.com", "nope", "", "")
		require.Error(t, err)
		assert.Equal(t, 4, account.FailedAttempts)
		assert.Equal(t, []time.Duration{8 * time.Second}, f.delays)
	})

	t.Run("no delay once the lockout takes over", func(t *testing.T) {
		f := newFlowsFixture(t, nil)
		account := storedAccount("$argon2id$stored")
		account.FailedAttempts = auth.LockoutThreshold - 1

		f.accounts.On("GetByEmail", ctx, "alice@example.com").Return(account, nil)
		f.hasher.On("Verify", "nope", "$argon2id$stored").Return(false, nil)
		f.accounts.On("Update", ctx, account).Return(nil)

		_, _, err := f.flows.Login(ctx, "alice@example.com", "nope", "", "")
		require.Error(t, err)
		assert.NotNil(t, account.LockedUntil)
		assert.Equal(t, []time.Duration{0}, f.delays)
	})

	t.Run("successful login waits for nothing", func(t *testing.T) {
		f := newFlowsFixture(t, nil)
		account := storedAccount("$argon2id$stored")

		f.accounts.On("GetByEmail", ctx, "alice@example.com").Return(account, nil)
		f.hasher.On("Verify", "Abc12345!", "$argon2id$stored").Return(true, nil)
		f.hasher.On("NeedsUpgrade", "$argon2id$stored").Return(false)
		f.accounts.On("Update", ctx, account).Return(nil)
		f.sessions.On("Create", ctx, mock.AnythingOfType("*auth.Session")).Return(nil)

		_, _, err := f.flows.Login(ctx, "alice@example.com", "Abc12345!", "", "")
		require.NoError(t, err)
		assert.Empty(t, f.delays)
	})

	t.Run("locked account is refused after verification", func(t *testing.T) {
		f := newFlowsFixture(t, nil)
		account := storedAccount("$argon2id$stored")
		lockedUntil := time.Now().Add(10 * time.Minute)
		account.LockedUntil = &lockedUntil

		f.accounts.On("GetByEmail", ctx, "alice@example.com").Return(account, nil)
		f.hasher.On("Verify", "Abc12345!", "$argon2id$stored").Return(true, nil)

		_, _, err := f.flows.Login(ctx, "alice@example.com", "Abc12345!", "", "")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_ACCOUNT_LOCKED")
	})

	t.Run("legacy hash is upgraded transparently", func(t *testing.T) {
		f := newFlowsFixture(t, nil)
		account := storedAccount("$2a$10$legacy")

		f.accounts.On("GetByEmail", ctx, "alice@example.com").Return(account, nil)
		f.hasher.On("Verify", "Abc12345!", "$2a$10$legacy").Return(true, nil)
		f.hasher.On("NeedsUpgrade", "$2a$10$legacy").Return(true)
		f.hasher.On("Hash", "Abc12345!").Return("$argon2id$fresh", nil)
		f.accounts.On("Update", ctx, account).Return(nil)
		f.sessions.On("Create", ctx, mock.AnythingOfType("*auth.Session")).Return(nil)

		_, _, err := f.flows.Login(ctx, "alice@example.com", "Abc12345!", "", "")
		require.NoError(t, err)
		assert.Equal(t, "$argon2id$fresh", account.PasswordHash)
	})
}

func TestFlows_RequestPasswordRecovery(t *testing.T) {
	ctx := context.Background()

	t.Run("known and unknown emails respond identically", func(t *testing.T) {
		known := newFlowsFixture(t, nil)
		account := storedAccount("$argon2id$h")
		known.accounts.On("GetByEmail", ctx, "alice@example.com").Return(account, nil)
		known.tokens.On("Create", ctx, mock.AnythingOfType("*auth.VerificationToken")).Return(nil)
		known.sender.On("SendResetPasswordEmail", ctx, "alice@example.com",
			urlWithPrefix(testBaseURL+"/reset-password"), "Alice").Return(nil)

		unknown := newFlowsFixture(t, nil)
		unknown.accounts.On("GetByEmail", ctx, "ghost@example.com").
			Return(nil, wrappedNotFound())

		errKnown := known.flows.RequestPasswordRecovery(ctx, "alice@example.com")
		errUnknown := unknown.flows.RequestPasswordRecovery(ctx, "ghost@example.com")

		// Only the known case issues a token; the responses are the same.
		assert.NoError(t, errKnown)
		assert.NoError(t, errUnknown)
		known.tokens.AssertNumberOfCalls(t, "Create", 1)
		unknown.tokens.AssertNumberOfCalls(t, "Create", 0)
	})

	t.Run("token issue failure stays server-side", func(t *testing.T) {
		f := newFlowsFixture(t, nil)
		account := storedAccount("$argon2id$h")
		f.accounts.On("GetByEmail", ctx, "alice@example.com").Return(account, nil)
		f.tokens.On("Create", ctx, mock.AnythingOfType("*auth.VerificationToken")).
			Return(errors.New("insert failed"))

		require.NoError(t, f.flows.RequestPasswordRecovery(ctx, "alice@example.com"))
	})
}

func TestFlows_ResetPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces credential and revokes all sessions", func(t *testing.T) {
		f := newFlowsFixture(t, nil)
		accountID := ulid.Make()

		f.tokens.On("Consume", ctx, auth.HashVerificationToken("tok"),
			auth.PurposeResetPassword, mock.AnythingOfType("time.Time")).
			Return(storedToken(accountID, auth.PurposeResetPassword), nil)
		f.hasher.On("Hash", "NewPass123!").Return("$argon2id$new", nil)
		f.accounts.On("UpdatePassword", ctx, accountID, "$argon2id$new").Return(nil)
		f.sessions.On("RevokeAllForAccount", ctx, accountID, mock.AnythingOfType("time.Time")).
			Return(nil)

		require.NoError(t, f.flows.ResetPassword(ctx, "tok", "NewPass123!", "NewPass123!"))
	})

	t.Run("mismatched confirmation fails before redemption", func(t *testing.T) {
		f := newFlowsFixture(t, nil)

		err := f.flows.ResetPassword(ctx, "tok", "NewPass123!", "Other123!")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_PASSWORD_MISMATCH")
	})

	t.Run("weak password fails after redemption without credential change", func(t *testing.T) {
		f := newFlowsFixture(t, nil)
		accountID := ulid.Make()

		f.tokens.On("Consume", ctx, auth.HashVerificationToken("tok"),
			auth.PurposeResetPassword, mock.AnythingOfType("time.Time")).
			Return(storedToken(accountID, auth.PurposeResetPassword), nil)

		err := f.flows.ResetPassword(ctx, "tok", "weak", "weak")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_WEAK_PASSWORD")
	})

	t.Run("expired token surfaces distinctly", func(t *testing.T) {
		f := newFlowsFixture(t, nil)
		accountID := ulid.Make()

		expired := storedToken(accountID, auth.PurposeResetPassword)
		expired.ExpiresAt = time.Now().Add(-time.Minute)

		f.tokens.On("Consume", ctx, auth.HashVerificationToken("tok"),
			auth.PurposeResetPassword, mock.AnythingOfType("time.Time")).
			Return(nil, oops.Code("TOKEN_NOT_FOUND").Wrap(auth.ErrNotFound))
		f.tokens.On("GetByTokenHash", ctx, auth.HashVerificationToken("tok")).
			Return(expired, nil)

		err := f.flows.ResetPassword(ctx, "tok", "NewPass123!", "NewPass123!")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "TOKEN_EXPIRED")
	})
}

func TestFlows_ChangePassword(t *testing.T) {
	ctx := context.Background()

	setupSession := func(f *flowsFixture, account *auth.Account) *auth.Session {
		session, err := auth.NewSession(account.ID, auth.HashSessionToken("sess"), "", "", time.Now().Add(time.Hour))
		if err != nil {
			panic(err)
		}
		f.sessions.On("GetByTokenHash", ctx, auth.HashSessionToken("sess")).Return(session, nil)
		f.sessions.On("UpdateLastSeen", ctx, session.ID, mock.AnythingOfType("time.Time")).Return(nil)
		f.accounts.On("GetByID", ctx, account.ID).Return(account, nil)
		return session
	}

	t.Run("replaces credential and keeps other sessions by default", func(t *testing.T) {
		f := newFlowsFixture(t, nil)
		account := storedAccount("$argon2id$stored")
		setupSession(f, account)

		f.hasher.On("Verify", "OldPass123!", "$argon2id$stored").Return(true, nil)
		f.hasher.On("Hash", "NewPass123!").Return("$argon2id$new", nil)
		f.accounts.On("UpdatePassword", ctx, account.ID, "$argon2id$new").Return(nil)

		err := f.flows.ChangePassword(ctx, "sess", "OldPass123!", "NewPass123!", "NewPass123!", false)
		require.NoError(t, err)
	})

	t.Run("revokes other sessions on request", func(t *testing.T) {
		f := newFlowsFixture(t, nil)
		account := storedAccount("$argon2id$stored")
		session := setupSession(f, account)

		f.hasher.On("Verify", "OldPass123!", "$argon2id$stored").Return(true, nil)
		f.hasher.On("Hash", "NewPass123!").Return("$argon2id$new", nil)
		f.accounts.On("UpdatePassword", ctx, account.ID, "$argon2id$new").Return(nil)
		f.sessions.On("RevokeAllForAccountExcept", ctx, account.ID, session.ID,
			mock.AnythingOfType("time.Time")).Return(nil)

		err := f.flows.ChangePassword(ctx, "sess", "OldPass123!", "NewPass123!", "NewPass123!", true)
		require.NoError(t, err)
	})

	t.Run("invalid session is rejected", func(t *testing.T) {
		f := newFlowsFixture(t, nil)

		f.sessions.On("GetByTokenHash", ctx, auth.HashSessionToken("sess")).
			Return(nil, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound))

		err := f.flows.ChangePassword(ctx, "sess", "OldPass123!", "NewPass123!", "NewPass123!", false)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "SESSION_INVALID")
	})

	t.Run("wrong current password wins even when new equals current", func(t *testing.T) {
		f := newFlowsFixture(t, nil)
		account := storedAccount("$argon2id$stored")
		setupSession(f, account)

		f.hasher.On("Verify", "WrongOld1!", "$argon2id$stored").Return(false, nil)

		err := f.flows.ChangePassword(ctx, "sess", "WrongOld1!", "WrongOld1!", "WrongOld1!", false)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_CREDENTIALS")
	})

	t.Run("unchanged password is rejected", func(t *testing.T) {
		f := newFlowsFixture(t, nil)
		account := storedAccount("$argon2id$stored")
		setupSession(f, account)

		f.hasher.On("Verify", "OldPass123!", "$argon2id$stored").Return(true, nil)

		err := f.flows.ChangePassword(ctx, "sess", "OldPass123!", "OldPass123!", "OldPass123!", false)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_SAME_PASSWORD")
	})

	t.Run("weak new password is rejected", func(t *testing.T) {
		f := newFlowsFixture(t, nil)
		account := storedAccount("$argon2id$stored")
		setupSession(f, account)

		f.hasher.On("Verify", "OldPass123!", "$argon2id$stored").Return(true, nil)

		err := f.flows.ChangePassword(ctx, "sess", "OldPass123!", "weakling", "weakling", false)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_WEAK_PASSWORD")
	})
}

func TestFlows_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("revokes the session", func(t *testing.T) {
		f := newFlowsFixture(t, nil)

		f.sessions.On("Revoke", ctx, auth.HashSessionToken("sess"),
			mock.AnythingOfType("time.Time")).Return(nil)

		require.NoError(t, f.flows.Logout(ctx, "sess"))
	})

	t.Run("empty token is a no-op", func(t *testing.T) {
		f := newFlowsFixture(t, nil)
		require.NoError(t, f.flows.Logout(ctx, ""))
	})
}
