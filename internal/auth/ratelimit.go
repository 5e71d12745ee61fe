// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

package auth

import (
	"sync"
	"time"
)

// Login abuse controls.
const (
	// LockoutDuration is the time an account is locked out after too many failures.
	LockoutDuration = 15 * time.Minute

	// LockoutThreshold is the number of failures that triggers a lockout.
	LockoutThreshold = 7

	// MaxFailureDelay caps the progressive delay on repeated failures.
	MaxFailureDelay = 32 * time.Second
)

// DefaultResendInterval is the minimum gap between outbound mails to the
// same address for resend/recovery requests.
const DefaultResendInterval = time.Minute

// IsLockedOut returns true if the lockout time is in the future.
func IsLockedOut(lockedUntil *time.Time) bool {
	return lockedUntil != nil && lockedUntil.After(time.Now())
}

// FailureDelay returns the delay to apply before answering a failed login
// for an account with the given failure count. The delay doubles per
// failure (1s, 2s, 4s, ...) capped at MaxFailureDelay. Zero for accounts
// with no failures and at or above LockoutThreshold, where the lockout
// takes over.
func FailureDelay(failures int) time.Duration {
	if failures <= 0 || failures >= LockoutThreshold {
		return 0
	}
	delay := time.Duration(1<<(failures-1)) * time.Second
	if delay > MaxFailureDelay {
		delay = MaxFailureDelay
	}
	return delay
}

// ComputeLockoutTime returns the lockout timestamp for the given failure
// count. Returns nil if failures < LockoutThreshold.
func ComputeLockoutTime(failures int) *time.Time {
	if failures < LockoutThreshold {
		return nil
	}
	lockout := time.Now().Add(LockoutDuration)
	return &lockout
}

// ResendLimiter enforces a minimum interval between notification mails
// per email address. It deliberately lives in-process: the limit is an
// anti-abuse measure, not a correctness guarantee, and its decisions are
// never visible in responses (anti-enumeration).
type ResendLimiter struct {
	mu       sync.Mutex
	last     map[string]time.Time
	interval time.Duration
	now      func() time.Time
}

// NewResendLimiter creates a limiter. A non-positive interval falls back
// to DefaultResendInterval.
func NewResendLimiter(interval time.Duration) *ResendLimiter {
	if interval <= 0 {
		interval = DefaultResendInterval
	}
	return &ResendLimiter{
		last:     make(map[string]time.Time),
		interval: interval,
		now:      time.Now,
	}
}

// Allow reports whether a mail may be sent to the address now, and if so
// records the send. Safe for concurrent use.
func (l *ResendLimiter) Allow(email string) bool {
	key := NormalizeEmail(email)
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if sent, ok := l.last[key]; ok && now.Sub(sent) < l.interval {
		return false
	}

	// Opportunistic prune keeps the map from growing without bound.
	if len(l.last) > 10000 {
		for k, v := range l.last {
			if now.Sub(v) >= l.interval {
				delete(l.last, k)
			}
		}
	}

	l.last[key] = now
	return true
}
