// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

package auth

import (
	"strings"

	"github.com/samber/oops"
)

// DefaultUserMessage is shown when nothing better can be said about a
// failure. Raw store and provider diagnostics never reach users.
const DefaultUserMessage = "Something went wrong. Please try again."

// codeMessages maps internal error codes to user-facing messages.
// Codes not listed here are infrastructure failures and fall through to
// the generic message.
var codeMessages = map[string]string{
	"AUTH_INVALID_CREDENTIALS": "Invalid email or password.",
	"AUTH_ACCOUNT_EXISTS":      "An account with this email already exists.",
	"AUTH_ACCOUNT_LOCKED":      "Too many failed attempts. Please try again later.",
	"AUTH_SAME_PASSWORD":       "New password must be different from your current password.",
	"AUTH_WEAK_PASSWORD":       "Password does not meet the strength requirements.",
	"AUTH_PASSWORD_MISMATCH":   "Passwords do not match.",
	"AUTH_INVALID_EMAIL":       "Please enter a valid email address.",
	"AUTH_INVALID_NAME":        "Please enter a valid display name.",
	"AUTH_EMPTY_PASSWORD":      "Password cannot be empty.",
	"AUTH_EMAIL_UNVERIFIED":    "Please verify your email address to use this feature.",
	"SESSION_INVALID":          "Your session has expired. Please sign in again.",
	"TOKEN_INVALID":            "This link is not valid. Please request a new one.",
	"TOKEN_EXPIRED":            "This link has expired. Please request a new one.",
	"TOKEN_ALREADY_USED":       "This link has already been used.",
}

// englishMessages maps raw provider/store messages that are known to
// surface from lower layers to friendly equivalents.
var englishMessages = map[string]string{
	"duplicate key value violates unique constraint": "An account with this email already exists.",
	"invalid email or password":                      "Invalid email or password.",
	"context deadline exceeded":                      DefaultUserMessage,
	"connection refused":                             DefaultUserMessage,
}

// Translate maps an internal error to a user-facing message.
// Resolution order: known code, known English message, verbatim message,
// fallback. Never returns an empty string and never panics.
func Translate(err error, fallback string) string {
	if fallback == "" {
		fallback = DefaultUserMessage
	}
	if err == nil {
		return fallback
	}

	if oopsErr, ok := oops.AsOops(err); ok {
		if code, isString := oopsErr.Code().(string); isString {
			if msg, found := codeMessages[code]; found {
				return msg
			}
		}
	}

	raw := strings.TrimSpace(err.Error())
	if raw == "" {
		return fallback
	}
	for known, msg := range englishMessages {
		if strings.Contains(raw, known) {
			return msg
		}
	}

	return raw
}

// TranslateCode maps a bare error code to its user-facing message, or
// the default message for unknown codes. Used by handlers that carry the
// code without the error value.
func TranslateCode(code string) string {
	if msg, found := codeMessages[code]; found {
		return msg
	}
	return DefaultUserMessage
}
