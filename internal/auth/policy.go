// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

package auth

import (
	"strings"
	"unicode"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// passwordSymbols is the accepted punctuation set for the symbol rule.
const passwordSymbols = `!@#$%^&*()_+-=[]{};':"\|,./?`

// Policy rule names, in evaluation priority order. The whitespace rule is
// checked first: a password containing whitespace reports only that
// violation.
const (
	RuleNoWhitespace = "no_whitespace"
	RuleMinLength    = "min_length"
	RuleUppercase    = "uppercase"
	RuleLowercase    = "lowercase"
	RuleDigit        = "digit"
	RuleSymbol       = "symbol"
)

// ruleTips maps rule names to the single remediation hint shown to users.
var ruleTips = map[string]string{
	RuleNoWhitespace: "Remove spaces from your password.",
	RuleMinLength:    "Use at least 8 characters.",
	RuleUppercase:    "Add an uppercase letter.",
	RuleLowercase:    "Add a lowercase letter.",
	RuleDigit:        "Add a digit.",
	RuleSymbol:       "Add a symbol such as ! @ # or $.",
}

// PolicyResult is the outcome of evaluating a password against the
// strength policy.
type PolicyResult struct {
	Valid bool

	// Violations lists the names of the violated rules in evaluation
	// priority order. Empty when Valid is true.
	Violations []string
}

// PrimaryTip returns the remediation hint for the highest-priority
// violation, or "" when the password is valid.
func (r PolicyResult) PrimaryTip() string {
	if len(r.Violations) == 0 {
		return ""
	}
	return ruleTips[r.Violations[0]]
}

// EvaluatePassword checks a password against the strength policy.
// Pure and total: never errors, never touches external state.
func EvaluatePassword(password string) PolicyResult {
	if strings.IndexFunc(password, unicode.IsSpace) >= 0 {
		return PolicyResult{Violations: []string{RuleNoWhitespace}}
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}

	var violations []string
	if len(password) < MinPasswordLength {
		violations = append(violations, RuleMinLength)
	}
	if !hasUpper {
		violations = append(violations, RuleUppercase)
	}
	if !hasLower {
		violations = append(violations, RuleLowercase)
	}
	if !hasDigit {
		violations = append(violations, RuleDigit)
	}
	if !hasSymbol {
		violations = append(violations, RuleSymbol)
	}

	return PolicyResult{
		Valid:      len(violations) == 0,
		Violations: violations,
	}
}
