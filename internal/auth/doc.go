// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

// Package auth implements the credential lifecycle for the PhishGuard
// dashboard: accounts, opaque cookie sessions, single-use verification
// and reset tokens, the password strength policy, and the flow
// orchestration that ties them together.
//
// All durable state lives behind the repository interfaces; the services
// in this package hold no cross-request state and are safe for
// concurrent use. Session and verification tokens are stored hashed, and
// redemption relies on the store's compare-and-set for at-most-once
// semantics.
package auth
