// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

// Package web exposes the dashboard's HTTP surface: the auth and campaign
// APIs, the session cookie transport, and the request access gate.
package web

import "strings"

// SessionCookieName carries the opaque session token.
const SessionCookieName = "phishguard_session"

// LoginPath is where unauthenticated page requests are sent.
const LoginPath = "/login"

// Decision is the gate's verdict for one request.
type Decision struct {
	Allow      bool
	RedirectTo string
}

// AccessGate decides per request whether a path may be served. Public paths
// are always allowed. Everything else needs a session cookie to be present.
// Presence is a fast path only: protected handlers still validate the session
// against the store before acting.
type AccessGate struct {
	publicPaths    map[string]struct{}
	publicPrefixes []string
}

// NewAccessGate builds a gate with the default public surface.
func NewAccessGate() *AccessGate {
	return &AccessGate{
		publicPaths: map[string]struct{}{
			LoginPath:          {},
			"/register":        {},
			"/forgot-password": {},
			"/reset-password":  {},
			"/verify-email":    {},
			"/healthz":         {},
			"/readyz":          {},
		},
		publicPrefixes: []string{"/api/auth/"},
	}
}

// Authorize returns the decision for a path given whether the request
// carries a session cookie.
func (g *AccessGate) Authorize(path string, hasSessionCookie bool) Decision {
	if g.isPublic(path) {
		return Decision{Allow: true}
	}
	if hasSessionCookie {
		return Decision{Allow: true}
	}
	return Decision{RedirectTo: LoginPath}
}

func (g *AccessGate) isPublic(path string) bool {
	if _, ok := g.publicPaths[path]; ok {
		return true
	}
	for _, prefix := range g.publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
