// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks authentication activity. A nil *Metrics is valid and
// records nothing, so tests can pass nil.
type Metrics struct {
	logins         *prometheus.CounterVec
	registrations  prometheus.Counter
	tokensIssued   *prometheus.CounterVec
	tokensRedeemed *prometheus.CounterVec
	mails          *prometheus.CounterVec
}

// NewMetrics registers the auth metric family with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "phishguard_auth_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		registrations: factory.NewCounter(prometheus.CounterOpts{
			Name: "phishguard_auth_registrations_total",
			Help: "Accounts created.",
		}),
		tokensIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "phishguard_auth_tokens_issued_total",
			Help: "Verification tokens issued by purpose.",
		}, []string{"purpose"}),
		tokensRedeemed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "phishguard_auth_tokens_redeemed_total",
			Help: "Verification token redemptions by purpose and result.",
		}, []string{"purpose", "result"}),
		mails: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "phishguard_auth_mails_total",
			Help: "Notification mails by kind and result.",
		}, []string{"kind", "result"}),
	}
}

// LoginAttempt records a login attempt.
func (m *Metrics) LoginAttempt(success bool) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result(success)).Inc()
}

// RegistrationCreated records a new account.
func (m *Metrics) RegistrationCreated() {
	if m == nil {
		return
	}
	m.registrations.Inc()
}

// TokenIssued records an issued verification token.
func (m *Metrics) TokenIssued(purpose TokenPurpose) {
	if m == nil {
		return
	}
	m.tokensIssued.WithLabelValues(string(purpose)).Inc()
}

// TokenRedeemed records a redemption attempt.
func (m *Metrics) TokenRedeemed(purpose TokenPurpose, success bool) {
	if m == nil {
		return
	}
	m.tokensRedeemed.WithLabelValues(string(purpose), result(success)).Inc()
}

// MailSent records a notification send attempt.
func (m *Metrics) MailSent(kind string, success bool) {
	if m == nil {
		return
	}
	m.mails.WithLabelValues(kind, result(success)).Inc()
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
