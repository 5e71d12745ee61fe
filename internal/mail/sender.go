// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

// Package mail delivers transactional email over SMTP.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	retryBaseDelay  = 500 * time.Millisecond
	retryMaxAttempt = 3
)

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// sendFunc matches smtp.SendMail and is swapped out in tests.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender delivers verification and password-reset mail. Sends are retried
// with exponential backoff because transient SMTP failures are common.
type SMTPSender struct {
	cfg       Config
	logger    *slog.Logger
	send      sendFunc
	baseDelay time.Duration
	templates *template.Template
}

// NewSMTPSender builds a sender from config. A nil logger falls back to the
// default slog logger.
func NewSMTPSender(cfg Config, logger *slog.Logger) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, oops.Code("MAIL_CONFIG_INVALID").Errorf("smtp host is required")
	}
	if cfg.From == "" {
		return nil, oops.Code("MAIL_CONFIG_INVALID").Errorf("from address is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	templates, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, oops.Code("MAIL_TEMPLATE_INVALID").Wrap(err)
	}

	return &SMTPSender{
		cfg:       cfg,
		logger:    logger,
		send:      smtp.SendMail,
		baseDelay: retryBaseDelay,
		templates: templates,
	}, nil
}

// mailData feeds the HTML templates.
type mailData struct {
	DisplayName string
	ActionURL   string
}

// SendVerificationEmail mails a verify-email link to the recipient.
func (s *SMTPSender) SendVerificationEmail(ctx context.Context, recipient, verificationURL, displayName string) error {
	return s.deliver(ctx, recipient, "Confirm your PhishGuard email address",
		"verify_email.html.tmpl", mailData{DisplayName: displayName, ActionURL: verificationURL})
}

// SendResetPasswordEmail mails a password-reset link to the recipient.
func (s *SMTPSender) SendResetPasswordEmail(ctx context.Context, recipient, resetURL, displayName string) error {
	return s.deliver(ctx, recipient, "Reset your PhishGuard password",
		"reset_password.html.tmpl", mailData{DisplayName: displayName, ActionURL: resetURL})
}

func (s *SMTPSender) deliver(ctx context.Context, recipient, subject, templateName string, data mailData) error {
	msg, err := s.compose(recipient, subject, templateName, data)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	backoff := retry.WithMaxRetries(retryMaxAttempt, retry.NewExponential(s.baseDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.send(addr, auth, s.cfg.From, []string{recipient}, msg); err != nil {
			s.logger.WarnContext(ctx, "smtp send failed, retrying",
				slog.String("template", templateName),
				slog.String("error", err.Error()))
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return oops.Code("MAIL_SEND_FAILED").
			With("template", templateName).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "mail delivered", slog.String("template", templateName))
	return nil
}

// compose renders the RFC 5322 message bytes for a single HTML mail.
func (s *SMTPSender) compose(recipient, subject, templateName string, data mailData) ([]byte, error) {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return nil, oops.Code("MAIL_TEMPLATE_INVALID").
			With("template", templateName).
			Wrap(err)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	return []byte(msg.String()), nil
}
