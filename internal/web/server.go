// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

package web

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/samber/oops"

	"github.com/phishguard/phishguard/internal/auth"
	"github.com/phishguard/phishguard/internal/campaign"
)

// Server assembles the dashboard HTTP surface on Fiber.
type Server struct {
	app       *fiber.App
	flows     *auth.Flows
	sessions  *auth.SessionManager
	accounts  auth.AccountRepository
	campaigns *campaign.Service
	gate      *AccessGate
	logger    *slog.Logger

	secureCookies bool
	sessionTTL    time.Duration
}

// ServerConfig wires the server's collaborators.
type ServerConfig struct {
	Flows     *auth.Flows
	Sessions  *auth.SessionManager
	Accounts  auth.AccountRepository
	Campaigns *campaign.Service
	Logger    *slog.Logger

	// SecureCookies marks session cookies Secure. Off only for local
	// development over plain HTTP.
	SecureCookies bool
	SessionTTL    time.Duration
}

// NewServer builds the Fiber app with all routes registered.
func NewServer(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = auth.DefaultSessionExpiry
	}

	s := &Server{
		app: fiber.New(fiber.Config{
			AppName: "phishguard",
		}),
		flows:         cfg.Flows,
		sessions:      cfg.Sessions,
		accounts:      cfg.Accounts,
		campaigns:     cfg.Campaigns,
		gate:          NewAccessGate(),
		logger:        logger,
		secureCookies: cfg.SecureCookies,
		sessionTTL:    ttl,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Use(s.gateMiddleware)

	api := s.app.Group("/api/auth")
	api.Post("/register", s.handleRegister)
	api.Post("/login", s.handleLogin)
	api.Post("/logout", s.handleLogout)
	api.Post("/verify-email", s.handleVerifyEmail)
	api.Post("/resend-verification", s.handleResendVerification)
	api.Post("/forgot-password", s.handleForgotPassword)
	api.Post("/reset-password", s.handleResetPassword)
	api.Post("/change-password", s.handleChangePassword)
	api.Get("/session", s.handleSession)

	campaigns := s.app.Group("/api/campaigns")
	campaigns.Post("/", s.handleCreateCampaign)
	campaigns.Get("/", s.handleListCampaigns)
	campaigns.Get("/:id", s.handleGetCampaign)
	campaigns.Put("/:id", s.handleUpdateCampaign)
	campaigns.Delete("/:id", s.handleDeleteCampaign)

	s.app.Get("/api/templates", s.handleListTemplates)
	s.app.Get("/api/templates/:id", s.handleGetTemplate)
}

// gateMiddleware is the cookie-presence fast path. Protected handlers still
// validate the session against the store.
func (s *Server) gateMiddleware(c fiber.Ctx) error {
	decision := s.gate.Authorize(c.Path(), c.Cookies(SessionCookieName) != "")
	if !decision.Allow {
		return c.Redirect().To(decision.RedirectTo)
	}
	return c.Next()
}

// currentSession validates the request's session cookie against the store.
// A nil session with a nil error means the request is unauthenticated.
func (s *Server) currentSession(c fiber.Ctx) (*auth.Session, error) {
	return s.sessions.Validate(c.Context(), c.Cookies(SessionCookieName))
}

// verifiedAccount loads the session's account and requires a verified
// email address. Verification gates dashboard features, not login.
func (s *Server) verifiedAccount(c fiber.Ctx, session *auth.Session) (*auth.Account, error) {
	account, err := s.accounts.GetByID(c.Context(), session.AccountID)
	if err != nil {
		return nil, err
	}
	if !account.EmailVerified {
		return nil, oops.Code("AUTH_EMAIL_UNVERIFIED").
			With("account_id", account.ID.String()).
			Errorf("email address is not verified")
	}
	return account, nil
}

func (s *Server) setSessionCookie(c fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessionTTL.Seconds()),
		HTTPOnly: true,
		Secure:   s.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(c fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   s.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Listen serves until the listener fails or Shutdown is called.
func (s *Server) Listen(addr string) error {
	if err := s.app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
		return oops.Code("WEB_LISTEN_FAILED").With("addr", addr).Wrap(err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return oops.Code("WEB_SHUTDOWN_FAILED").Wrap(err)
	}
	return nil
}
