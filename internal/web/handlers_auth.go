// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

package web

import (
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/phishguard/phishguard/pkg/errutil"
)

type registerRequest struct {
	DisplayName     string `json:"display_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (s *Server) handleRegister(c fiber.Ctx) error {
	var req registerRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	account, err := s.flows.Register(c.Context(), req.DisplayName, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"id":    account.ID.String(),
		"email": account.Email,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(c fiber.Ctx) error {
	var req loginRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	session, token, err := s.flows.Login(c.Context(), req.Email, req.Password,
		c.Get(fiber.HeaderUserAgent), c.IP())
	if err != nil {
		return respondError(c, err)
	}

	s.setSessionCookie(c, token)
	return c.JSON(fiber.Map{
		"account_id": session.AccountID.String(),
		"expires_at": session.ExpiresAt,
	})
}

func (s *Server) handleLogout(c fiber.Ctx) error {
	if err := s.flows.Logout(c.Context(), c.Cookies(SessionCookieName)); err != nil {
		errutil.LogWarn(s.logger, "logout failed", err)
	}
	s.clearSessionCookie(c)
	return c.SendStatus(http.StatusNoContent)
}

type tokenRequest struct {
	Token string `json:"token"`
}

func (s *Server) handleVerifyEmail(c fiber.Ctx) error {
	var req tokenRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := s.flows.VerifyEmail(c.Context(), req.Token); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"verified": true})
}

type emailRequest struct {
	Email string `json:"email"`
}

// handleResendVerification always reports success so the response does not
// reveal whether the email is registered.
func (s *Server) handleResendVerification(c fiber.Ctx) error {
	var req emailRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := s.flows.ResendVerification(c.Context(), req.Email); err != nil {
		errutil.LogWarn(s.logger, "resend verification failed", err)
	}
	return c.JSON(fiber.Map{"sent": true})
}

// handleForgotPassword mirrors resend-verification's uniform response.
func (s *Server) handleForgotPassword(c fiber.Ctx) error {
	var req emailRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := s.flows.RequestPasswordRecovery(c.Context(), req.Email); err != nil {
		errutil.LogWarn(s.logger, "password recovery request failed", err)
	}
	return c.JSON(fiber.Map{"sent": true})
}

type resetPasswordRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (s *Server) handleResetPassword(c fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := s.flows.ResetPassword(c.Context(), req.Token, req.NewPassword, req.ConfirmPassword); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"reset": true})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
	RevokeOthers    bool   `json:"revoke_other_sessions"`
}

func (s *Server) handleChangePassword(c fiber.Ctx) error {
	var req changePasswordRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	err := s.flows.ChangePassword(c.Context(), c.Cookies(SessionCookieName),
		req.CurrentPassword, req.NewPassword, req.ConfirmPassword, req.RevokeOthers)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"changed": true})
}

// handleSession reports the authenticated account for the current cookie.
// email_verified lets the dashboard decide which features to unlock.
func (s *Server) handleSession(c fiber.Ctx) error {
	session, err := s.currentSession(c)
	if err != nil {
		return respondError(c, err)
	}
	if session == nil {
		return unauthorized(c)
	}

	account, err := s.accounts.GetByID(c.Context(), session.AccountID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"account_id":     account.ID.String(),
		"email":          account.Email,
		"display_name":   account.DisplayName,
		"email_verified": account.EmailVerified,
		"expires_at":     session.ExpiresAt,
		"last_seen_at":   session.LastSeenAt,
	})
}
