// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

package web

import (
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/samber/oops"

	"github.com/phishguard/phishguard/internal/auth"
)

// statusByCode maps stable error codes to HTTP statuses. Codes not listed
// here are treated as internal failures.
var statusByCode = map[string]int{
	"AUTH_INVALID_CREDENTIALS": http.StatusUnauthorized,
	"SESSION_INVALID":          http.StatusUnauthorized,
	"AUTH_ACCOUNT_LOCKED":      http.StatusForbidden,
	"AUTH_EMAIL_UNVERIFIED":    http.StatusForbidden,
	"AUTH_ACCOUNT_EXISTS":      http.StatusConflict,
	"ACCOUNT_DUPLICATE_EMAIL":  http.StatusConflict,

	"AUTH_WEAK_PASSWORD":     http.StatusBadRequest,
	"AUTH_SAME_PASSWORD":     http.StatusBadRequest,
	"AUTH_PASSWORD_MISMATCH": http.StatusBadRequest,
	"AUTH_INVALID_EMAIL":     http.StatusBadRequest,
	"AUTH_INVALID_NAME":      http.StatusBadRequest,
	"AUTH_EMPTY_PASSWORD":    http.StatusBadRequest,

	"TOKEN_INVALID":      http.StatusBadRequest,
	"TOKEN_EXPIRED":      http.StatusGone,
	"TOKEN_ALREADY_USED": http.StatusConflict,

	"CAMPAIGN_INVALID_OWNER":          http.StatusBadRequest,
	"CAMPAIGN_INVALID_TITLE":          http.StatusBadRequest,
	"CAMPAIGN_INVALID_DESCRIPTION":    http.StatusBadRequest,
	"CAMPAIGN_INVALID_LINK":           http.StatusBadRequest,
	"CAMPAIGN_INVALID_MESSAGE":        http.StatusBadRequest,
	"CAMPAIGN_INVALID_AWARENESS_PAGE": http.StatusBadRequest,
	"CAMPAIGN_UNKNOWN_TEMPLATE":       http.StatusBadRequest,

	"ACCOUNT_NOT_FOUND":  http.StatusNotFound,
	"CAMPAIGN_NOT_FOUND": http.StatusNotFound,
	"TEMPLATE_NOT_FOUND": http.StatusNotFound,
}

// respondError writes the JSON error envelope. The message is always the
// translated user-facing text, never the internal error string.
func respondError(c fiber.Ctx, err error) error {
	code := ""
	if oopsErr, ok := oops.AsOops(err); ok {
		if codeStr, isString := oopsErr.Code().(string); isString {
			code = codeStr
		}
	}

	status, known := statusByCode[code]
	if !known {
		status = http.StatusInternalServerError
	}

	message := auth.Translate(err, auth.DefaultUserMessage)
	if !known {
		// Unknown codes are infrastructure failures; never leak their text.
		message = auth.DefaultUserMessage
	}

	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

func badRequest(c fiber.Ctx, message string) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "INVALID_REQUEST",
			"message": message,
		},
	})
}

func unauthorized(c fiber.Ctx) error {
	return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SESSION_INVALID",
			"message": auth.TranslateCode("SESSION_INVALID"),
		},
	})
}
