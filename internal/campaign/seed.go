// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

package campaign

import (
	"context"
	"time"
)

// BuiltinTemplates is the phishing template catalog shipped with the
// dashboard. The seed command upserts these rows so re-seeding is safe.
func BuiltinTemplates() []*Template {
	now := time.Now().UTC()
	return []*Template{
		{
			ID:      "password-expiry",
			Name:    "Password Expiry Notice",
			Subject: "Action required: your password expires today",
			Body: "Your network password expires in 4 hours. To avoid losing " +
				"access to email and shared drives, confirm your current " +
				"password now using the link below.",
			CreatedAt: now,
		},
		{
			ID:      "shared-document",
			Name:    "Shared Document",
			Subject: "A document has been shared with you",
			Body: "Your colleague shared \"Q3 Budget Review.xlsx\" with you. " +
				"Sign in with your work account to view the document before " +
				"the link expires.",
			CreatedAt: now,
		},
		{
			ID:      "payroll-update",
			Name:    "Payroll Update",
			Subject: "Please verify your banking details",
			Body: "We are migrating to a new payroll provider this month. " +
				"Verify your banking details before Friday to make sure your " +
				"next salary payment is not delayed.",
			CreatedAt: now,
		},
		{
			ID:      "delivery-failed",
			Name:    "Failed Delivery",
			Subject: "We could not deliver your package",
			Body: "A delivery addressed to you could not be completed. " +
				"Reschedule your delivery within 48 hours or the package " +
				"will be returned to the sender.",
			CreatedAt: now,
		},
		{
			ID:      "it-helpdesk",
			Name:    "IT Helpdesk Upgrade",
			Subject: "Mailbox storage limit reached",
			Body: "Your mailbox has reached 98% of its storage limit. " +
				"Incoming mail will bounce unless you request an upgrade " +
				"through the self-service portal below.",
			CreatedAt: now,
		},
	}
}

// Seed upserts the built-in template catalog.
func Seed(ctx context.Context, templates TemplateRepository) error {
	for _, t := range BuiltinTemplates() {
		if err := templates.Upsert(ctx, t); err != nil {
			return err
		}
	}
	return nil
}
