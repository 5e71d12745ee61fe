// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

package web

import (
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/oklog/ulid/v2"

	"github.com/phishguard/phishguard/internal/campaign"
)

type campaignRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	FakeLink      string `json:"fake_link"`
	FakeMessage   string `json:"fake_message"`
	AwarenessPage string `json:"awareness_page"`
	TemplateID    string `json:"template_id"`
}

func (r campaignRequest) input() campaign.CreateInput {
	return campaign.CreateInput{
		Title:         r.Title,
		Description:   r.Description,
		FakeLink:      r.FakeLink,
		FakeMessage:   r.FakeMessage,
		AwarenessPage: r.AwarenessPage,
		TemplateID:    r.TemplateID,
	}
}

func campaignJSON(c *campaign.Campaign) fiber.Map {
	return fiber.Map{
		"id":             c.ID.String(),
		"title":          c.Title,
		"description":    c.Description,
		"fake_link":      c.FakeLink,
		"fake_message":   c.FakeMessage,
		"awareness_page": c.AwarenessPage,
		"template_id":    c.TemplateID,
		"created_at":     c.CreatedAt,
		"updated_at":     c.UpdatedAt,
	}
}

func (s *Server) handleCreateCampaign(c fiber.Ctx) error {
	session, err := s.currentSession(c)
	if err != nil {
		return respondError(c, err)
	}
	if session == nil {
		return unauthorized(c)
	}
	if _, err := s.verifiedAccount(c, session); err != nil {
		return respondError(c, err)
	}

	var req campaignRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	created, err := s.campaigns.Create(c.Context(), session.AccountID, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(campaignJSON(created))
}

func (s *Server) handleListCampaigns(c fiber.Ctx) error {
	session, err := s.currentSession(c)
	if err != nil {
		return respondError(c, err)
	}
	if session == nil {
		return unauthorized(c)
	}

	campaigns, err := s.campaigns.List(c.Context(), session.AccountID)
	if err != nil {
		return respondError(c, err)
	}

	out := make([]fiber.Map, 0, len(campaigns))
	for _, cp := range campaigns {
		out = append(out, campaignJSON(cp))
	}
	return c.JSON(fiber.Map{"campaigns": out})
}

func (s *Server) handleGetCampaign(c fiber.Ctx) error {
	session, err := s.currentSession(c)
	if err != nil {
		return respondError(c, err)
	}
	if session == nil {
		return unauthorized(c)
	}

	id, err := ulid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid campaign id")
	}

	found, err := s.campaigns.Get(c.Context(), session.AccountID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(campaignJSON(found))
}

func (s *Server) handleUpdateCampaign(c fiber.Ctx) error {
	session, err := s.currentSession(c)
	if err != nil {
		return respondError(c, err)
	}
	if session == nil {
		return unauthorized(c)
	}
	if _, err := s.verifiedAccount(c, session); err != nil {
		return respondError(c, err)
	}

	id, err := ulid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid campaign id")
	}

	var req campaignRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	updated, err := s.campaigns.Update(c.Context(), session.AccountID, id, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(campaignJSON(updated))
}

func (s *Server) handleDeleteCampaign(c fiber.Ctx) error {
	session, err := s.currentSession(c)
	if err != nil {
		return respondError(c, err)
	}
	if session == nil {
		return unauthorized(c)
	}
	if _, err := s.verifiedAccount(c, session); err != nil {
		return respondError(c, err)
	}

	id, err := ulid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid campaign id")
	}

	if err := s.campaigns.Delete(c.Context(), session.AccountID, id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (s *Server) handleListTemplates(c fiber.Ctx) error {
	session, err := s.currentSession(c)
	if err != nil {
		return respondError(c, err)
	}
	if session == nil {
		return unauthorized(c)
	}

	templates, err := s.campaigns.ListTemplates(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	out := make([]fiber.Map, 0, len(templates))
	for _, t := range templates {
		out = append(out, fiber.Map{
			"id":      t.ID,
			"name":    t.Name,
			"subject": t.Subject,
			"body":    t.Body,
		})
	}
	return c.JSON(fiber.Map{"templates": out})
}

func (s *Server) handleGetTemplate(c fiber.Ctx) error {
	session, err := s.currentSession(c)
	if err != nil {
		return respondError(c, err)
	}
	if session == nil {
		return unauthorized(c)
	}

	t, err := s.campaigns.GetTemplate(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"id":      t.ID,
		"name":    t.Name,
		"subject": t.Subject,
		"body":    t.Body,
	})
}
