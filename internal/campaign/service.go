// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

package campaign

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// ErrNotFound marks a campaign or template that does not exist.
var ErrNotFound = errors.New("not found")

// Service implements campaign operations for the dashboard. All reads and
// writes are scoped to the owning account; a campaign owned by someone else
// behaves exactly like a missing one.
type Service struct {
	campaigns CampaignRepository
	templates TemplateRepository
	logger    *slog.Logger
}

// NewService wires a campaign service. A nil logger falls back to the default.
func NewService(campaigns CampaignRepository, templates TemplateRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{campaigns: campaigns, templates: templates, logger: logger}
}

// CreateInput carries the user-supplied campaign fields.
type CreateInput struct {
	Title         string
	Description   string
	FakeLink      string
	FakeMessage   string
	AwarenessPage string
	TemplateID    string
}

// Create validates the input and stores a new campaign for the owner. When a
// template is referenced it must exist in the catalog.
func (s *Service) Create(ctx context.Context, ownerID ulid.ULID, in CreateInput) (*Campaign, error) {
	c, err := NewCampaign(ownerID, in.Title, in.Description, in.FakeLink, in.FakeMessage, in.AwarenessPage, in.TemplateID)
	if err != nil {
		return nil, err
	}

	if c.TemplateID != "" {
		if _, err := s.templates.GetByID(ctx, c.TemplateID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, oops.Code("CAMPAIGN_UNKNOWN_TEMPLATE").
					With("template_id", c.TemplateID).
					Errorf("template %q does not exist", c.TemplateID)
			}
			return nil, oops.Code("CAMPAIGN_CREATE_FAILED").Wrap(err)
		}
	}

	if err := s.campaigns.Create(ctx, c); err != nil {
		return nil, oops.Code("CAMPAIGN_CREATE_FAILED").Wrap(err)
	}

	s.logger.InfoContext(ctx, "campaign created",
		slog.String("campaign_id", c.ID.String()),
		slog.String("owner_id", ownerID.String()))
	return c, nil
}

// Get returns one campaign, owner-scoped.
func (s *Service) Get(ctx context.Context, ownerID, id ulid.ULID) (*Campaign, error) {
	c, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("CAMPAIGN_NOT_FOUND").Wrap(err)
		}
		return nil, oops.Code("CAMPAIGN_GET_FAILED").Wrap(err)
	}
	if c.OwnerID.Compare(ownerID) != 0 {
		return nil, oops.Code("CAMPAIGN_NOT_FOUND").Wrap(ErrNotFound)
	}
	return c, nil
}

// List returns the owner's campaigns, newest first.
func (s *Service) List(ctx context.Context, ownerID ulid.ULID) ([]*Campaign, error) {
	campaigns, err := s.campaigns.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, oops.Code("CAMPAIGN_LIST_FAILED").Wrap(err)
	}
	return campaigns, nil
}

// Update applies new field values to an owner's campaign.
func (s *Service) Update(ctx context.Context, ownerID, id ulid.ULID, in CreateInput) (*Campaign, error) {
	c, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := validateFields(in.Title, in.Description, in.FakeLink, in.FakeMessage, in.AwarenessPage); err != nil {
		return nil, err
	}

	c.Title = in.Title
	c.Description = in.Description
	c.FakeLink = in.FakeLink
	c.FakeMessage = in.FakeMessage
	c.AwarenessPage = in.AwarenessPage
	c.TemplateID = in.TemplateID
	c.UpdatedAt = time.Now().UTC()

	if err := s.campaigns.Update(ctx, c); err != nil {
		return nil, oops.Code("CAMPAIGN_UPDATE_FAILED").Wrap(err)
	}
	return c, nil
}

// Delete removes an owner's campaign. Deleting a missing campaign fails with
// CAMPAIGN_NOT_FOUND.
func (s *Service) Delete(ctx context.Context, ownerID, id ulid.ULID) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.campaigns.Delete(ctx, id); err != nil {
		return oops.Code("CAMPAIGN_DELETE_FAILED").Wrap(err)
	}
	s.logger.InfoContext(ctx, "campaign deleted", slog.String("campaign_id", id.String()))
	return nil
}

// ListTemplates returns the template catalog.
func (s *Service) ListTemplates(ctx context.Context) ([]*Template, error) {
	templates, err := s.templates.List(ctx)
	if err != nil {
		return nil, oops.Code("TEMPLATE_LIST_FAILED").Wrap(err)
	}
	return templates, nil
}

// GetTemplate returns one catalog template.
func (s *Service) GetTemplate(ctx context.Context, id string) (*Template, error) {
	t, err := s.templates.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("TEMPLATE_NOT_FOUND").Wrap(err)
		}
		return nil, oops.Code("TEMPLATE_GET_FAILED").Wrap(err)
	}
	return t, nil
}
