// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

// Package campaign holds the phishing-simulation campaign domain: campaigns
// owned by dashboard accounts and the read-only template catalog.
package campaign

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Field limits enforced on create and update.
const (
	TitleMinLen         = 3
	TitleMaxLen         = 200
	DescriptionMaxLen   = 1000
	FakeMessageMinLen   = 10
	FakeMessageMaxLen   = 2000
	AwarenessPageMaxLen = 5000
)

// Campaign is a phishing-awareness simulation owned by one account.
type Campaign struct {
	ID            ulid.ULID
	OwnerID       ulid.ULID
	Title         string
	Description   string
	FakeLink      string
	FakeMessage   string
	AwarenessPage string
	TemplateID    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Template is a built-in phishing mail template. The catalog is read-only at
// runtime and populated by the seed command.
type Template struct {
	ID        string
	Name      string
	Subject   string
	Body      string
	CreatedAt time.Time
}

// NewCampaign validates the fields and builds a campaign for the owner.
func NewCampaign(ownerID ulid.ULID, title, description, fakeLink, fakeMessage, awarenessPage, templateID string) (*Campaign, error) {
	if ownerID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("CAMPAIGN_INVALID_OWNER").Errorf("owner id is required")
	}
	if err := validateFields(title, description, fakeLink, fakeMessage, awarenessPage); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Campaign{
		ID:            ulid.Make(),
		OwnerID:       ownerID,
		Title:         strings.TrimSpace(title),
		Description:   strings.TrimSpace(description),
		FakeLink:      strings.TrimSpace(fakeLink),
		FakeMessage:   strings.TrimSpace(fakeMessage),
		AwarenessPage: strings.TrimSpace(awarenessPage),
		TemplateID:    templateID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func validateFields(title, description, fakeLink, fakeMessage, awarenessPage string) error {
	title = strings.TrimSpace(title)
	if n := len(title); n < TitleMinLen || n > TitleMaxLen {
		return oops.Code("CAMPAIGN_INVALID_TITLE").
			With("min", TitleMinLen).
			With("max", TitleMaxLen).
			Errorf("title must be between %d and %d characters", TitleMinLen, TitleMaxLen)
	}
	if len(strings.TrimSpace(description)) > DescriptionMaxLen {
		return oops.Code("CAMPAIGN_INVALID_DESCRIPTION").
			With("max", DescriptionMaxLen).
			Errorf("description must be at most %d characters", DescriptionMaxLen)
	}
	if err := validateFakeLink(strings.TrimSpace(fakeLink)); err != nil {
		return err
	}
	if n := len(strings.TrimSpace(fakeMessage)); n < FakeMessageMinLen || n > FakeMessageMaxLen {
		return oops.Code("CAMPAIGN_INVALID_MESSAGE").
			With("min", FakeMessageMinLen).
			With("max", FakeMessageMaxLen).
			Errorf("message must be between %d and %d characters", FakeMessageMinLen, FakeMessageMaxLen)
	}
	if len(strings.TrimSpace(awarenessPage)) > AwarenessPageMaxLen {
		return oops.Code("CAMPAIGN_INVALID_AWARENESS_PAGE").
			With("max", AwarenessPageMaxLen).
			Errorf("awareness page must be at most %d characters", AwarenessPageMaxLen)
	}
	return nil
}

func validateFakeLink(link string) error {
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return oops.Code("CAMPAIGN_INVALID_LINK").
			Errorf("link must be an absolute http or https URL")
	}
	return nil
}

// CampaignRepository persists campaigns.
type CampaignRepository interface {
	Create(ctx context.Context, c *Campaign) error
	GetByID(ctx context.Context, id ulid.ULID) (*Campaign, error)
	ListByOwner(ctx context.Context, ownerID ulid.ULID) ([]*Campaign, error)
	Update(ctx context.Context, c *Campaign) error
	Delete(ctx context.Context, id ulid.ULID) error
}

// TemplateRepository reads the template catalog.
type TemplateRepository interface {
	GetByID(ctx context.Context, id string) (*Template, error)
	List(ctx context.Context) ([]*Template, error)
	Upsert(ctx context.Context, t *Template) error
}
