// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/phishguard/phishguard/internal/campaign"
)

// CampaignRepository implements campaign.CampaignRepository using PostgreSQL.
type CampaignRepository struct {
	db Querier
}

// NewCampaignRepository creates a new CampaignRepository.
func NewCampaignRepository(db Querier) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Create stores a new campaign.
func (r *CampaignRepository) Create(ctx context.Context, c *campaign.Campaign) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO campaigns (
			id, owner_id, title, description, fake_link, fake_message,
			awareness_page, template_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		c.ID.String(),
		c.OwnerID.String(),
		c.Title,
		c.Description,
		c.FakeLink,
		c.FakeMessage,
		c.AwarenessPage,
		nullableString(c.TemplateID),
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return oops.Code("CAMPAIGN_CREATE_FAILED").Wrap(err)
	}
	return nil
}

// GetByID retrieves a campaign by ID.
func (r *CampaignRepository) GetByID(ctx context.Context, id ulid.ULID) (*campaign.Campaign, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, owner_id, title, description, fake_link, fake_message,
		       awareness_page, template_id, created_at, updated_at
		FROM campaigns
		WHERE id = $1
	`, id.String())

	c, err := scanCampaign(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("CAMPAIGN_NOT_FOUND").Wrap(campaign.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("CAMPAIGN_GET_FAILED").Wrap(err)
	}
	return c, nil
}

// ListByOwner returns the owner's campaigns, newest first.
func (r *CampaignRepository) ListByOwner(ctx context.Context, ownerID ulid.ULID) ([]*campaign.Campaign, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, owner_id, title, description, fake_link, fake_message,
		       awareness_page, template_id, created_at, updated_at
		FROM campaigns
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID.String())
	if err != nil {
		return nil, oops.Code("CAMPAIGN_LIST_FAILED").Wrap(err)
	}
	defer rows.Close()

	var campaigns []*campaign.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, oops.Code("CAMPAIGN_LIST_FAILED").Wrap(err)
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("CAMPAIGN_LIST_FAILED").Wrap(err)
	}
	return campaigns, nil
}

// Update rewrites the mutable campaign fields.
func (r *CampaignRepository) Update(ctx context.Context, c *campaign.Campaign) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE campaigns
		SET title = $2, description = $3, fake_link = $4, fake_message = $5,
		    awareness_page = $6, template_id = $7, updated_at = $8
		WHERE id = $1
	`,
		c.ID.String(),
		c.Title,
		c.Description,
		c.FakeLink,
		c.FakeMessage,
		c.AwarenessPage,
		nullableString(c.TemplateID),
		c.UpdatedAt,
	)
	if err != nil {
		return oops.Code("CAMPAIGN_UPDATE_FAILED").Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("CAMPAIGN_NOT_FOUND").Wrap(campaign.ErrNotFound)
	}
	return nil
}

// Delete removes a campaign.
func (r *CampaignRepository) Delete(ctx context.Context, id ulid.ULID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("CAMPAIGN_DELETE_FAILED").Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("CAMPAIGN_NOT_FOUND").Wrap(campaign.ErrNotFound)
	}
	return nil
}

func scanCampaign(row pgx.Row) (*campaign.Campaign, error) {
	var c campaign.Campaign
	var idStr, ownerIDStr string
	var templateID sql.NullString

	err := row.Scan(
		&idStr,
		&ownerIDStr,
		&c.Title,
		&c.Description,
		&c.FakeLink,
		&c.FakeMessage,
		&c.AwarenessPage,
		&templateID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers classify pgx.ErrNoRows
	}

	c.TemplateID = templateID.String
	if c.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.Code("CAMPAIGN_INVALID_ID").With("id", idStr).Wrap(err)
	}
	if c.OwnerID, err = ulid.Parse(ownerIDStr); err != nil {
		return nil, oops.Code("CAMPAIGN_INVALID_ID").With("owner_id", ownerIDStr).Wrap(err)
	}
	return &c, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
