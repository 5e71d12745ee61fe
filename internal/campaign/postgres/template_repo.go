// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhishGuard Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/phishguard/phishguard/internal/campaign"
)

// TemplateRepository implements campaign.TemplateRepository using PostgreSQL.
type TemplateRepository struct {
	db Querier
}

// NewTemplateRepository creates a new TemplateRepository.
func NewTemplateRepository(db Querier) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// GetByID retrieves one catalog template.
func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*campaign.Template, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, subject, body, created_at
		FROM templates
		WHERE id = $1
	`, id)

	var t campaign.Template
	err := row.Scan(&t.ID, &t.Name, &t.Subject, &t.Body, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TEMPLATE_NOT_FOUND").Wrap(campaign.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("TEMPLATE_GET_FAILED").Wrap(err)
	}
	return &t, nil
}

// List returns all catalog templates ordered by name.
func (r *TemplateRepository) List(ctx context.Context) ([]*campaign.Template, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, subject, body, created_at
		FROM templates
		ORDER BY name
	`)
	if err != nil {
		return nil, oops.Code("TEMPLATE_LIST_FAILED").Wrap(err)
	}
	defer rows.Close()

	var templates []*campaign.Template
	for rows.Next() {
		var t campaign.Template
		if err := rows.Scan(&t.ID, &t.Name, &t.Subject, &t.Body, &t.CreatedAt); err != nil {
			return nil, oops.Code("TEMPLATE_LIST_FAILED").Wrap(err)
		}
		templates = append(templates, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("TEMPLATE_LIST_FAILED").Wrap(err)
	}
	return templates, nil
}

// Upsert inserts or refreshes a catalog template. Used by seeding.
func (r *TemplateRepository) Upsert(ctx context.Context, t *campaign.Template) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO templates (id, name, subject, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, subject = EXCLUDED.subject, body = EXCLUDED.body
	`, t.ID, t.Name, t.Subject, t.Body, t.CreatedAt)
	if err != nil {
		return oops.Code("TEMPLATE_UPSERT_FAILED").With("template_id", t.ID).Wrap(err)
	}
	return nil
}
