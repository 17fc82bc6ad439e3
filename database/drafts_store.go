package database

import (
	"context"
	"fmt"
	"time"
)

func (s *Store) ListDrafts(ctx context.Context) ([]Draft, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT email, category, subject, body, updated_at FROM drafts ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query drafts: %w", err)
	}
	defer rows.Close()

	var drafts []Draft
	for rows.Next() {
		var d Draft
		var cat string
		if err := rows.Scan(&d.Email, &cat, &d.Subject, &d.Body, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan draft row: %w", err)
		}
		d.Category = Category(cat)
		drafts = append(drafts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over draft rows: %w", err)
	}
	return drafts, nil
}

// SaveDraft upserts by (email, category).
func (s *Store) SaveDraft(ctx context.Context, d *Draft) error {
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO drafts (email, category, subject, body, updated_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (email, category) DO UPDATE
		 SET subject = EXCLUDED.subject, body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
		d.Email, string(d.Category), d.Subject, d.Body, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save draft for %s: %w", d.Email, err)
	}
	return nil
}

// DeleteDraft is a no-op when no draft exists.
func (s *Store) DeleteDraft(ctx context.Context, email string, category Category) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM drafts WHERE email = $1 AND category = $2`, email, string(category),
	); err != nil {
		return fmt.Errorf("failed to delete draft for %s: %w", email, err)
	}
	return nil
}
