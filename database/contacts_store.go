package database

import (
	"context"
	"fmt"
)

// ListContacts returns every category, empty ones included, in stored order.
func (s *Store) ListContacts(ctx context.Context) (map[Category][]Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, name, email, dob FROM contacts ORDER BY category, position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	out := make(map[Category][]Contact, len(Categories))
	for _, c := range Categories {
		out[c] = []Contact{}
	}
	for rows.Next() {
		var cat string
		var c Contact
		if err := rows.Scan(&cat, &c.Name, &c.Email, &c.DOB); err != nil {
			return nil, fmt.Errorf("failed to scan contact row: %w", err)
		}
		out[Category(cat)] = append(out[Category(cat)], c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over contact rows: %w", err)
	}
	return out, nil
}

// ReplaceContacts overwrites a category's list in one transaction.
func (s *Store) ReplaceContacts(ctx context.Context, category Category, contacts []Contact) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM contacts WHERE category = $1`, string(category)); err != nil {
		return fmt.Errorf("failed to clear contacts for %s: %w", category, err)
	}
	for i, c := range contacts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO contacts (category, position, name, email, dob) VALUES ($1, $2, $3, $4, $5)`,
			string(category), i, c.Name, c.Email, c.DOB,
		); err != nil {
			return fmt.Errorf("failed to insert contact %s: %w", c.Email, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit contacts: %w", err)
	}
	return nil
}
