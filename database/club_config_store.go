package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetClubConfig returns ErrNotFound until settings are first saved.
func (s *Store) GetClubConfig(ctx context.Context) (*ClubConfig, error) {
	var c ClubConfig
	err := s.db.QueryRowContext(ctx,
		`SELECT sender_name, sender_email, transport_endpoint, updated_at FROM club_config WHERE id = 1`,
	).Scan(&c.SenderName, &c.SenderEmail, &c.TransportEndpoint, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load club config: %w", err)
	}
	return &c, nil
}

func (s *Store) SaveClubConfig(ctx context.Context, c *ClubConfig) error {
	c.UpdatedAt = time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO club_config (id, sender_name, sender_email, transport_endpoint, updated_at)
		 VALUES (1, $1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET sender_name = EXCLUDED.sender_name, sender_email = EXCLUDED.sender_email,
		     transport_endpoint = EXCLUDED.transport_endpoint, updated_at = EXCLUDED.updated_at`,
		c.SenderName, c.SenderEmail, c.TransportEndpoint, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save club config: %w", err)
	}
	return nil
}
