package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

const scheduledColumns = `id, subject, body, recipients, columns, event_date, scheduled_at, status, sent_at, stats, created_by`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanScheduled(row rowScanner) (*ScheduledItem, error) {
	var item ScheduledItem
	var recipients, columns []byte
	var stats []byte
	var status string
	var sentAt sql.NullTime
	if err := row.Scan(&item.ID, &item.Subject, &item.Body, &recipients, &columns, &item.EventDate,
		&item.ScheduledAt, &status, &sentAt, &stats, &item.CreatedBy); err != nil {
		return nil, err
	}
	item.Status = ScheduleStatus(status)
	if sentAt.Valid {
		t := sentAt.Time
		item.SentAt = &t
	}
	if err := json.Unmarshal(recipients, &item.Recipients); err != nil {
		return nil, fmt.Errorf("failed to decode recipients of %s: %w", item.ID, err)
	}
	if err := json.Unmarshal(columns, &item.Columns); err != nil {
		return nil, fmt.Errorf("failed to decode columns of %s: %w", item.ID, err)
	}
	if len(stats) > 0 {
		item.Stats = &SendStats{}
		if err := json.Unmarshal(stats, item.Stats); err != nil {
			return nil, fmt.Errorf("failed to decode stats of %s: %w", item.ID, err)
		}
	}
	return &item, nil
}

// jsonb values are bound as strings; lib/pq would send []byte as bytea.
type scheduledPayload struct {
	recipients string
	columns    string
	stats      interface{}
	sentAt     interface{}
}

func encodeScheduled(item *ScheduledItem) (*scheduledPayload, error) {
	var p scheduledPayload
	recipients := item.Recipients
	if recipients == nil {
		recipients = []Recipient{}
	}
	raw, err := json.Marshal(recipients)
	if err != nil {
		return nil, fmt.Errorf("failed to encode recipients: %w", err)
	}
	p.recipients = string(raw)

	columns := item.Columns
	if columns == nil {
		columns = []string{}
	}
	if raw, err = json.Marshal(columns); err != nil {
		return nil, fmt.Errorf("failed to encode columns: %w", err)
	}
	p.columns = string(raw)

	if item.Stats != nil {
		if raw, err = json.Marshal(item.Stats); err != nil {
			return nil, fmt.Errorf("failed to encode stats: %w", err)
		}
		p.stats = string(raw)
	}
	if item.SentAt != nil {
		p.sentAt = *item.SentAt
	}
	return &p, nil
}

// ListScheduled returns items newest first.
func (s *Store) ListScheduled(ctx context.Context) ([]ScheduledItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+scheduledColumns+` FROM scheduled_emails ORDER BY scheduled_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query scheduled emails: %w", err)
	}
	defer rows.Close()

	var items []ScheduledItem
	for rows.Next() {
		item, err := scanScheduled(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scheduled email row: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over scheduled email rows: %w", err)
	}
	return items, nil
}

func (s *Store) GetScheduled(ctx context.Context, id string) (*ScheduledItem, error) {
	item, err := scanScheduled(s.db.QueryRowContext(ctx,
		`SELECT `+scheduledColumns+` FROM scheduled_emails WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load scheduled email %s: %w", id, err)
	}
	return item, nil
}

func (s *Store) CreateScheduled(ctx context.Context, item *ScheduledItem) error {
	p, err := encodeScheduled(item)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scheduled_emails (`+scheduledColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		item.ID, item.Subject, item.Body, p.recipients, p.columns, item.EventDate,
		item.ScheduledAt, string(item.Status), p.sentAt, p.stats, item.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert scheduled email: %w", err)
	}
	return nil
}

func (s *Store) UpdateScheduled(ctx context.Context, item *ScheduledItem) error {
	p, err := encodeScheduled(item)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE scheduled_emails
		 SET subject = $2, body = $3, recipients = $4, columns = $5, event_date = $6,
		     scheduled_at = $7, status = $8, sent_at = $9, stats = $10
		 WHERE id = $1`,
		item.ID, item.Subject, item.Body, p.recipients, p.columns, item.EventDate,
		item.ScheduledAt, string(item.Status), p.sentAt, p.stats,
	)
	if err != nil {
		return fmt.Errorf("failed to update scheduled email %s: %w", item.ID, err)
	}
	return rowsAffectedOrNotFound(res)
}

func (s *Store) DeleteScheduled(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scheduled_emails WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scheduled email %s: %w", id, err)
	}
	return rowsAffectedOrNotFound(res)
}
