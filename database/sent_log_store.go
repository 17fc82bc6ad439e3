package database

import (
	"context"
	"fmt"
	"time"
)

// AppendSentLog inserts an entry and fills in its ID and CreatedAt.
func (s *Store) AppendSentLog(ctx context.Context, entry *SentLogEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO sent_logs (log_date, display_timestamp, email, subject, type, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		entry.Date, entry.Timestamp, entry.Email, entry.Subject, string(entry.Type), string(entry.Status), entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to insert sent log: %w", err)
	}
	return nil
}

// ListSentLogs returns the history newest first.
func (s *Store) ListSentLogs(ctx context.Context) ([]SentLogEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, log_date, display_timestamp, email, subject, type, status, created_at
		 FROM sent_logs ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sent logs: %w", err)
	}
	defer rows.Close()

	var logs []SentLogEntry
	for rows.Next() {
		var e SentLogEntry
		var kind, status string
		if err := rows.Scan(&e.ID, &e.Date, &e.Timestamp, &e.Email, &e.Subject, &kind, &status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sent log row: %w", err)
		}
		e.Type = LogType(kind)
		e.Status = LogStatus(status)
		logs = append(logs, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over sent log rows: %w", err)
	}
	return logs, nil
}

// WasSent reports whether a message of kind went to email on date.
func (s *Store) WasSent(ctx context.Context, email, date string, kind LogType) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM sent_logs WHERE lower(email) = lower($1) AND log_date = $2 AND type = $3)`,
		email, date, string(kind),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check sent log: %w", err)
	}
	return exists, nil
}

// DeleteSentLog removes one entry.
func (s *Store) DeleteSentLog(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sent_logs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sent log %d: %w", id, err)
	}
	return rowsAffectedOrNotFound(res)
}

// ClearSentLogs removes the entire history.
func (s *Store) ClearSentLogs(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sent_logs`); err != nil {
		return fmt.Errorf("failed to clear sent logs: %w", err)
	}
	return nil
}
