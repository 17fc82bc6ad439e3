package database

import (
	"context"
	"database/sql"
)

// ContactStore persists the per-category contact lists.
type ContactStore interface {
	ListContacts(ctx context.Context) (map[Category][]Contact, error)
	ReplaceContacts(ctx context.Context, category Category, contacts []Contact) error
}

// SentLogStore persists delivered-email history.
type SentLogStore interface {
	AppendSentLog(ctx context.Context, entry *SentLogEntry) error
	ListSentLogs(ctx context.Context) ([]SentLogEntry, error)
	WasSent(ctx context.Context, email, date string, kind LogType) (bool, error)
	DeleteSentLog(ctx context.Context, id int64) error
	ClearSentLogs(ctx context.Context) error
}

// DraftStore persists customized birthday messages keyed by (email, category).
type DraftStore interface {
	ListDrafts(ctx context.Context) ([]Draft, error)
	SaveDraft(ctx context.Context, draft *Draft) error
	DeleteDraft(ctx context.Context, email string, category Category) error
}

// ScheduleStore persists deferred bulk emails.
type ScheduleStore interface {
	ListScheduled(ctx context.Context) ([]ScheduledItem, error)
	GetScheduled(ctx context.Context, id string) (*ScheduledItem, error)
	CreateScheduled(ctx context.Context, item *ScheduledItem) error
	UpdateScheduled(ctx context.Context, item *ScheduledItem) error
	DeleteScheduled(ctx context.Context, id string) error
}

// ConfigStore persists the single club sender configuration.
type ConfigStore interface {
	GetClubConfig(ctx context.Context) (*ClubConfig, error)
	SaveClubConfig(ctx context.Context, cfg *ClubConfig) error
}

// Repository is everything the mailer persists.
type Repository interface {
	ContactStore
	SentLogStore
	DraftStore
	ScheduleStore
	ConfigStore
}

// Store implements Repository on PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

var _ Repository = (*Store)(nil)

func rowsAffectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
