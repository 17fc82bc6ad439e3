package database

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-process Repository used when no database is
// configured. Records are copied on the way in and out.
type MemoryStore struct {
	mu        sync.RWMutex
	contacts  map[Category][]Contact
	logs      []SentLogEntry
	nextLogID int64
	drafts    map[string]Draft
	scheduled map[string]ScheduledItem
	config    *ClubConfig
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		contacts:  make(map[Category][]Contact),
		drafts:    make(map[string]Draft),
		scheduled: make(map[string]ScheduledItem),
	}
}

var _ Repository = (*MemoryStore)(nil)

func (m *MemoryStore) ListContacts(_ context.Context) (map[Category][]Contact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[Category][]Contact, len(Categories))
	for _, c := range Categories {
		out[c] = append([]Contact{}, m.contacts[c]...)
	}
	return out, nil
}

func (m *MemoryStore) ReplaceContacts(_ context.Context, category Category, contacts []Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contacts[category] = append([]Contact{}, contacts...)
	return nil
}

func (m *MemoryStore) AppendSentLog(_ context.Context, entry *SentLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextLogID++
	entry.ID = m.nextLogID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	m.logs = append(m.logs, *entry)
	return nil
}

func (m *MemoryStore) ListSentLogs(_ context.Context) ([]SentLogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]SentLogEntry, 0, len(m.logs))
	for i := len(m.logs) - 1; i >= 0; i-- {
		out = append(out, m.logs[i])
	}
	return out, nil
}

func (m *MemoryStore) WasSent(_ context.Context, email, date string, kind LogType) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.logs {
		if strings.EqualFold(e.Email, email) && e.Date == date && e.Type == kind {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) DeleteSentLog(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.logs {
		if e.ID == id {
			m.logs = append(m.logs[:i], m.logs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStore) ClearSentLogs(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = nil
	return nil
}

func draftKey(email string, category Category) string {
	return string(category) + "\x00" + email
}

func (m *MemoryStore) ListDrafts(_ context.Context) ([]Draft, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Draft, 0, len(m.drafts))
	for _, d := range m.drafts {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *MemoryStore) SaveDraft(_ context.Context, d *Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = time.Now()
	}
	m.drafts[draftKey(d.Email, d.Category)] = *d
	return nil
}

func (m *MemoryStore) DeleteDraft(_ context.Context, email string, category Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, draftKey(email, category))
	return nil
}

func cloneScheduled(item ScheduledItem) ScheduledItem {
	out := item
	out.Recipients = make([]Recipient, len(item.Recipients))
	for i, r := range item.Recipients {
		out.Recipients[i] = r.Clone()
	}
	out.Columns = append([]string(nil), item.Columns...)
	if item.SentAt != nil {
		t := *item.SentAt
		out.SentAt = &t
	}
	if item.Stats != nil {
		s := *item.Stats
		out.Stats = &s
	}
	return out
}

func (m *MemoryStore) ListScheduled(_ context.Context) ([]ScheduledItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ScheduledItem, 0, len(m.scheduled))
	for _, item := range m.scheduled {
		out = append(out, cloneScheduled(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.After(out[j].ScheduledAt) })
	return out, nil
}

func (m *MemoryStore) GetScheduled(_ context.Context, id string) (*ScheduledItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.scheduled[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneScheduled(item)
	return &out, nil
}

func (m *MemoryStore) CreateScheduled(_ context.Context, item *ScheduledItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduled[item.ID] = cloneScheduled(*item)
	return nil
}

func (m *MemoryStore) UpdateScheduled(_ context.Context, item *ScheduledItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.scheduled[item.ID]; !ok {
		return ErrNotFound
	}
	m.scheduled[item.ID] = cloneScheduled(*item)
	return nil
}

func (m *MemoryStore) DeleteScheduled(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.scheduled[id]; !ok {
		return ErrNotFound
	}
	delete(m.scheduled, id)
	return nil
}

func (m *MemoryStore) GetClubConfig(_ context.Context) (*ClubConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config == nil {
		return nil, ErrNotFound
	}
	c := *m.config
	return &c, nil
}

func (m *MemoryStore) SaveClubConfig(_ context.Context, c *ClubConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.UpdatedAt = time.Now()
	saved := *c
	m.config = &saved
	return nil
}
