package services

import (
	"fmt"
	"strings"
	"sync"

	"club-mailer/apperrors"
	"club-mailer/database"
)

// ComposeState is the bulk email being edited.
type ComposeState struct {
	Subject    string               `json:"subject"`
	Body       string               `json:"body"`
	EventDate  string               `json:"eventDate,omitempty"`
	Recipients []database.Recipient `json:"recipients"`
	Columns    []string             `json:"columns"`
	// EditingID is set while a pending scheduled item is being revised.
	EditingID string `json:"editingId,omitempty"`
}

func (s ComposeState) clone() ComposeState {
	out := s
	out.Recipients = make([]database.Recipient, len(s.Recipients))
	for i, r := range s.Recipients {
		out.Recipients[i] = r.Clone()
	}
	out.Columns = append([]string{}, s.Columns...)
	return out
}

// Template returns the subject and body.
func (s ComposeState) Template() Template {
	return Template{Subject: s.Subject, Body: s.Body}
}

// Workspace holds the compose state shared by the console session.
type Workspace struct {
	mu    sync.Mutex
	state ComposeState
}

func NewWorkspace() *Workspace {
	return &Workspace{state: ComposeState{Recipients: []database.Recipient{}, Columns: []string{}}}
}

// Snapshot returns a copy of the current state.
func (w *Workspace) Snapshot() ComposeState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.clone()
}

// LoadBatch replaces the recipient list with an ingested batch.
func (w *Workspace) LoadBatch(b *Batch) {
	w.mu.Lock()
	defer w.mu.Unlock()
	next := ComposeState{Recipients: b.Recipients, Columns: b.Columns}.clone()
	w.state.Recipients = next.Recipients
	w.state.Columns = next.Columns
}

func (w *Workspace) SetTemplate(subject, body string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Subject = subject
	w.state.Body = body
}

// SetEventDate stores raw as YYYY-MM-DD. Empty clears it.
func (w *Workspace) SetEventDate(raw string) error {
	normalized := ""
	if strings.TrimSpace(raw) != "" {
		t, ok := ParseCalendarDate(raw)
		if !ok {
			return apperrors.NewValidationError(fmt.Sprintf("event date %q is not a date", raw))
		}
		normalized = t.Format(DateLayout)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.EventDate = normalized
	return nil
}

// UpdateRecipient sets one field of one recipient. Fields whose name
// contains "name" or "mail" also refresh the normalized values.
func (w *Workspace) UpdateRecipient(index int, field, value string) error {
	field = strings.TrimSpace(field)
	if field == "" {
		return apperrors.NewValidationError("field is required")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if index < 0 || index >= len(w.state.Recipients) {
		return apperrors.NewNotFoundError("Recipient", fmt.Sprintf("index %d", index))
	}

	r := &w.state.Recipients[index]
	if r.Values == nil {
		r.Values = make(map[string]string)
	}
	if _, ok := r.Values[field]; !ok {
		r.Keys = append(r.Keys, field)
		if !containsString(w.state.Columns, field) {
			w.state.Columns = append(w.state.Columns, field)
		}
	}
	r.Values[field] = value

	lower := strings.ToLower(field)
	if strings.Contains(lower, "name") {
		r.NormalizedName = strings.TrimSpace(value)
	}
	if strings.Contains(lower, "mail") {
		r.NormalizedEmail = strings.TrimSpace(value)
	}
	return nil
}

func (w *Workspace) RemoveRecipient(index int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if index < 0 || index >= len(w.state.Recipients) {
		return apperrors.NewNotFoundError("Recipient", fmt.Sprintf("index %d", index))
	}
	w.state.Recipients = append(w.state.Recipients[:index], w.state.Recipients[index+1:]...)
	return nil
}

// Load puts a scheduled item back into the workspace for revision.
func (w *Workspace) Load(item *database.ScheduledItem) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = ComposeState{
		Subject:    item.Subject,
		Body:       item.Body,
		EventDate:  item.EventDate,
		Recipients: item.Recipients,
		Columns:    item.Columns,
		EditingID:  item.ID,
	}.clone()
}

func (w *Workspace) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = ComposeState{Recipients: []database.Recipient{}, Columns: []string{}}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
