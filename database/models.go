package database

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"
)

// ErrNotFound is returned by stores when a keyed record does not exist.
var ErrNotFound = errors.New("record not found")

// Category is one of the fixed contact lists.
type Category string

const (
	CategoryPresidents  Category = "Presidents"
	CategorySecretaries Category = "Secretaries"
	CategoryCouncil     Category = "Council"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryPresidents, CategorySecretaries, CategoryCouncil}

// ParseCategory matches a category name case-insensitively.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, true
		}
	}
	return "", false
}

// Contact is a club member eligible for birthday wishes. DOB holds YYYY-MM-DD
// when the imported value could be parsed, otherwise the raw cell text.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	DOB   string `json:"dob"`
}

// Key is the case-insensitive identity of a contact within its category.
func (c Contact) Key() string {
	return strings.ToLower(strings.TrimSpace(c.Email))
}

// Recipient is one imported spreadsheet row. Keys keeps the sheet's column
// order so placeholder substitution is deterministic.
type Recipient struct {
	Keys            []string          `json:"keys"`
	Values          map[string]string `json:"values"`
	NormalizedName  string            `json:"normalizedName"`
	NormalizedEmail string            `json:"normalizedEmail"`
}

// UnmarshalJSON completes Keys from Values when a client sends a partial or
// missing key list. Missing keys are appended in sorted order.
func (r *Recipient) UnmarshalJSON(data []byte) error {
	type plain Recipient
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Recipient(p)
	r.completeKeys()
	return nil
}

func (r *Recipient) completeKeys() {
	seen := make(map[string]struct{}, len(r.Keys))
	keys := make([]string, 0, len(r.Values))
	for _, k := range r.Keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	var missing []string
	for k := range r.Values {
		if _, ok := seen[k]; !ok {
			missing = append(missing, k)
		}
	}
	sort.Strings(missing)
	r.Keys = append(keys, missing...)
}

// Clone returns a deep copy.
func (r Recipient) Clone() Recipient {
	out := Recipient{
		Keys:            append([]string(nil), r.Keys...),
		Values:          make(map[string]string, len(r.Values)),
		NormalizedName:  r.NormalizedName,
		NormalizedEmail: r.NormalizedEmail,
	}
	for k, v := range r.Values {
		out.Values[k] = v
	}
	return out
}

// LogType distinguishes bulk sends from birthday wishes.
type LogType string

const (
	LogTypeBulk     LogType = "bulk"
	LogTypeBirthday LogType = "birthday"
)

// LogStatus of a sent log entry. Only successful sends are recorded.
type LogStatus string

const LogStatusSuccess LogStatus = "success"

// SentLogEntry records one delivered email.
type SentLogEntry struct {
	ID        int64     `json:"id"`
	Date      string    `json:"date"`
	Timestamp string    `json:"timestamp"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Type      LogType   `json:"type"`
	Status    LogStatus `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Draft is a customized birthday message for one contact.
type Draft struct {
	Email     string    `json:"email"`
	Category  Category  `json:"category"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ScheduleStatus of a deferred bulk email.
type ScheduleStatus string

const (
	ScheduleStatusPending   ScheduleStatus = "pending"
	ScheduleStatusCompleted ScheduleStatus = "completed"
)

// SendStats summarizes a dispatch.
type SendStats struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// ScheduledItem is a bulk email saved for later sending.
type ScheduledItem struct {
	ID          string         `json:"id"`
	Subject     string         `json:"subject"`
	Body        string         `json:"body"`
	Recipients  []Recipient    `json:"recipients"`
	Columns     []string       `json:"columns"`
	EventDate   string         `json:"eventDate,omitempty"`
	ScheduledAt time.Time      `json:"scheduledAt"`
	Status      ScheduleStatus `json:"status"`
	SentAt      *time.Time     `json:"sentAt,omitempty"`
	Stats       *SendStats     `json:"stats,omitempty"`
	CreatedBy   string         `json:"createdBy,omitempty"`
}

// ClubConfig holds the sender identity and transport endpoint.
type ClubConfig struct {
	SenderName        string    `json:"senderName"`
	SenderEmail       string    `json:"senderEmail"`
	TransportEndpoint string    `json:"transportEndpoint"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Missing lists the names of unset sender fields.
func (c *ClubConfig) Missing() []string {
	var missing []string
	if c == nil {
		return []string{"senderName", "senderEmail", "transportEndpoint"}
	}
	if strings.TrimSpace(c.SenderName) == "" {
		missing = append(missing, "senderName")
	}
	if strings.TrimSpace(c.SenderEmail) == "" {
		missing = append(missing, "senderEmail")
	}
	if strings.TrimSpace(c.TransportEndpoint) == "" {
		missing = append(missing, "transportEndpoint")
	}
	return missing
}
