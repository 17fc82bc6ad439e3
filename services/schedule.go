package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"club-mailer/database"
)

// DefaultLookaheadDays bounds the upcoming birthday window.
const DefaultLookaheadDays = 30

const defaultBirthdaySubject = "Happy Birthday!"

// SentChecker answers whether a message kind already went to email on date.
type SentChecker interface {
	WasSent(email, date string, kind database.LogType) bool
}

// LogIndex is an in-memory SentChecker built from a sent log snapshot.
type LogIndex map[string]struct{}

func logIndexKey(email, date string, kind database.LogType) string {
	return strings.ToLower(strings.TrimSpace(email)) + "|" + date + "|" + string(kind)
}

// NewLogIndex indexes entries by (email, date, type).
func NewLogIndex(entries []database.SentLogEntry) LogIndex {
	idx := make(LogIndex, len(entries))
	for _, e := range entries {
		idx[logIndexKey(e.Email, e.Date, e.Type)] = struct{}{}
	}
	return idx
}

func (idx LogIndex) WasSent(email, date string, kind database.LogType) bool {
	_, ok := idx[logIndexKey(email, date, kind)]
	return ok
}

// UpcomingMessage is a derived birthday wish within the lookahead window.
type UpcomingMessage struct {
	Category     database.Category `json:"category"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	DOB          string            `json:"dob"`
	NextBirthday string            `json:"nextBirthday"`
	DaysAway     int               `json:"daysAway"`
	IsSent       bool              `json:"isSent"`
	HasDraft     bool              `json:"hasDraft"`
	Subject      string            `json:"subject"`
	Body         string            `json:"body"`
}

// Contact rebuilds the contact the message was derived from.
func (m UpcomingMessage) Contact() database.Contact {
	return database.Contact{Name: m.Name, Email: m.Email, DOB: m.DOB}
}

// Calculator derives upcoming birthday messages. It holds no state.
type Calculator struct {
	LookaheadDays int
}

// NewCalculator returns a Calculator with the given window, or the default
// when days is not positive.
func NewCalculator(days int) Calculator {
	if days <= 0 {
		days = DefaultLookaheadDays
	}
	return Calculator{LookaheadDays: days}
}

// Upcoming lists contacts whose next birthday is 0..LookaheadDays days after
// today's local midnight, sorted by distance. Ties keep category order and
// then list order. Contacts without a parseable date of birth are skipped.
func (c Calculator) Upcoming(
	contacts map[database.Category][]database.Contact,
	sent SentChecker,
	drafts []database.Draft,
	now time.Time,
) []UpcomingMessage {
	today := midnight(now)
	loc := now.Location()

	type draftKey struct {
		email    string
		category database.Category
	}
	draftIdx := make(map[draftKey]database.Draft, len(drafts))
	for _, d := range drafts {
		draftIdx[draftKey{d.Email, d.Category}] = d
	}

	out := []UpcomingMessage{}
	for _, cat := range database.Categories {
		for _, contact := range contacts[cat] {
			dob, ok := ParseCalendarDate(contact.DOB)
			if !ok {
				continue
			}
			next := nextOccurrence(dob, today, loc)
			daysAway := calendarDaysBetween(today, next)
			if daysAway < 0 || daysAway > c.LookaheadDays {
				continue
			}

			nextKey := next.Format(DateLayout)
			msg := UpcomingMessage{
				Category:     cat,
				Name:         contact.Name,
				Email:        contact.Email,
				DOB:          contact.DOB,
				NextBirthday: nextKey,
				DaysAway:     daysAway,
				IsSent:       sent != nil && sent.WasSent(contact.Email, nextKey, database.LogTypeBirthday),
				Subject:      defaultBirthdaySubject,
				Body:         fmt.Sprintf("Happy Birthday %s!", contact.Name),
			}
			if d, ok := draftIdx[draftKey{contact.Email, cat}]; ok {
				msg.Subject = d.Subject
				msg.Body = d.Body
				msg.HasDraft = true
			}
			out = append(out, msg)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysAway < out[j].DaysAway })
	return out
}

// calendarDaysBetween counts civil days from a to b, ignoring clock changes.
func calendarDaysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// nextOccurrence is the birthday in today's year, or next year's when that
// date has already passed. Feb 29 rolls to Mar 1 in common years.
func nextOccurrence(dob, today time.Time, loc *time.Location) time.Time {
	next := time.Date(today.Year(), dob.Month(), dob.Day(), 0, 0, 0, 0, loc)
	if next.Before(today) {
		next = time.Date(today.Year()+1, dob.Month(), dob.Day(), 0, 0, 0, 0, loc)
	}
	return next
}
