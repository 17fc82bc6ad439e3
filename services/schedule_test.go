package services

import (
	"testing"
	"time"

	"club-mailer/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 30, 0, 0, time.UTC)
}

func TestCalculator_WindowAndDaysAway(t *testing.T) {
	calc := NewCalculator(30)
	contacts := map[database.Category][]database.Contact{
		database.CategoryPresidents: {
			{Name: "Ana", Email: "ana@x.org", DOB: "1995-03-10"},
			{Name: "Today", Email: "today@x.org", DOB: "1980-03-01"},
			{Name: "Edge", Email: "edge@x.org", DOB: "1970-03-31"},
			{Name: "TooFar", Email: "far@x.org", DOB: "1970-04-01"},
			{Name: "Passed", Email: "passed@x.org", DOB: "1970-02-28"},
			{Name: "Bad", Email: "bad@x.org", DOB: "n/a"},
		},
	}

	got := calc.Upcoming(contacts, nil, nil, at(2024, 3, 1, 15))
	require.Len(t, got, 3)

	assert.Equal(t, "Today", got[0].Name)
	assert.Equal(t, 0, got[0].DaysAway)

	assert.Equal(t, "Ana", got[1].Name)
	assert.Equal(t, "2024-03-10", got[1].NextBirthday)
	assert.Equal(t, 9, got[1].DaysAway)

	assert.Equal(t, "Edge", got[2].Name)
	assert.Equal(t, 30, got[2].DaysAway)
}

func TestCalculator_RollsIntoNextYear(t *testing.T) {
	calc := NewCalculator(400)
	contacts := map[database.Category][]database.Contact{
		database.CategoryCouncil: {{Name: "Ana", Email: "ana@x.org", DOB: "1995-03-10"}},
	}

	got := calc.Upcoming(contacts, nil, nil, at(2024, 3, 15, 0))
	require.Len(t, got, 1)
	assert.Equal(t, "2025-03-10", got[0].NextBirthday)
	assert.Equal(t, 360, got[0].DaysAway)
}

func TestCalculator_ExcelSerialDOB(t *testing.T) {
	contacts := map[database.Category][]database.Contact{
		database.CategoryCouncil: {{Name: "Serial", Email: "s@x.org", DOB: "44927"}},
	}
	got := NewCalculator(30).Upcoming(contacts, nil, nil, at(2024, 12, 20, 8))
	require.Len(t, got, 1)
	assert.Equal(t, "2025-01-01", got[0].NextBirthday)
	assert.Equal(t, 12, got[0].DaysAway)
}

func TestCalculator_SentAndDrafts(t *testing.T) {
	contacts := map[database.Category][]database.Contact{
		database.CategoryPresidents:  {{Name: "Ana", Email: "ana@x.org", DOB: "1995-03-10"}},
		database.CategorySecretaries: {{Name: "Ana", Email: "ana@x.org", DOB: "1995-03-10"}},
	}
	sent := NewLogIndex([]database.SentLogEntry{
		{Email: "ANA@x.org", Date: "2024-03-10", Type: database.LogTypeBirthday},
		{Email: "ana@x.org", Date: "2023-03-10", Type: database.LogTypeBirthday},
	})
	drafts := []database.Draft{
		{Email: "ana@x.org", Category: database.CategorySecretaries, Subject: "Custom", Body: "Dear {name}"},
	}

	got := NewCalculator(30).Upcoming(contacts, sent, drafts, at(2024, 3, 1, 0))
	require.Len(t, got, 2)

	assert.Equal(t, database.CategoryPresidents, got[0].Category, "stable order keeps category order")
	assert.True(t, got[0].IsSent)
	assert.False(t, got[0].HasDraft)
	assert.Equal(t, "Happy Birthday!", got[0].Subject)
	assert.Equal(t, "Happy Birthday Ana!", got[0].Body)

	assert.Equal(t, database.CategorySecretaries, got[1].Category)
	assert.True(t, got[1].HasDraft)
	assert.Equal(t, "Custom", got[1].Subject)
	assert.Equal(t, "Dear {name}", got[1].Body)
}

func TestCalculator_SentForOtherYearDoesNotCount(t *testing.T) {
	contacts := map[database.Category][]database.Contact{
		database.CategoryCouncil: {{Name: "Ana", Email: "ana@x.org", DOB: "1995-03-10"}},
	}
	sent := NewLogIndex([]database.SentLogEntry{
		{Email: "ana@x.org", Date: "2023-03-10", Type: database.LogTypeBirthday},
		{Email: "ana@x.org", Date: "2024-03-10", Type: database.LogTypeBulk},
	})

	got := NewCalculator(30).Upcoming(contacts, sent, nil, at(2024, 3, 1, 0))
	require.Len(t, got, 1)
	assert.False(t, got[0].IsSent)
}

func TestCalculator_LeapDay(t *testing.T) {
	contacts := map[database.Category][]database.Contact{
		database.CategoryCouncil: {{Name: "Leap", Email: "l@x.org", DOB: "2000-02-29"}},
	}
	got := NewCalculator(30).Upcoming(contacts, nil, nil, at(2023, 2, 20, 0))
	require.Len(t, got, 1)
	assert.Equal(t, "2023-03-01", got[0].NextBirthday)
}

func TestCalculator_SpringForwardCountsCalendarDays(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata not available")
	}
	contacts := map[database.Category][]database.Contact{
		database.CategoryCouncil: {{Name: "Spring", Email: "s@x.org", DOB: "1990-04-02"}},
	}
	now := time.Date(2024, 3, 25, 10, 0, 0, 0, loc)

	got := NewCalculator(30).Upcoming(contacts, nil, nil, now)
	require.Len(t, got, 1)
	assert.Equal(t, 8, got[0].DaysAway)
}

func TestCalculator_FallBackCountsCalendarDays(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata not available")
	}
	contacts := map[database.Category][]database.Contact{
		database.CategoryCouncil: {
			{Name: "Autumn", Email: "a@x.org", DOB: "1990-10-30"},
			{Name: "Edge", Email: "e@x.org", DOB: "1988-11-19"},
		},
	}
	// clocks go back on 2024-10-27, making that day 25 hours long
	now := time.Date(2024, 10, 20, 10, 0, 0, 0, loc)

	got := NewCalculator(30).Upcoming(contacts, nil, nil, now)
	require.Len(t, got, 2, "a birthday exactly 30 calendar days away is inside the window")
	assert.Equal(t, 10, got[0].DaysAway)
	assert.Equal(t, "Edge", got[1].Name)
	assert.Equal(t, 30, got[1].DaysAway)
}

func TestCalendarDaysBetween(t *testing.T) {
	loc := time.FixedZone("X", -5*3600)
	a := time.Date(2024, 2, 28, 0, 0, 0, 0, loc)
	assert.Equal(t, 2, calendarDaysBetween(a, time.Date(2024, 3, 1, 0, 0, 0, 0, loc)))
	assert.Equal(t, 0, calendarDaysBetween(a, a))
	assert.Equal(t, 366, calendarDaysBetween(time.Date(2024, 1, 1, 0, 0, 0, 0, loc), time.Date(2025, 1, 1, 0, 0, 0, 0, loc)))
}

func TestNewCalculator_Default(t *testing.T) {
	assert.Equal(t, DefaultLookaheadDays, NewCalculator(0).LookaheadDays)
}
