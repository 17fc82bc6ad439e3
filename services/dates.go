package services

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for storage and placeholders.
const DateLayout = "2006-01-02"

// displayTimestampLayout renders sent log timestamps for the console.
const displayTimestampLayout = "1/2/2006, 3:04:05 PM"

// Serial numbers above this are treated as spreadsheet day counts.
const excelSerialThreshold = 10000

var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	DateLayout,
	"2006/01/02",
	"2006-1-2",
	"2006/1/2",
	"1/2/2006",
	"01/02/2006",
	"1-2-2006",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"02-Jan-06",
}

// ParseCalendarDate reads a spreadsheet or user supplied date. Numbers above
// 10000 are spreadsheet serials counted from 1899-12-30. The result is the
// civil date at midnight UTC.
func ParseCalendarDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f > excelSerialThreshold {
			return excelEpoch.AddDate(0, 0, int(math.Floor(f))), true
		}
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// NormalizeDate returns YYYY-MM-DD for parseable input and the trimmed raw
// text otherwise.
func NormalizeDate(raw string) string {
	if t, ok := ParseCalendarDate(raw); ok {
		return t.Format(DateLayout)
	}
	return strings.TrimSpace(raw)
}

// midnight truncates t to the start of its day in its own location.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
