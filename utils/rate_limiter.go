package utils

import (
	"errors"
	"fmt"
	"time"

	"club-mailer/database"
)

const dayLayout = "2006-01-02"

// ErrDailyLimitExceeded is returned when a batch would push today's sends
// over the configured limit.
var ErrDailyLimitExceeded = errors.New("daily mail limit exceeded")

// sentDay is the calendar day, in loc, on which the entry was actually sent.
// Birthday entries carry the occurrence date in Date, so CreatedAt is used
// whenever it is known.
func sentDay(e database.SentLogEntry, loc *time.Location) string {
	if e.CreatedAt.IsZero() {
		return e.Date
	}
	return e.CreatedAt.In(loc).Format(dayLayout)
}

// GetDailyMailCount counts the successful sends recorded on today's date in
// today's location.
func GetDailyMailCount(logs []database.SentLogEntry, today time.Time) int {
	day := today.Format(dayLayout)
	count := 0
	for _, e := range logs {
		if e.Status == database.LogStatusSuccess && sentDay(e, today.Location()) == day {
			count++
		}
	}
	return count
}

// GetEmailTypeDistribution splits today's sends by log type.
func GetEmailTypeDistribution(logs []database.SentLogEntry, today time.Time) map[string]int {
	day := today.Format(dayLayout)
	// Both keys are always present for consistent JSON
	counts := map[string]int{
		string(database.LogTypeBulk):     0,
		string(database.LogTypeBirthday): 0,
	}
	for _, e := range logs {
		if sentDay(e, today.Location()) == day {
			counts[string(e.Type)]++
		}
	}
	return counts
}

// GetDailySendsOverPeriod returns the send count for each of the last days
// days, keyed by YYYY-MM-DD. Days without sends are present with 0.
func GetDailySendsOverPeriod(logs []database.SentLogEntry, now time.Time, days int) map[string]int {
	dailySends := make(map[string]int, days)
	for i := 0; i < days; i++ {
		dailySends[now.AddDate(0, 0, -i).Format(dayLayout)] = 0
	}
	for _, e := range logs {
		day := sentDay(e, now.Location())
		if _, ok := dailySends[day]; ok {
			dailySends[day]++
		}
	}
	return dailySends
}

// CheckDailyLimit refuses a batch of additional sends when current plus
// additional would exceed limit.
func CheckDailyLimit(current, additional, limit int) error {
	if current+additional > limit {
		return fmt.Errorf("%w: %d sent today, %d requested, limit %d", ErrDailyLimitExceeded, current, additional, limit)
	}
	return nil
}
