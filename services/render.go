package services

import (
	"strings"

	"club-mailer/database"
)

// Template is a subject/body pair with {placeholder} tokens.
type Template struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

const eventDateToken = "{EventDate}"

// Render substitutes {EventDate} and every record key in one left-to-right
// pass. Substituted text is never rescanned and unknown tokens stay as-is.
// eventDate is formatted YYYY-MM-DD; unparseable or empty yields "".
func Render(tmpl Template, rcpt database.Recipient, eventDate string) Template {
	r := newPlaceholderReplacer(rcpt, eventDate)
	return Template{
		Subject: r.Replace(tmpl.Subject),
		Body:    r.Replace(tmpl.Body),
	}
}

// newPlaceholderReplacer lists {EventDate} first so it takes precedence over
// a column of the same name.
func newPlaceholderReplacer(rcpt database.Recipient, eventDate string) *strings.Replacer {
	formatted := ""
	if t, ok := ParseCalendarDate(eventDate); ok {
		formatted = t.Format(DateLayout)
	}

	pairs := make([]string, 0, 2*(len(rcpt.Keys)+3))
	pairs = append(pairs, eventDateToken, formatted)
	for _, k := range rcpt.Keys {
		if k == "" {
			continue
		}
		pairs = append(pairs, "{"+k+"}", rcpt.Values[k])
	}
	pairs = append(pairs,
		"{normalizedName}", rcpt.NormalizedName,
		"{normalizedEmail}", rcpt.NormalizedEmail,
	)
	return strings.NewReplacer(pairs...)
}
