package services

import (
	"regexp"
	"testing"

	"club-mailer/apperrors"
	"club-mailer/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(pairs ...string) Row {
	r := Row{Values: map[string]string{}}
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Keys = append(r.Keys, pairs[i])
		r.Values[pairs[i]] = pairs[i+1]
	}
	return r
}

// ==========================
// Header Detection
// ==========================

func TestDetectColumn(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		pattern *regexp.Regexp
		want    string
		found   bool
	}{
		{name: "case insensitive", headers: []string{"ID", "FULL NAME"}, pattern: namePattern, want: "FULL NAME", found: true},
		{name: "first match wins", headers: []string{"First Name", "Last Name"}, pattern: namePattern, want: "First Name", found: true},
		{name: "substring", headers: []string{"Contact E-Mail Address"}, pattern: mailPattern, want: "Contact E-Mail Address", found: true},
		{name: "dob alternative", headers: []string{"Email", "Birth Date"}, pattern: dobPattern, want: "Birth Date", found: true},
		{name: "none", headers: []string{"Phone"}, pattern: mailPattern, found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectColumn(tt.headers, tt.pattern)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ==========================
// Bulk Ingestion
// ==========================

func TestIngestRecipients(t *testing.T) {
	rows := []Row{
		row("Name", "Ana", "Email", "ana@x.org", "Club", "North"),
		row("Name", "Ben", "Email", " ben@x.org "),
	}

	batch, err := IngestRecipients(rows)
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Email", "Club"}, batch.Columns)
	require.Len(t, batch.Recipients, 2)
	assert.Equal(t, "Ana", batch.Recipients[0].NormalizedName)
	assert.Equal(t, "ana@x.org", batch.Recipients[0].NormalizedEmail)
	assert.Equal(t, "North", batch.Recipients[0].Values["Club"])
	assert.Equal(t, "ben@x.org", batch.Recipients[1].NormalizedEmail)
	assert.Equal(t, " ben@x.org ", batch.Recipients[1].Values["Email"], "original cells are kept verbatim")
}

func TestIngestRecipients_MissingColumns(t *testing.T) {
	tests := []struct {
		name string
		rows []Row
	}{
		{name: "no rows", rows: nil},
		{name: "no mail column", rows: []Row{row("Name", "Ana", "Phone", "1")}},
		{name: "no name column", rows: []Row{row("Email", "a@x.org")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := IngestRecipients(tt.rows)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeImportFormatInvalid))
		})
	}
}

// ==========================
// Smart Merge
// ==========================

func TestMergeContacts(t *testing.T) {
	existing := []database.Contact{
		{Name: "Ana", Email: "Ana@X.org", DOB: "1990-01-01"},
		{Name: "Ben", Email: "ben@x.org", DOB: "1985-05-05"},
	}
	rows := []Row{
		row("Name", "Ana Lima", "Email", "ana@x.org", "DOB", "44927"),
		row("Email", "cy@x.org", "Date of Birth", "1999-09-09"),
		row("Name", "No Date", "Email", "nodate@x.org"),
		row("Name", "No Mail", "DOB", "1999-09-09"),
	}

	res := MergeContacts(existing, rows)

	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Added)
	require.Len(t, res.Contacts, 3)
	assert.Equal(t, database.Contact{Name: "Ana Lima", Email: "ana@x.org", DOB: "2023-01-01"}, res.Contacts[0])
	assert.Equal(t, "Ben", res.Contacts[1].Name)
	assert.Equal(t, database.Contact{Name: "Unknown", Email: "cy@x.org", DOB: "1999-09-09"}, res.Contacts[2])

	assert.Equal(t, "Ana", existing[0].Name, "input slice is not modified")
}

func TestMergeContacts_DuplicateInFileCountsAsUpdate(t *testing.T) {
	rows := []Row{
		row("Email", "a@x.org", "DOB", "1990-01-01"),
		row("Email", "A@x.org", "DOB", "1990-01-02"),
	}

	res := MergeContacts(nil, rows)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 1, res.Updated)
	require.Len(t, res.Contacts, 1)
	assert.Equal(t, "1990-01-02", res.Contacts[0].DOB)
}
