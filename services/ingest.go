package services

import (
	"fmt"
	"regexp"
	"strings"

	"club-mailer/apperrors"
	"club-mailer/database"
)

var (
	namePattern = regexp.MustCompile(`(?i)name`)
	mailPattern = regexp.MustCompile(`(?i)mail`)
	dobPattern  = regexp.MustCompile(`(?i)dob|date`)
)

const unknownContactName = "Unknown"

// Batch is a parsed bulk recipient list.
type Batch struct {
	Recipients []database.Recipient `json:"recipients"`
	Columns    []string             `json:"columns"`
}

// DetectColumn returns the first header matching pattern.
func DetectColumn(headers []string, pattern *regexp.Regexp) (string, bool) {
	for _, h := range headers {
		if pattern.MatchString(h) {
			return h, true
		}
	}
	return "", false
}

// IngestRecipients turns spreadsheet rows into a bulk batch. Headers come
// from the first row; a name-like and a mail-like column are required.
func IngestRecipients(rows []Row) (*Batch, error) {
	if len(rows) == 0 {
		return nil, apperrors.NewImportFormatError("spreadsheet has no data rows")
	}
	headers := rows[0].Keys

	nameCol, hasName := DetectColumn(headers, namePattern)
	mailCol, hasMail := DetectColumn(headers, mailPattern)
	if !hasName || !hasMail {
		return nil, apperrors.NewImportFormatError(
			fmt.Sprintf("need a Name and an Email column, found %s", strings.Join(headers, ", ")))
	}

	batch := &Batch{
		Recipients: make([]database.Recipient, 0, len(rows)),
		Columns:    append([]string(nil), headers...),
	}
	for _, row := range rows {
		rcpt := database.Recipient{
			Keys:            append([]string(nil), row.Keys...),
			Values:          make(map[string]string, len(row.Values)),
			NormalizedName:  strings.TrimSpace(row.Get(nameCol)),
			NormalizedEmail: strings.TrimSpace(row.Get(mailCol)),
		}
		for k, v := range row.Values {
			rcpt.Values[k] = v
		}
		batch.Recipients = append(batch.Recipients, rcpt)
	}
	return batch, nil
}

// MergeResult reports a smart merge outcome.
type MergeResult struct {
	Contacts []database.Contact `json:"contacts"`
	Added    int                `json:"added"`
	Updated  int                `json:"updated"`
}

// MergeContacts folds rows into existing by case-insensitive email. Each row
// detects its own columns; rows without an email or date column are skipped.
// Matches overwrite in place, the rest are appended in sheet order.
func MergeContacts(existing []database.Contact, rows []Row) MergeResult {
	merged := append([]database.Contact(nil), existing...)
	index := make(map[string]int, len(merged))
	for i, c := range merged {
		index[c.Key()] = i
	}

	var res MergeResult
	for _, row := range rows {
		mailCol, ok := DetectColumn(row.Keys, mailPattern)
		if !ok {
			continue
		}
		dobCol, ok := DetectColumn(row.Keys, dobPattern)
		if !ok {
			continue
		}

		contact := database.Contact{
			Name:  unknownContactName,
			Email: strings.TrimSpace(row.Get(mailCol)),
			DOB:   NormalizeDate(row.Get(dobCol)),
		}
		if nameCol, ok := DetectColumn(row.Keys, namePattern); ok {
			if name := strings.TrimSpace(row.Get(nameCol)); name != "" {
				contact.Name = name
			}
		}
		if contact.Email == "" {
			continue
		}

		if i, found := index[contact.Key()]; found {
			merged[i] = contact
			res.Updated++
			continue
		}
		index[contact.Key()] = len(merged)
		merged = append(merged, contact)
		res.Added++
	}
	res.Contacts = merged
	return res
}
