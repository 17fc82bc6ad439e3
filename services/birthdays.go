package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"club-mailer/apperrors"
	"club-mailer/database"
)

// Upcoming derives the birthday wishes due within the lookahead window.
func (m *Mailer) Upcoming(ctx context.Context) ([]UpcomingMessage, error) {
	contacts, err := m.ListContacts(ctx)
	if err != nil {
		return nil, err
	}
	logs, err := m.sentLog.ListSentLogs(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError("list sent logs", err)
	}
	drafts, err := m.drafts.ListDrafts(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError("list drafts", err)
	}
	return m.calc.Upcoming(contacts, NewLogIndex(logs), drafts, m.now()), nil
}

// SaveDraft upserts the customized message for one contact.
func (m *Mailer) SaveDraft(ctx context.Context, d database.Draft) (*database.Draft, error) {
	d.Email = strings.TrimSpace(d.Email)
	var missing []string
	if d.Email == "" {
		missing = append(missing, "email")
	}
	if _, ok := database.ParseCategory(string(d.Category)); !ok {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(d.Subject) == "" {
		missing = append(missing, "subject")
	}
	if strings.TrimSpace(d.Body) == "" {
		missing = append(missing, "body")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError(strings.Join(missing, ", ") + " required")
	}
	d.Category, _ = database.ParseCategory(string(d.Category))
	d.UpdatedAt = m.now()
	if err := m.drafts.SaveDraft(ctx, &d); err != nil {
		return nil, apperrors.NewStorageError("save draft", err)
	}
	return &d, nil
}

// SendBirthdayWish sends the effective message for one upcoming contact.
// The sent log entry is dated with the birthday occurrence so the wish is
// marked sent for that year. The contact's draft is removed afterwards.
func (m *Mailer) SendBirthdayWish(ctx context.Context, cat database.Category, email string) (*UpcomingMessage, error) {
	upcoming, err := m.Upcoming(ctx)
	if err != nil {
		return nil, err
	}

	var msg *UpcomingMessage
	for i := range upcoming {
		if upcoming[i].Category == cat && strings.EqualFold(upcoming[i].Email, strings.TrimSpace(email)) {
			msg = &upcoming[i]
			break
		}
	}
	if msg == nil {
		return nil, apperrors.NewNotFoundError("Upcoming birthday", fmt.Sprintf("%s/%s", cat, email))
	}
	alreadySent := msg.IsSent
	if !alreadySent {
		// recheck against the store in case another request just sent it
		alreadySent, err = m.sentLog.WasSent(ctx, msg.Email, msg.NextBirthday, database.LogTypeBirthday)
		if err != nil {
			return nil, apperrors.NewStorageError("check sent log", err)
		}
	}
	if alreadySent {
		return nil, apperrors.NewInvalidStateError(fmt.Sprintf("birthday wish for %s on %s was already sent", msg.Email, msg.NextBirthday))
	}

	res, err := m.dispatcher.Dispatch(ctx, Job{
		Kind:       database.LogTypeBirthday,
		Template:   Template{Subject: msg.Subject, Body: msg.Body},
		Recipients: []database.Recipient{contactRecipient(msg.Contact())},
		LogDate:    msg.NextBirthday,
	})
	if err != nil {
		return nil, err
	}
	if res.Sent == 0 {
		reason := ""
		if len(res.Outcomes) > 0 {
			reason = res.Outcomes[0].Error
		}
		return nil, apperrors.NewTransportError(msg.Email, fmt.Errorf("%s", reason))
	}

	if err := m.drafts.DeleteDraft(context.WithoutCancel(ctx), msg.Email, cat); err != nil {
		m.log.Warn("birthday wish sent but draft not removed", map[string]interface{}{"email": msg.Email, "error": err.Error()})
	}
	msg.IsSent = true
	return msg, nil
}

// contactRecipient exposes a contact's fields as {name}, {email} and {dob}.
func contactRecipient(c database.Contact) database.Recipient {
	return database.Recipient{
		Keys:            []string{"name", "email", "dob"},
		Values:          map[string]string{"name": c.Name, "email": c.Email, "dob": c.DOB},
		NormalizedName:  c.Name,
		NormalizedEmail: c.Email,
	}
}

// Now is the current time in the club's zone.
func (m *Mailer) Now() time.Time {
	return m.now()
}
