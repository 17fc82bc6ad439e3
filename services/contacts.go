package services

import (
	"context"
	"fmt"
	"strings"

	"club-mailer/apperrors"
	"club-mailer/database"
)

func (m *Mailer) ListContacts(ctx context.Context) (map[database.Category][]database.Contact, error) {
	all, err := m.contacts.ListContacts(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError("list contacts", err)
	}
	return all, nil
}

func (m *Mailer) categoryContacts(ctx context.Context, cat database.Category) ([]database.Contact, error) {
	all, err := m.ListContacts(ctx)
	if err != nil {
		return nil, err
	}
	return all[cat], nil
}

func (m *Mailer) saveCategory(ctx context.Context, cat database.Category, list []database.Contact) error {
	if err := m.contacts.ReplaceContacts(ctx, cat, list); err != nil {
		return apperrors.NewStorageError("save contacts", err)
	}
	return nil
}

// ImportContacts smart-merges spreadsheet rows into a category.
func (m *Mailer) ImportContacts(ctx context.Context, cat database.Category, rows []Row) (*MergeResult, error) {
	if len(rows) == 0 {
		return nil, apperrors.NewImportFormatError("spreadsheet has no data rows")
	}
	existing, err := m.categoryContacts(ctx, cat)
	if err != nil {
		return nil, err
	}
	res := MergeContacts(existing, rows)
	if err := m.saveCategory(ctx, cat, res.Contacts); err != nil {
		return nil, err
	}
	m.log.Info("contacts imported", map[string]interface{}{
		"category": string(cat), "added": res.Added, "updated": res.Updated,
	})
	return &res, nil
}

func normalizeContact(c database.Contact) (database.Contact, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.DOB = NormalizeDate(c.DOB)
	if c.Name == "" || c.Email == "" {
		return c, apperrors.NewValidationError("name and email are required")
	}
	return c, nil
}

func indexOfContact(list []database.Contact, email string) int {
	key := strings.ToLower(strings.TrimSpace(email))
	for i, c := range list {
		if c.Key() == key {
			return i
		}
	}
	return -1
}

// AddContact appends a contact; emails are unique per category.
func (m *Mailer) AddContact(ctx context.Context, cat database.Category, c database.Contact) (*database.Contact, error) {
	c, err := normalizeContact(c)
	if err != nil {
		return nil, err
	}
	list, err := m.categoryContacts(ctx, cat)
	if err != nil {
		return nil, err
	}
	if indexOfContact(list, c.Email) >= 0 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("%s is already in %s", c.Email, cat))
	}
	if err := m.saveCategory(ctx, cat, append(list, c)); err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateContact replaces the contact currently stored under email.
func (m *Mailer) UpdateContact(ctx context.Context, cat database.Category, email string, c database.Contact) (*database.Contact, error) {
	c, err := normalizeContact(c)
	if err != nil {
		return nil, err
	}
	list, err := m.categoryContacts(ctx, cat)
	if err != nil {
		return nil, err
	}
	i := indexOfContact(list, email)
	if i < 0 {
		return nil, apperrors.NewNotFoundError("Contact", email)
	}
	if j := indexOfContact(list, c.Email); j >= 0 && j != i {
		return nil, apperrors.NewValidationError(fmt.Sprintf("%s is already in %s", c.Email, cat))
	}
	list[i] = c
	if err := m.saveCategory(ctx, cat, list); err != nil {
		return nil, err
	}
	return &c, nil
}

func (m *Mailer) DeleteContact(ctx context.Context, cat database.Category, email string) error {
	list, err := m.categoryContacts(ctx, cat)
	if err != nil {
		return err
	}
	i := indexOfContact(list, email)
	if i < 0 {
		return apperrors.NewNotFoundError("Contact", email)
	}
	return m.saveCategory(ctx, cat, append(list[:i], list[i+1:]...))
}
