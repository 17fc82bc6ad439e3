package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"club-mailer/apperrors"
	"club-mailer/database"
	"club-mailer/logger"
)

const (
	testEmailSubject = "Test Email"
	testEmailBody    = "<p>This is a test email from your club mailer. Your sender settings work.</p>"
)

// Mailer is the admin console's entry point for contacts, birthday wishes,
// bulk sends, history and sender settings.
type Mailer struct {
	contacts   database.ContactStore
	sentLog    database.SentLogStore
	drafts     database.DraftStore
	config     database.ConfigStore
	dispatcher *Dispatcher
	calc       Calculator
	log        logger.Logger
	now        Clock
}

// MailerDeps wires a Mailer.
type MailerDeps struct {
	Contacts   database.ContactStore
	SentLog    database.SentLogStore
	Drafts     database.DraftStore
	Config     database.ConfigStore
	Dispatcher *Dispatcher
	Calculator Calculator
	Logger     logger.Logger
	Clock      Clock
}

func NewMailer(deps MailerDeps) *Mailer {
	return &Mailer{
		contacts:   deps.Contacts,
		sentLog:    deps.SentLog,
		drafts:     deps.Drafts,
		config:     deps.Config,
		dispatcher: deps.Dispatcher,
		calc:       deps.Calculator,
		log:        deps.Logger,
		now:        deps.Clock,
	}
}

// ==========================
// Sender settings
// ==========================

// GetConfig returns the stored settings, or an empty value when unset.
func (m *Mailer) GetConfig(ctx context.Context) (*database.ClubConfig, error) {
	cfg, err := m.config.GetClubConfig(ctx)
	if errors.Is(err, database.ErrNotFound) {
		return &database.ClubConfig{}, nil
	}
	if err != nil {
		return nil, apperrors.NewStorageError("load club config", err)
	}
	return cfg, nil
}

// SaveConfig stores the settings. Partial settings are allowed; sends fail
// until all three fields are present.
func (m *Mailer) SaveConfig(ctx context.Context, cfg database.ClubConfig) (*database.ClubConfig, error) {
	cfg.SenderName = strings.TrimSpace(cfg.SenderName)
	cfg.SenderEmail = strings.TrimSpace(cfg.SenderEmail)
	cfg.TransportEndpoint = strings.TrimSpace(cfg.TransportEndpoint)
	if cfg.SenderEmail != "" {
		if _, err := mail.ParseAddress(cfg.SenderEmail); err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("sender email %q is invalid", cfg.SenderEmail))
		}
	}
	if err := m.config.SaveClubConfig(ctx, &cfg); err != nil {
		return nil, apperrors.NewStorageError("save club config", err)
	}
	return &cfg, nil
}

// SeedConfig stores seed only when nothing is stored yet and seed has any value.
func (m *Mailer) SeedConfig(ctx context.Context, seed database.ClubConfig) error {
	if len(seed.Missing()) == 3 {
		return nil
	}
	_, err := m.config.GetClubConfig(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return apperrors.NewStorageError("load club config", err)
	}
	_, err = m.SaveConfig(ctx, seed)
	if err == nil {
		m.log.Info("seeded sender settings from environment", map[string]interface{}{"senderEmail": seed.SenderEmail})
	}
	return err
}

// SendTestEmail mails the sender address directly. Nothing is logged.
func (m *Mailer) SendTestEmail(ctx context.Context) error {
	cfg, err := m.dispatcher.SenderConfig(ctx)
	if err != nil {
		return err
	}
	transport, err := m.dispatcher.transports.New(cfg)
	if err != nil {
		return err
	}
	sendCtx, cancel := context.WithTimeout(ctx, m.dispatcher.timeout)
	defer cancel()
	if err := transport.Send(sendCtx, Message{
		FromName:  cfg.SenderName,
		FromEmail: cfg.SenderEmail,
		To:        cfg.SenderEmail,
		Subject:   testEmailSubject,
		Body:      testEmailBody,
	}); err != nil {
		return apperrors.NewTransportError(cfg.SenderEmail, err)
	}
	return nil
}

// ==========================
// Bulk
// ==========================

// SendBulk dispatches the workspace immediately.
func (m *Mailer) SendBulk(ctx context.Context, ws *Workspace) (*Result, error) {
	state := ws.Snapshot()
	req := ScheduleRequest{Template: state.Template(), Recipients: state.Recipients}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return m.dispatcher.Dispatch(ctx, Job{
		Kind:       database.LogTypeBulk,
		Template:   req.Template,
		Recipients: state.Recipients,
		EventDate:  state.EventDate,
	})
}

// ==========================
// History
// ==========================

func (m *Mailer) ListLogs(ctx context.Context) ([]database.SentLogEntry, error) {
	logs, err := m.sentLog.ListSentLogs(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError("list sent logs", err)
	}
	if logs == nil {
		logs = []database.SentLogEntry{}
	}
	return logs, nil
}

func (m *Mailer) DeleteLog(ctx context.Context, id int64) error {
	err := m.sentLog.DeleteSentLog(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return apperrors.NewNotFoundError("Sent log entry", fmt.Sprint(id))
	}
	if err != nil {
		return apperrors.NewStorageError("delete sent log", err)
	}
	return nil
}

func (m *Mailer) ClearLogs(ctx context.Context) error {
	if err := m.sentLog.ClearSentLogs(ctx); err != nil {
		return apperrors.NewStorageError("clear sent logs", err)
	}
	m.log.Warn("sent history cleared", nil)
	return nil
}
