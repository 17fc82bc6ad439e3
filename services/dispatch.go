package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"club-mailer/apperrors"
	"club-mailer/database"
	"club-mailer/logger"
	"club-mailer/metrics"
)

// DefaultSendTimeout bounds a single transport call.
const DefaultSendTimeout = 30 * time.Second

// Clock returns the current time in the club's time zone.
type Clock func() time.Time

// LocalClock reads the wall clock in loc.
func LocalClock(loc *time.Location) Clock {
	return func() time.Time { return time.Now().In(loc) }
}

// Job describes one dispatch batch.
type Job struct {
	Kind       database.LogType
	Template   Template
	Recipients []database.Recipient
	EventDate  string
	// LogDate overrides the sent log date, which defaults to today.
	LogDate string
}

// Outcome is the per-recipient result of a dispatch.
type Outcome struct {
	Email string `json:"email"`
	Sent  bool   `json:"sent"`
	Error string `json:"error,omitempty"`
	LogID int64  `json:"logId,omitempty"`
}

// Result tallies a dispatch.
type Result struct {
	Sent     int       `json:"sent"`
	Failed   int       `json:"failed"`
	Outcomes []Outcome `json:"outcomes"`
}

// Stats converts the tally for storage.
func (r *Result) Stats() database.SendStats {
	return database.SendStats{Sent: r.Sent, Failed: r.Failed}
}

// SentLogAppender is the part of the sent log the dispatcher writes to.
type SentLogAppender interface {
	AppendSentLog(ctx context.Context, entry *database.SentLogEntry) error
}

// Dispatcher sends batches sequentially and records every success.
type Dispatcher struct {
	config     database.ConfigStore
	sentLog    SentLogAppender
	transports TransportFactory
	log        logger.Logger
	timeout    time.Duration
	now        Clock
}

func NewDispatcher(
	config database.ConfigStore,
	sentLog SentLogAppender,
	transports TransportFactory,
	log logger.Logger,
	timeout time.Duration,
	now Clock,
) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	if now == nil {
		now = time.Now
	}
	return &Dispatcher{
		config:     config,
		sentLog:    sentLog,
		transports: transports,
		log:        log,
		timeout:    timeout,
		now:        now,
	}
}

// SenderConfig loads the club settings and fails when any field is unset.
func (d *Dispatcher) SenderConfig(ctx context.Context) (*database.ClubConfig, error) {
	cfg, err := d.config.GetClubConfig(ctx)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, apperrors.NewStorageError("load club config", err)
	}
	if missing := cfg.Missing(); len(missing) > 0 {
		return nil, apperrors.NewConfigurationError("missing " + strings.Join(missing, ", "))
	}
	return cfg, nil
}

// Dispatch renders and sends job to each recipient in order. A failed
// recipient is counted and skipped. Once started the batch runs to the end
// even if ctx is cancelled; each send has its own timeout.
func (d *Dispatcher) Dispatch(ctx context.Context, job Job) (*Result, error) {
	cfg, err := d.SenderConfig(ctx)
	if err != nil {
		return nil, err
	}
	transport, err := d.transports.New(cfg)
	if err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	kind := string(job.Kind)
	log := d.log.With(map[string]interface{}{"type": kind, "transport": transport.Name()})
	metrics.BatchesDispatched.WithLabelValues(kind).Inc()

	res := &Result{Outcomes: make([]Outcome, 0, len(job.Recipients))}
	for _, rcpt := range job.Recipients {
		out := d.sendOne(ctx, transport, cfg, job, rcpt, log)
		if out.Sent {
			res.Sent++
			metrics.EmailsSent.WithLabelValues(kind, transport.Name()).Inc()
		} else {
			res.Failed++
			metrics.EmailsFailed.WithLabelValues(kind, transport.Name()).Inc()
		}
		res.Outcomes = append(res.Outcomes, out)
	}

	log.Info("dispatch finished", map[string]interface{}{
		"recipients": len(job.Recipients),
		"sent":       res.Sent,
		"failed":     res.Failed,
	})
	return res, nil
}

func (d *Dispatcher) sendOne(
	ctx context.Context,
	transport Transport,
	cfg *database.ClubConfig,
	job Job,
	rcpt database.Recipient,
	log logger.Logger,
) Outcome {
	to := strings.TrimSpace(rcpt.NormalizedEmail)
	out := Outcome{Email: to}
	if to == "" {
		out.Error = "recipient has no email address"
		log.Warn("skipping recipient without email", map[string]interface{}{"name": rcpt.NormalizedName})
		return out
	}

	rendered := Render(job.Template, rcpt, job.EventDate)

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	start := time.Now()
	err := transport.Send(sendCtx, Message{
		FromName:  cfg.SenderName,
		FromEmail: cfg.SenderEmail,
		To:        to,
		Subject:   rendered.Subject,
		Body:      rendered.Body,
	})
	cancel()
	metrics.SendDuration.WithLabelValues(transport.Name()).Observe(time.Since(start).Seconds())

	if err != nil {
		out.Error = err.Error()
		log.Warn("email delivery failed", map[string]interface{}{"email": to, "error": err.Error()})
		return out
	}

	now := d.now()
	entry := &database.SentLogEntry{
		Date:      now.Format(DateLayout),
		Timestamp: now.Format(displayTimestampLayout),
		Email:     to,
		Subject:   rendered.Subject,
		Type:      job.Kind,
		Status:    database.LogStatusSuccess,
		CreatedAt: now,
	}
	if job.LogDate != "" {
		entry.Date = job.LogDate
	}
	if err := d.sentLog.AppendSentLog(ctx, entry); err != nil {
		out.Error = "sent but not recorded: " + err.Error()
		log.Error("email sent but sent log append failed", map[string]interface{}{"email": to, "error": err.Error()})
		return out
	}

	out.Sent = true
	out.LogID = entry.ID
	return out
}
