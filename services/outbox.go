package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"club-mailer/apperrors"
	"club-mailer/database"
	"club-mailer/logger"

	"github.com/google/uuid"
)

// ScheduleRequest is the content of a scheduled bulk email.
type ScheduleRequest struct {
	Template
	Recipients []database.Recipient `json:"recipients"`
	Columns    []string             `json:"columns"`
	EventDate  string               `json:"eventDate,omitempty"`
	CreatedBy  string               `json:"createdBy,omitempty"`
}

// Validate rejects empty subjects, bodies and recipient lists.
func (r ScheduleRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Subject) == "" {
		missing = append(missing, "subject")
	}
	if strings.TrimSpace(r.Body) == "" {
		missing = append(missing, "body")
	}
	if len(r.Recipients) == 0 {
		missing = append(missing, "recipients")
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError(strings.Join(missing, ", ") + " required")
	}
	return nil
}

// Outbox manages deferred bulk emails. Items go from pending to completed
// exactly once.
type Outbox struct {
	store      database.ScheduleStore
	dispatcher *Dispatcher
	log        logger.Logger
	now        Clock

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewOutbox(store database.ScheduleStore, dispatcher *Dispatcher, log logger.Logger, now Clock) *Outbox {
	return &Outbox{
		store:      store,
		dispatcher: dispatcher,
		log:        log,
		now:        now,
		inFlight:   make(map[string]struct{}),
	}
}

func scheduleStoreErr(op, id string, err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return apperrors.NewNotFoundError("Scheduled email", id)
	}
	return apperrors.NewStorageError(op, err)
}

func (o *Outbox) List(ctx context.Context) ([]database.ScheduledItem, error) {
	items, err := o.store.ListScheduled(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError("list scheduled emails", err)
	}
	if items == nil {
		items = []database.ScheduledItem{}
	}
	return items, nil
}

// Get returns one item whatever its status.
func (o *Outbox) Get(ctx context.Context, id string) (*database.ScheduledItem, error) {
	item, err := o.store.GetScheduled(ctx, id)
	if err != nil {
		return nil, scheduleStoreErr("load scheduled email", id, err)
	}
	return item, nil
}

// Schedule stores a new pending item stamped with the current time.
func (o *Outbox) Schedule(ctx context.Context, req ScheduleRequest) (*database.ScheduledItem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	item := &database.ScheduledItem{
		ID:          uuid.New().String(),
		Subject:     req.Subject,
		Body:        req.Body,
		Recipients:  req.Recipients,
		Columns:     req.Columns,
		EventDate:   req.EventDate,
		ScheduledAt: o.now(),
		Status:      database.ScheduleStatusPending,
		CreatedBy:   req.CreatedBy,
	}
	if err := o.store.CreateScheduled(ctx, item); err != nil {
		return nil, apperrors.NewStorageError("create scheduled email", err)
	}
	o.log.Info("bulk email scheduled", map[string]interface{}{"id": item.ID, "recipients": len(item.Recipients)})
	return item, nil
}

// Update replaces the content of a pending item. Items being sent are
// refused.
func (o *Outbox) Update(ctx context.Context, id string, req ScheduleRequest) (*database.ScheduledItem, error) {
	if o.sending(id) {
		return nil, apperrors.NewInvalidStateError("scheduled email " + id + " is being sent")
	}
	item, err := o.pending(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	item.Subject = req.Subject
	item.Body = req.Body
	item.Recipients = req.Recipients
	item.Columns = req.Columns
	item.EventDate = req.EventDate
	if err := o.store.UpdateScheduled(ctx, item); err != nil {
		return nil, scheduleStoreErr("update scheduled email", id, err)
	}
	return item, nil
}

// ScheduleFromWorkspace creates an item from the workspace, or updates the
// item it was resumed from, then clears the workspace.
func (o *Outbox) ScheduleFromWorkspace(ctx context.Context, ws *Workspace) (*database.ScheduledItem, error) {
	state := ws.Snapshot()
	req := ScheduleRequest{
		Template:   state.Template(),
		Recipients: state.Recipients,
		Columns:    state.Columns,
		EventDate:  state.EventDate,
	}

	var item *database.ScheduledItem
	var err error
	if state.EditingID != "" {
		item, err = o.Update(ctx, state.EditingID, req)
	} else {
		item, err = o.Schedule(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	ws.Reset()
	return item, nil
}

// ResumeForEdit loads a pending item into ws.
func (o *Outbox) ResumeForEdit(ctx context.Context, id string, ws *Workspace) (*database.ScheduledItem, error) {
	item, err := o.pending(ctx, id)
	if err != nil {
		return nil, err
	}
	ws.Load(item)
	return item, nil
}

// Send dispatches a pending item and marks it completed with its stats.
func (o *Outbox) Send(ctx context.Context, id string) (*database.ScheduledItem, *Result, error) {
	if !o.claim(id) {
		return nil, nil, apperrors.NewInvalidStateError("scheduled email " + id + " is already being sent")
	}
	defer o.release(id)

	item, err := o.pending(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	res, err := o.dispatcher.Dispatch(ctx, Job{
		Kind:       database.LogTypeBulk,
		Template:   Template{Subject: item.Subject, Body: item.Body},
		Recipients: item.Recipients,
		EventDate:  item.EventDate,
	})
	if err != nil {
		return nil, nil, err
	}

	sentAt := o.now()
	stats := res.Stats()
	item.Status = database.ScheduleStatusCompleted
	item.SentAt = &sentAt
	item.Stats = &stats
	if err := o.store.UpdateScheduled(context.WithoutCancel(ctx), item); err != nil {
		o.log.Error("scheduled email sent but not marked completed", map[string]interface{}{"id": id, "error": err.Error()})
		return nil, res, scheduleStoreErr("complete scheduled email", id, err)
	}
	return item, res, nil
}

// Delete removes an item whatever its status.
func (o *Outbox) Delete(ctx context.Context, id string) error {
	if err := o.store.DeleteScheduled(ctx, id); err != nil {
		return scheduleStoreErr("delete scheduled email", id, err)
	}
	return nil
}

func (o *Outbox) pending(ctx context.Context, id string) (*database.ScheduledItem, error) {
	item, err := o.store.GetScheduled(ctx, id)
	if err != nil {
		return nil, scheduleStoreErr("load scheduled email", id, err)
	}
	if item.Status == database.ScheduleStatusCompleted {
		return nil, apperrors.NewInvalidStateError("scheduled email " + id + " is already completed")
	}
	return item, nil
}

func (o *Outbox) claim(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.inFlight[id]; busy {
		return false
	}
	o.inFlight[id] = struct{}{}
	return true
}

func (o *Outbox) sending(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, busy := o.inFlight[id]
	return busy
}

func (o *Outbox) release(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inFlight, id)
}
