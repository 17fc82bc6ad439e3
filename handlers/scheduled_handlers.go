package handlers

import (
	"net/http"

	"club-mailer/database"
	"club-mailer/services"

	"github.com/gorilla/mux"
)

type sendResult struct {
	Item   *database.ScheduledItem `json:"item"`
	Result *services.Result        `json:"result"`
}

// ScheduleHandler stores the workspace as a pending item, or saves it back
// over the item it was resumed from.
func (a *API) ScheduleHandler(w http.ResponseWriter, r *http.Request) {
	item, err := a.outbox.ScheduleFromWorkspace(r.Context(), a.workspace)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.successResponse(w, "Email scheduled", item)
}

func (a *API) ListScheduledHandler(w http.ResponseWriter, r *http.Request) {
	items, err := a.outbox.List(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.successResponse(w, "Scheduled emails retrieved", items)
}

func (a *API) UpdateScheduledHandler(w http.ResponseWriter, r *http.Request) {
	var req services.ScheduleRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	item, err := a.outbox.Update(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.successResponse(w, "Scheduled email updated", item)
}

func (a *API) SendScheduledHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	item, err := a.outbox.Get(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.checkDailyLimit(r.Context(), len(item.Recipients)); err != nil {
		a.writeError(w, r, err)
		return
	}

	sent, res, err := a.outbox.Send(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.log.Info("scheduled email sent", map[string]interface{}{"id": id, "sent": res.Sent, "failed": res.Failed})
	a.successResponse(w, "Scheduled email sent", sendResult{Item: sent, Result: res})
}

// EditScheduledHandler loads a pending item into the workspace.
func (a *API) EditScheduledHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := a.outbox.ResumeForEdit(r.Context(), mux.Vars(r)["id"], a.workspace); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.successResponse(w, "Scheduled email loaded for editing", a.workspace.Snapshot())
}

func (a *API) DeleteScheduledHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.outbox.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.successResponse(w, "Scheduled email deleted", nil)
}
