package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"club-mailer/database"
	"club-mailer/logger"
	"club-mailer/services"
	"club-mailer/utils"

	"github.com/gorilla/mux"
)

const (
	defaultLogLimit   = 50
	defaultPeriodDays = 7
	maxUploadBytes    = 10 << 20
)

// API serves the admin console.
type API struct {
	mailer     *services.Mailer
	outbox     *services.Outbox
	workspace  *services.Workspace
	log        logger.Logger
	dailyLimit int
}

func NewAPI(mailer *services.Mailer, outbox *services.Outbox, ws *services.Workspace, log logger.Logger, dailyLimit int) *API {
	return &API{mailer: mailer, outbox: outbox, workspace: ws, log: log, dailyLimit: dailyLimit}
}

// checkDailyLimit refuses a batch of n sends that would exceed today's limit.
func (a *API) checkDailyLimit(ctx context.Context, n int) error {
	logs, err := a.mailer.ListLogs(ctx)
	if err != nil {
		return err
	}
	current := utils.GetDailyMailCount(logs, a.mailer.Now())
	return utils.CheckDailyLimit(current, n, a.dailyLimit)
}

// SendMailHandler sends the compose workspace to every recipient now.
func (a *API) SendMailHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.checkDailyLimit(r.Context(), len(a.workspace.Snapshot().Recipients)); err != nil {
		a.writeError(w, r, err)
		return
	}

	res, err := a.mailer.SendBulk(r.Context(), a.workspace)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.log.Info("bulk email sent", map[string]interface{}{"sent": res.Sent, "failed": res.Failed})
	a.successResponse(w, "Bulk email processed", res)
}

// GetLogsHandler lists the sent history newest first. Optional query
// parameters: date (YYYY-MM-DD) and limit.
func (a *API) GetLogsHandler(w http.ResponseWriter, r *http.Request) {
	queryDate := r.URL.Query().Get("date")
	if queryDate != "" {
		if _, err := time.Parse(services.DateLayout, queryDate); err != nil {
			a.errorResponse(w, "Invalid date format. Use YYYY-MM-DD.", http.StatusBadRequest)
			return
		}
	}

	logs, err := a.mailer.ListLogs(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	} else if queryDate != "" {
		limit = defaultLogLimit
	}

	filtered := make([]database.SentLogEntry, 0, len(logs))
	for _, e := range logs {
		if queryDate != "" && e.Date != queryDate {
			continue
		}
		filtered = append(filtered, e)
		if limit > 0 && len(filtered) == limit {
			break
		}
	}
	a.successResponse(w, "Email logs retrieved successfully", filtered)
}

func (a *API) DeleteLogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		a.errorResponse(w, "Invalid log id", http.StatusBadRequest)
		return
	}
	if err := a.mailer.DeleteLog(r.Context(), id); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.successResponse(w, "Log entry deleted", nil)
}

func (a *API) ClearLogsHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.mailer.ClearLogs(r.Context()); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.successResponse(w, "Sent history cleared", nil)
}

func (a *API) GetDailyLimitHandler(w http.ResponseWriter, r *http.Request) {
	logs, err := a.mailer.ListLogs(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	currentCount := utils.GetDailyMailCount(logs, a.mailer.Now())
	data := map[string]interface{}{
		"current_count": currentCount,
		"limit":         a.dailyLimit,
		"remaining":     a.dailyLimit - currentCount,
	}
	a.successResponse(w, "Daily mail limit status retrieved", data)
}

func (a *API) GetEmailStatsHandler(w http.ResponseWriter, r *http.Request) {
	logs, err := a.mailer.ListLogs(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.successResponse(w, "Email type distribution retrieved", utils.GetEmailTypeDistribution(logs, a.mailer.Now()))
}

func (a *API) GetDailySendsHandler(w http.ResponseWriter, r *http.Request) {
	days := defaultPeriodDays
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		if parsed, err := strconv.Atoi(daysStr); err == nil && parsed > 0 {
			days = parsed
		}
	}
	logs, err := a.mailer.ListLogs(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.successResponse(w, "Daily sends over period retrieved", utils.GetDailySendsOverPeriod(logs, a.mailer.Now(), days))
}
