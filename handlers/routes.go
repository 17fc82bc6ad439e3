package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts the API, the metrics endpoint and the static
// dashboard served from staticDir.
func RegisterRoutes(r *mux.Router, a *API, staticDir string) {
	api := r.PathPrefix("/api").Subrouter()

	// Compose workspace
	api.HandleFunc("/compose", a.GetComposeHandler).Methods("GET")
	api.HandleFunc("/compose", a.UpdateComposeHandler).Methods("PUT")
	api.HandleFunc("/compose", a.ResetComposeHandler).Methods("DELETE")
	api.HandleFunc("/compose/upload", a.UploadRecipientsHandler).Methods("POST")
	api.HandleFunc("/compose/recipients/{index:[0-9]+}", a.UpdateRecipientHandler).Methods("PATCH")
	api.HandleFunc("/compose/recipients/{index:[0-9]+}", a.RemoveRecipientHandler).Methods("DELETE")
	api.HandleFunc("/compose/schedule", a.ScheduleHandler).Methods("POST")
	api.HandleFunc("/send", a.SendMailHandler).Methods("POST")

	// Scheduled emails
	api.HandleFunc("/scheduled", a.ListScheduledHandler).Methods("GET")
	api.HandleFunc("/scheduled/{id}", a.UpdateScheduledHandler).Methods("PUT")
	api.HandleFunc("/scheduled/{id}", a.DeleteScheduledHandler).Methods("DELETE")
	api.HandleFunc("/scheduled/{id}/send", a.SendScheduledHandler).Methods("POST")
	api.HandleFunc("/scheduled/{id}/edit", a.EditScheduledHandler).Methods("POST")

	// Contacts and birthdays
	api.HandleFunc("/contacts", a.ListContactsHandler).Methods("GET")
	api.HandleFunc("/contacts/{category}/import", a.ImportContactsHandler).Methods("POST")
	api.HandleFunc("/contacts/{category}", a.AddContactHandler).Methods("POST")
	api.HandleFunc("/contacts/{category}/{email}", a.UpdateContactHandler).Methods("PUT")
	api.HandleFunc("/contacts/{category}/{email}", a.DeleteContactHandler).Methods("DELETE")
	api.HandleFunc("/upcoming", a.GetUpcomingHandler).Methods("GET")
	api.HandleFunc("/upcoming/send", a.SendBirthdayHandler).Methods("POST")
	api.HandleFunc("/drafts", a.SaveDraftHandler).Methods("PUT")

	// History and accounting
	api.HandleFunc("/logs", a.GetLogsHandler).Methods("GET")
	api.HandleFunc("/logs", a.ClearLogsHandler).Methods("DELETE")
	api.HandleFunc("/logs/{id:[0-9]+}", a.DeleteLogHandler).Methods("DELETE")
	api.HandleFunc("/limit", a.GetDailyLimitHandler).Methods("GET")
	api.HandleFunc("/stats", a.GetEmailStatsHandler).Methods("GET")
	api.HandleFunc("/stats/daily", a.GetDailySendsHandler).Methods("GET")

	// Sender settings
	api.HandleFunc("/config", a.GetConfigHandler).Methods("GET")
	api.HandleFunc("/config", a.SaveConfigHandler).Methods("PUT")
	api.HandleFunc("/config/test", a.SendTestEmailHandler).Methods("POST")

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Dashboard Static Files
	if staticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))
	}
}
