package handlers

import (
	"net/http"

	"club-mailer/database"
)

func (a *API) GetConfigHandler(w http.ResponseWriter, r *http.Request) {
	cfg, err := a.mailer.GetConfig(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.successResponse(w, "Sender settings retrieved", cfg)
}

func (a *API) SaveConfigHandler(w http.ResponseWriter, r *http.Request) {
	var cfg database.ClubConfig
	if !a.decodeJSON(w, r, &cfg) {
		return
	}
	saved, err := a.mailer.SaveConfig(r.Context(), cfg)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.successResponse(w, "Sender settings saved", saved)
}

func (a *API) SendTestEmailHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.mailer.SendTestEmail(r.Context()); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.successResponse(w, "Test email sent", nil)
}
