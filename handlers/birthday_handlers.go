package handlers

import (
	"net/http"

	"club-mailer/database"
)

type birthdayWishRequest struct {
	Category string `json:"category"`
	Email    string `json:"email"`
}

func (a *API) GetUpcomingHandler(w http.ResponseWriter, r *http.Request) {
	upcoming, err := a.mailer.Upcoming(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.successResponse(w, "Upcoming birthdays retrieved", upcoming)
}

func (a *API) SaveDraftHandler(w http.ResponseWriter, r *http.Request) {
	var d database.Draft
	if !a.decodeJSON(w, r, &d) {
		return
	}
	saved, err := a.mailer.SaveDraft(r.Context(), d)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.successResponse(w, "Draft saved", saved)
}

// SendBirthdayHandler sends one upcoming birthday wish.
func (a *API) SendBirthdayHandler(w http.ResponseWriter, r *http.Request) {
	var req birthdayWishRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	cat, ok := database.ParseCategory(req.Category)
	if !ok {
		a.errorResponse(w, "Unknown category "+req.Category, http.StatusBadRequest)
		return
	}
	if err := a.checkDailyLimit(r.Context(), 1); err != nil {
		a.writeError(w, r, err)
		return
	}
	msg, err := a.mailer.SendBirthdayWish(r.Context(), cat, req.Email)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.successResponse(w, "Birthday wish sent", msg)
}
