package handlers

import (
	"net/http"

	"club-mailer/database"

	"github.com/gorilla/mux"
)

func (a *API) category(w http.ResponseWriter, r *http.Request) (database.Category, bool) {
	cat, ok := database.ParseCategory(mux.Vars(r)["category"])
	if !ok {
		a.errorResponse(w, "Unknown category "+mux.Vars(r)["category"], http.StatusNotFound)
	}
	return cat, ok
}

func (a *API) ListContactsHandler(w http.ResponseWriter, r *http.Request) {
	contacts, err := a.mailer.ListContacts(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.successResponse(w, "Contacts retrieved", contacts)
}

// ImportContactsHandler smart-merges an uploaded spreadsheet into a category.
func (a *API) ImportContactsHandler(w http.ResponseWriter, r *http.Request) {
	cat, ok := a.category(w, r)
	if !ok {
		return
	}
	rows, ok := a.readSpreadsheet(w, r)
	if !ok {
		return
	}
	res, err := a.mailer.ImportContacts(r.Context(), cat, rows)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.successResponse(w, "Contacts imported", map[string]int{"added": res.Added, "updated": res.Updated})
}

func (a *API) AddContactHandler(w http.ResponseWriter, r *http.Request) {
	cat, ok := a.category(w, r)
	if !ok {
		return
	}
	var c database.Contact
	if !a.decodeJSON(w, r, &c) {
		return
	}
	added, err := a.mailer.AddContact(r.Context(), cat, c)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.successResponse(w, "Contact added", added)
}

func (a *API) UpdateContactHandler(w http.ResponseWriter, r *http.Request) {
	cat, ok := a.category(w, r)
	if !ok {
		return
	}
	var c database.Contact
	if !a.decodeJSON(w, r, &c) {
		return
	}
	updated, err := a.mailer.UpdateContact(r.Context(), cat, mux.Vars(r)["email"], c)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.successResponse(w, "Contact updated", updated)
}

func (a *API) DeleteContactHandler(w http.ResponseWriter, r *http.Request) {
	cat, ok := a.category(w, r)
	if !ok {
		return
	}
	if err := a.mailer.DeleteContact(r.Context(), cat, mux.Vars(r)["email"]); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.successResponse(w, "Contact deleted", nil)
}
