package handlers

import (
	"net/http"
	"strconv"

	"club-mailer/services"

	"github.com/gorilla/mux"
)

type composeRequest struct {
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	EventDate string `json:"eventDate"`
}

type recipientFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (a *API) GetComposeHandler(w http.ResponseWriter, r *http.Request) {
	a.successResponse(w, "Compose workspace retrieved", a.workspace.Snapshot())
}

// UploadRecipientsHandler ingests a multipart "file" spreadsheet into the
// workspace, replacing its recipients.
func (a *API) UploadRecipientsHandler(w http.ResponseWriter, r *http.Request) {
	rows, ok := a.readSpreadsheet(w, r)
	if !ok {
		return
	}
	batch, err := services.IngestRecipients(rows)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.workspace.LoadBatch(batch)
	a.log.Info("recipients ingested", map[string]interface{}{"recipients": len(batch.Recipients)})
	a.successResponse(w, "Recipients loaded", a.workspace.Snapshot())
}

func (a *API) UpdateComposeHandler(w http.ResponseWriter, r *http.Request) {
	var req composeRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if err := a.workspace.SetEventDate(req.EventDate); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.workspace.SetTemplate(req.Subject, req.Body)
	a.successResponse(w, "Compose workspace updated", a.workspace.Snapshot())
}

func (a *API) UpdateRecipientHandler(w http.ResponseWriter, r *http.Request) {
	index, ok := a.recipientIndex(w, r)
	if !ok {
		return
	}
	var req recipientFieldRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if err := a.workspace.UpdateRecipient(index, req.Field, req.Value); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.successResponse(w, "Recipient updated", a.workspace.Snapshot())
}

func (a *API) RemoveRecipientHandler(w http.ResponseWriter, r *http.Request) {
	index, ok := a.recipientIndex(w, r)
	if !ok {
		return
	}
	if err := a.workspace.RemoveRecipient(index); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.successResponse(w, "Recipient removed", a.workspace.Snapshot())
}

func (a *API) ResetComposeHandler(w http.ResponseWriter, r *http.Request) {
	a.workspace.Reset()
	a.successResponse(w, "Compose workspace cleared", a.workspace.Snapshot())
}

func (a *API) recipientIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		a.errorResponse(w, "Invalid recipient index", http.StatusBadRequest)
		return 0, false
	}
	return index, true
}

// readSpreadsheet parses the multipart "file" field.
func (a *API) readSpreadsheet(w http.ResponseWriter, r *http.Request) ([]services.Row, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		a.errorResponse(w, "A spreadsheet must be uploaded in the 'file' field", http.StatusBadRequest)
		return nil, false
	}
	defer file.Close()

	rows, err := services.ParseSpreadsheet(header.Filename, file)
	if err != nil {
		a.writeError(w, r, err)
		return nil, false
	}
	return rows, true
}
