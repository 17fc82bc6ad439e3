package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"club-mailer/apperrors"
	"club-mailer/logger"
	"club-mailer/utils"
)

// APIResponse struct for consistent JSON responses
type APIResponse struct {
	Message string      `json:"message"`
	Status  string      `json:"status"` // "success" or "error"
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, log logger.Logger, statusCode int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error("failed to marshal response", map[string]interface{}{"error": err.Error()})
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(response)
}

func (a *API) errorResponse(w http.ResponseWriter, message string, statusCode int) {
	respondWithJSON(w, a.log, statusCode, APIResponse{Message: message, Status: "error"})
}

func (a *API) successResponse(w http.ResponseWriter, message string, data interface{}) {
	respondWithJSON(w, a.log, http.StatusOK, APIResponse{Message: message, Status: "success", Data: data})
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	if errors.Is(err, utils.ErrDailyLimitExceeded) {
		return http.StatusForbidden
	}
	switch apperrors.CodeOf(err) {
	case apperrors.ErrCodeValidationFailed, apperrors.ErrCodeImportFormatInvalid:
		return http.StatusBadRequest
	case apperrors.ErrCodeConfigurationMissing:
		return http.StatusPreconditionFailed
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeInvalidState:
		return http.StatusConflict
	case apperrors.ErrCodeTransportFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports err to the client. Server-side failures are logged and
// their details hidden.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := APIResponse{Status: "error", Message: err.Error(), Code: string(apperrors.CodeOf(err))}

	var se *apperrors.StandardError
	if errors.As(err, &se) {
		resp.Message = se.Message
		if se.Details != "" {
			resp.Message += ": " + se.Details
		}
	}
	if status >= http.StatusInternalServerError {
		a.log.Error("request failed", map[string]interface{}{
			"method": r.Method, "path": r.URL.Path, "error": err.Error(),
		})
		if status == http.StatusInternalServerError {
			resp.Message = "Internal server error"
		}
	}
	respondWithJSON(w, a.log, status, resp)
}

func (a *API) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		a.errorResponse(w, "Invalid request payload", http.StatusBadRequest)
		return false
	}
	return true
}
