package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"layerdemo/internal/infrastructure/plaid"
)

const (
	errorCodeOther          = "OTHER_ERROR"
	errorCodeInvalidRequest = "INVALID_REQUEST"
	errorCodeConflict       = "CONFLICT"
	otherErrorMessage       = "I got some other message on the server."
)

// ErrorResponse is the body of every error the relay writes itself
type ErrorResponse struct {
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// WriteError is the relay's catch-all for failed requests. A vendor error is
// passed through untouched with a 500 so the wizard sees exactly what the
// vendor said; anything else becomes a generic OTHER_ERROR.
func WriteError(w http.ResponseWriter, err error) {
	var apiErr *plaid.APIError
	if errors.As(err, &apiErr) && len(apiErr.Body) > 0 {
		log.Printf("Vendor error: %s", apiErr.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write(apiErr.Body)
		return
	}

	log.Printf("Unexpected error: %v", err)
	writeJSONError(w, http.StatusInternalServerError, errorCodeOther, otherErrorMessage)
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{ErrorCode: code, ErrorMessage: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
