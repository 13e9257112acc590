package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"layerdemo/internal/domain/applicant"
)

// ApplicantRegistrar registers manual sign-ups
type ApplicantRegistrar interface {
	Register(ctx context.Context, params applicant.RegisterParams) (*applicant.Applicant, error)
}

type ApplicantHandler struct {
	service ApplicantRegistrar
}

func NewApplicantHandler(service ApplicantRegistrar) *ApplicantHandler {
	return &ApplicantHandler{service: service}
}

// HandleRegister handles POST /server/applicants/register
func (h *ApplicantHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req applicant.RegisterParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding register request: %v", err)
		writeJSONError(w, http.StatusBadRequest, errorCodeInvalidRequest, "Invalid request body")
		return
	}

	created, err := h.service.Register(r.Context(), req)
	if err != nil {
		var vErr *applicant.ValidationError
		switch {
		case errors.As(err, &vErr):
			writeJSONError(w, http.StatusBadRequest, errorCodeInvalidRequest, vErr.Error())
		case errors.Is(err, applicant.ErrApplicantExists):
			writeJSONError(w, http.StatusConflict, errorCodeConflict, err.Error())
		default:
			log.Printf("Error registering applicant: %v", err)
			WriteError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, created)
}
