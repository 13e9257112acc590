package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"layerdemo/internal/domain/layer"
)

// SessionService is the relay logic the token endpoints need
type SessionService interface {
	CreateSessionToken(ctx context.Context, clientUserID string) (string, error)
	FetchAccountSessionInfo(ctx context.Context, publicToken string) (*layer.AccountSessionInfo, error)
}

type TokenHandler struct {
	service SessionService
}

func NewTokenHandler(service SessionService) *TokenHandler {
	return &TokenHandler{service: service}
}

// Request/Response DTOs

type CreateSessionTokenRequest struct {
	ClientUserID string `json:"clientUserId"`
}

type CreateSessionTokenResponse struct {
	LinkToken string `json:"linkToken"`
}

type FetchAccountSessionInfoRequest struct {
	PublicToken string `json:"publicToken"`
}

// HandleCreateSessionToken handles POST /server/tokens/create_session_token
func (h *TokenHandler) HandleCreateSessionToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CreateSessionTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding create session token request: %v", err)
		writeJSONError(w, http.StatusBadRequest, errorCodeInvalidRequest, "Invalid request body")
		return
	}

	linkToken, err := h.service.CreateSessionToken(r.Context(), req.ClientUserID)
	if err != nil {
		log.Printf("Error creating session token: %v", err)
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CreateSessionTokenResponse{LinkToken: linkToken})
}

// HandleFetchAccountSessionInfo handles POST /server/tokens/fetch_account_session_info
func (h *TokenHandler) HandleFetchAccountSessionInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req FetchAccountSessionInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding fetch account session info request: %v", err)
		writeJSONError(w, http.StatusBadRequest, errorCodeInvalidRequest, "Invalid request body")
		return
	}

	info, err := h.service.FetchAccountSessionInfo(r.Context(), req.PublicToken)
	if errors.Is(err, layer.ErrInvalidInput) {
		writeJSONError(w, http.StatusBadRequest, errorCodeInvalidRequest, "publicToken is required")
		return
	}
	if err != nil {
		log.Printf("Error getting account session info: %v", err)
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}
