package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/IshpreetSingh8264/InflowBackend/internal/api/middleware"
	"github.com/IshpreetSingh8264/InflowBackend/internal/chat"
	"github.com/IshpreetSingh8264/InflowBackend/internal/domain"
	"github.com/rs/zerolog"
)

// contextWindow bounds how far back we look when loading a user's
// transactions into a fresh chat session.
const contextWindow = 365 * 24 * time.Hour

// ChatHandler exposes the assistant conversation over HTTP.
type ChatHandler struct {
	svc    *chat.Service
	reader domain.TransactionReader
	log    zerolog.Logger
}

// NewChatHandler creates a chat handler.
func NewChatHandler(svc *chat.Service, reader domain.TransactionReader, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{svc: svc, reader: reader, log: log}
}

// Init handles POST /api/chat/init. It loads the user's financial context
// and returns the visible conversation history, creating the session with a
// welcome message on first contact.
func (h *ChatHandler) Init(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	now := time.Now()
	txs, err := h.reader.ListTransactions(r.Context(), userID, now.Add(-contextWindow), now)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to load transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load financial context")
		return
	}
	goals, err := h.reader.ListGoals(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to load goals")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load financial context")
		return
	}

	messages, err := h.svc.Initialize(r.Context(), userID, txs, goals)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to initialize chat session")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to initialize chat")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"messages": messages,
	})
}

type messageRequest struct {
	Message string `json:"message"`
}

// Message handles POST /api/chat/message.
func (h *ChatHandler) Message(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	reply, messages, err := h.svc.SendMessage(r.Context(), userID, req.Message)
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		middleware.WriteError(w, http.StatusBadRequest, "Message text is required")
		return
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		h.log.Error().Err(err).Str("user_id", userID).Msg("Model call failed")
		middleware.WriteError(w, http.StatusBadGateway, "Assistant is temporarily unavailable")
		return
	case err != nil:
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to process message")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to process message")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reply":    reply,
		"messages": messages,
	})
}

// History handles GET /api/chat/history. An unknown user gets an empty list,
// not an error.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"messages": h.svc.History(userID),
	})
}

// Clear handles DELETE /api/chat. Clearing an absent session succeeds.
func (h *ChatHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	h.svc.Clear(userID)
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
