package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	domain "github.com/forgeline/devagent/internal/domain/chat"
	"github.com/forgeline/devagent/internal/domain/chat/models"
	"github.com/forgeline/devagent/pkg/httpext"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// HandleChat runs one streaming turn. Response chunks are delivered as
// server-sent events, one data line per chunk.
func HandleChat(chatService domain.Service, w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed JSON request")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(req); err != nil {
		log.Warn().Err(err).Msg("Request validation failed")
		httpext.JsonError(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error().Msg("Response writer does not support streaming")
		httpext.JsonError(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	chunks, err := chatService.ProcessMessage(r.Context(), req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			httpext.JsonError(w, "Session not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("session_id", req.SessionID).Msg("Failed to process message")
		httpext.JsonError(w, "Failed to process message", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for chunk := range chunks {
		payload, err := json.Marshal(chunk)
		if err != nil {
			log.Error().Err(err).Msg("Failed to serialize response chunk")
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}

	log.Info().Str("session_id", req.SessionID).Msg("Chat stream completed")
}
