package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	domain "github.com/forgeline/devagent/internal/domain/chat"
	"github.com/forgeline/devagent/internal/services/session"
	"github.com/forgeline/devagent/pkg/httpext"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// HandleCreateSession allocates a fresh conversation session
func HandleCreateSession(sessionService *session.Service, w http.ResponseWriter, r *http.Request) {
	resp, err := sessionService.Create(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to create session")
		httpext.JsonError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("Failed to encode session response")
	}
}

// HandleDeleteSession removes a session and its message log
func HandleDeleteSession(sessionService *session.Service, w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := sessionService.Delete(r.Context(), sessionID); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			httpext.JsonError(w, "Session not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to delete session")
		httpext.JsonError(w, "Failed to delete session", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleSessionHistory returns the non-system message log for a session
func HandleSessionHistory(sessionService *session.Service, w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	history, err := sessionService.History(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			httpext.JsonError(w, "Session not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to load session history")
		httpext.JsonError(w, "Failed to load session history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(history); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to encode session history")
	}
}
