package chat

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/forgeline/devagent/internal/services/completion"
	"github.com/forgeline/devagent/pkg/httpext"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// HandleChatCompletions handles the non-streaming completion endpoint.
// The request body follows the OpenAI chat completions shape; tool
// calls are resolved server side before the final response is sent.
func HandleChatCompletions(completionService *completion.Service, w http.ResponseWriter, r *http.Request) {
	if completionService == nil {
		httpext.JsonError(w, "Completion endpoint is not configured", http.StatusServiceUnavailable)
		return
	}

	var req openai.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed JSON request")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if len(req.Messages) == 0 {
		log.Warn().Msg("Client sent empty messages array")
		httpext.JsonError(w, "Messages array cannot be empty", http.StatusBadRequest)
		return
	}

	log.Info().
		Int("message_count", len(req.Messages)).
		Str("client_ip", r.RemoteAddr).
		Msg("Received chat completions request")

	resp, err := completionService.ProcessChat(r.Context(), req)
	if err != nil {
		log.Error().Err(err).Str("messages", fmt.Sprintf("%v", req.Messages)).Msg("Failed to process chat")
		httpext.JsonError(w, "Failed to process chat", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
		httpext.JsonError(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}
