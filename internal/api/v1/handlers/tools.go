package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/forgeline/devagent/internal/connections"
	"github.com/forgeline/devagent/internal/domain/chat/models"
	"github.com/forgeline/devagent/internal/services/tools"
	"github.com/forgeline/devagent/pkg/httpext"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// HandleToolInvoke runs one registered tool directly, outside any
// conversation. Outputs stream back as newline-delimited JSON and are
// mirrored to websocket observers.
func HandleToolInvoke(registry *tools.Service, connManager *connections.Manager, w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	tool, exists := registry.Get(name)
	if !exists {
		httpext.JsonError(w, fmt.Sprintf("Unknown tool: %s", name), http.StatusNotFound)
		return
	}

	args := make(map[string]interface{})
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil && !errors.Is(err, io.EOF) {
		log.Warn().Err(err).Str("tool", name).Msg("Client sent malformed tool arguments")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if err := tools.ValidateArgs(tool, args); err != nil {
		httpext.JsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	callID := uuid.New().String()
	log.Info().Str("tool", name).Str("call_id", callID).Msg("Direct tool invocation")

	outputs, err := tool.Execute(r.Context(), args)
	if err != nil {
		log.Error().Err(err).Str("tool", name).Msg("Tool execution failed to start")
		httpext.JsonError(w, "Tool execution failed", http.StatusInternalServerError)
		return
	}

	flusher, _ := w.(http.Flusher)
	w.Header().Set("Content-Type", "application/x-ndjson")

	encoder := json.NewEncoder(w)
	for output := range outputs {
		event := models.ToolOutputEvent{
			ToolName:   name,
			ToolCallID: callID,
			Args:       args,
			Output:     output,
			Timestamp:  time.Now(),
		}

		if connManager != nil {
			connManager.BroadcastToolOutput(event)
		}

		if err := encoder.Encode(event); err != nil {
			log.Warn().Err(err).Str("tool", name).Msg("Client went away mid tool stream")
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}
