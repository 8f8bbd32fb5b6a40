package anthropic

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/forgeline/devagent/internal/domain/chat/models"
	"github.com/rs/zerolog/log"
)

// streamEnvelope is one newline-delimited record of the event stream
type streamEnvelope struct {
	Type         string            `json:"type"`
	Index        int               `json:"index"`
	ContentBlock *contentBlockInfo `json:"content_block"`
	Delta        *deltaInfo        `json:"delta"`
}

type contentBlockInfo struct {
	Type  string                 `json:"type"`
	ID    string                 `json:"id"`
	Name  string                 `json:"name"`
	Input map[string]interface{} `json:"input"`
}

type deltaInfo struct {
	Type       string                 `json:"type"`
	Text       string                 `json:"text"`
	Input      map[string]interface{} `json:"input"`
	StopReason string                 `json:"stop_reason"`
}

// DecodeStream consumes the raw event stream and produces typed
// StreamEvents in wire order. A record that fails to parse is logged
// and skipped; it never aborts the rest of the stream. The channel is
// closed when the stream ends or ctx is cancelled.
//
// Tool-use deltas and stops carry no call id on the wire; the decoder
// tracks the open tool-use block and stamps them with its id.
func DecodeStream(ctx context.Context, r io.Reader) <-chan models.StreamEvent {
	events := make(chan models.StreamEvent)

	go func() {
		defer close(events)

		emit := func(ev models.StreamEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		var currentToolID string

		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "event:") {
				continue
			}
			line = strings.TrimPrefix(line, "data: ")
			if line == "[DONE]" {
				continue
			}

			var env streamEnvelope
			if err := json.Unmarshal([]byte(line), &env); err != nil {
				log.Warn().Err(err).Str("chunk", line).Msg("Skipping malformed stream chunk")
				continue
			}

			switch env.Type {
			case "content_block_start":
				if env.ContentBlock != nil && env.ContentBlock.Type == "tool_use" {
					currentToolID = env.ContentBlock.ID
					if !emit(models.StreamEvent{
						Type:     models.StreamToolStart,
						CallID:   env.ContentBlock.ID,
						ToolName: env.ContentBlock.Name,
					}) {
						return
					}
				}

			case "content_block_delta":
				if env.Delta == nil {
					continue
				}
				if env.Delta.Type == "tool_use_delta" && env.Delta.Input != nil {
					if !emit(models.StreamEvent{
						Type:     models.StreamToolArgDelta,
						CallID:   currentToolID,
						ArgDelta: env.Delta.Input,
					}) {
						return
					}
				} else if env.Delta.Text != "" {
					if !emit(models.StreamEvent{
						Type: models.StreamTextDelta,
						Text: env.Delta.Text,
					}) {
						return
					}
				}

			case "message_delta":
				if env.Delta != nil && env.Delta.StopReason == "tool_use" {
					if !emit(models.StreamEvent{
						Type:   models.StreamToolEnd,
						CallID: currentToolID,
					}) {
						return
					}
					currentToolID = ""
				}

			case "message_stop":
				if !emit(models.StreamEvent{Type: models.StreamTurnEnd}) {
					return
				}
			}
		}

		if err := scanner.Err(); err != nil {
			log.Error().Err(err).Msg("Error reading model response stream")
		}
	}()

	return events
}
