package anthropic

import (
	"context"
	"strings"
	"testing"

	"github.com/forgeline/devagent/internal/domain/chat/models"
)

func collectEvents(t *testing.T, stream string) []models.StreamEvent {
	t.Helper()

	var events []models.StreamEvent
	for ev := range DecodeStream(context.Background(), strings.NewReader(stream)) {
		events = append(events, ev)
	}
	return events
}

func TestDecodeStream(t *testing.T) {
	t.Run("text deltas decode in order", func(t *testing.T) {
		stream := `event: content_block_delta
data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hello"}}

data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":" world"}}

data: {"type":"message_stop"}
`
		events := collectEvents(t, stream)

		if len(events) != 3 {
			t.Fatalf("Expected 3 events, got %d", len(events))
		}
		if events[0].Type != models.StreamTextDelta || events[0].Text != "Hello" {
			t.Errorf("Expected first text delta %q, got %+v", "Hello", events[0])
		}
		if events[1].Type != models.StreamTextDelta || events[1].Text != " world" {
			t.Errorf("Expected second text delta %q, got %+v", " world", events[1])
		}
		if events[2].Type != models.StreamTurnEnd {
			t.Errorf("Expected turn end, got %+v", events[2])
		}
	})

	t.Run("tool use group carries call id", func(t *testing.T) {
		stream := `data: {"type":"content_block_start","index":0,"content_block":{"type":"tool_use","id":"call-1","name":"file_system"}}
data: {"type":"content_block_delta","index":0,"delta":{"type":"tool_use_delta","input":{"operation":"list"}}}
data: {"type":"content_block_delta","index":0,"delta":{"type":"tool_use_delta","input":{"path":"/tmp"}}}
data: {"type":"message_delta","delta":{"stop_reason":"tool_use"}}
data: {"type":"message_stop"}
`
		events := collectEvents(t, stream)

		if len(events) != 5 {
			t.Fatalf("Expected 5 events, got %d", len(events))
		}
		if events[0].Type != models.StreamToolStart || events[0].CallID != "call-1" || events[0].ToolName != "file_system" {
			t.Errorf("Unexpected tool start event: %+v", events[0])
		}
		for i := 1; i <= 2; i++ {
			if events[i].Type != models.StreamToolArgDelta {
				t.Fatalf("Expected arg delta at %d, got %+v", i, events[i])
			}
			if events[i].CallID != "call-1" {
				t.Errorf("Expected arg delta stamped with call-1, got %q", events[i].CallID)
			}
		}
		if events[1].ArgDelta["operation"] != "list" {
			t.Errorf("Expected operation=list, got %v", events[1].ArgDelta)
		}
		if events[3].Type != models.StreamToolEnd || events[3].CallID != "call-1" {
			t.Errorf("Unexpected tool end event: %+v", events[3])
		}
	})

	t.Run("malformed chunk is skipped", func(t *testing.T) {
		stream := `data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"before"}}
data: {malformed json
data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"after"}}
`
		events := collectEvents(t, stream)

		if len(events) != 2 {
			t.Fatalf("Expected 2 events, got %d", len(events))
		}
		if events[0].Text != "before" || events[1].Text != "after" {
			t.Errorf("Expected the two valid deltas, got %+v", events)
		}
	})

	t.Run("done sentinel and blank lines produce no events", func(t *testing.T) {
		stream := `
data: [DONE]

`
		events := collectEvents(t, stream)
		if len(events) != 0 {
			t.Errorf("Expected no events, got %+v", events)
		}
	})

	t.Run("unrecognized envelopes are filtered", func(t *testing.T) {
		stream := `data: {"type":"message_start","message":{"id":"msg_1"}}
data: {"type":"content_block_start","index":0,"content_block":{"type":"text"}}
data: {"type":"ping"}
`
		events := collectEvents(t, stream)
		if len(events) != 0 {
			t.Errorf("Expected no events, got %+v", events)
		}
	})

	t.Run("cancelled context stops decoding", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		stream := `data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"never"}}
`
		ch := DecodeStream(ctx, strings.NewReader(stream))
		for range ch {
		}
	})
}
