package models

// StreamEventType discriminates the events decoded from a model
// response stream
type StreamEventType string

const (
	StreamTextDelta    StreamEventType = "text_delta"
	StreamToolStart    StreamEventType = "tool_start"
	StreamToolArgDelta StreamEventType = "tool_arg_delta"
	StreamToolEnd      StreamEventType = "tool_end"
	StreamTurnEnd      StreamEventType = "turn_end"
)

// StreamEvent is one decoded unit of the model response stream.
// Ephemeral: produced by the decoder, consumed by the orchestrator,
// never stored.
type StreamEvent struct {
	Type     StreamEventType
	Text     string
	CallID   string
	ToolName string
	ArgDelta map[string]interface{}
}
