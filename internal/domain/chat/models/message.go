package models

import "time"

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall is a structured request from the model to invoke a named
// capability with serialized arguments
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message represents a single conversational unit in a session.
// Content stays mutable while an assistant turn is streaming.
type Message struct {
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	ToolCallID string    `json:"tool_call_id,omitempty"`
	ToolCall   *ToolCall `json:"tool_call,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
