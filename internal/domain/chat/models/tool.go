package models

import "time"

// ToolOutput is one unit of output produced by a tool execution.
// Type tags the kind of output: stdout, stderr, file_content,
// directory_listing, error, etc.
type ToolOutput struct {
	Type     string                 `json:"type"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// ToolOutputEvent is the telemetry payload broadcast to observers for
// every ToolOutput a tool produces
type ToolOutputEvent struct {
	SessionID  string                 `json:"sessionId"`
	ToolName   string                 `json:"toolName"`
	ToolCallID string                 `json:"toolCallId"`
	Args       map[string]interface{} `json:"args"`
	Output     ToolOutput             `json:"output"`
	Timestamp  time.Time              `json:"timestamp"`
}
