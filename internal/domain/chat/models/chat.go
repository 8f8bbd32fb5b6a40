package models

import "time"

// SessionResponse is returned when a new session is created
type SessionResponse struct {
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChatRequest is a single user turn within a session
type ChatRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

// ToolCallResponse describes a completed tool invocation in a
// response chunk
type ToolCallResponse struct {
	Name   string `json:"name"`
	Result string `json:"result"`
}

// ChatResponse is one incremental response chunk streamed back to the
// client. It carries either a text delta or a tool-completion marker,
// and doubles as a history entry.
type ChatResponse struct {
	SessionID  string            `json:"sessionId"`
	Message    string            `json:"message"`
	Role       string            `json:"role"`
	ToolCallID string            `json:"toolCallId,omitempty"`
	ToolCall   *ToolCallResponse `json:"toolCall,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}
