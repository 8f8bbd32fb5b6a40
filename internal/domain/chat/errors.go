package chat

import (
	"errors"
	"fmt"
)

// Failure taxonomy for a turn. Everything here is scoped to one turn;
// the session registry and tool registry stay usable afterward.
var (
	// ErrSessionNotFound indicates an unknown session id
	ErrSessionNotFound = errors.New("session not found")

	// ErrToolNotFound indicates the model requested an unregistered tool
	ErrToolNotFound = errors.New("tool not found")

	// ErrToolCallNotFound indicates a tool result references a call id
	// with no matching prior tool-call message
	ErrToolCallNotFound = errors.New("tool call not found")

	// ErrProtocol indicates a stream grammar violation, e.g. a turn
	// ending with a truncated tool call
	ErrProtocol = errors.New("stream protocol error")
)

// TransportError is a non-2xx status or connection failure from the
// model provider. The body is surfaced verbatim as a single synthetic
// error chunk.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("model transport error: status %d: %s", e.StatusCode, e.Body)
}

// ToolExecutionError indicates the tool itself failed after the
// tool-call message was already recorded
type ToolExecutionError struct {
	Tool string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s execution failed: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error {
	return e.Err
}
