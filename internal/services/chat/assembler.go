package chat

import (
	"fmt"

	domain "github.com/forgeline/devagent/internal/domain/chat"
	"github.com/rs/zerolog/log"
)

// completedToolCall is a fully assembled tool invocation, ready to be
// recorded and executed
type completedToolCall struct {
	ID   string
	Name string
	Args map[string]interface{}
}

// pendingToolCall is the working state between a tool start and its
// matching end
type pendingToolCall struct {
	id   string
	name string
	args map[string]interface{}
}

// toolCallAssembler accumulates tool-invocation stream events into one
// completed call per group. States: idle (pending == nil) and
// accumulating.
type toolCallAssembler struct {
	pending *pendingToolCall
}

func newToolCallAssembler() *toolCallAssembler {
	return &toolCallAssembler{}
}

// OnToolStart opens a new pending call. A start received while a call
// is already pending overwrites it; the stream never interleaves two
// calls, so the earlier one is unrecoverable anyway.
func (a *toolCallAssembler) OnToolStart(id, name string) {
	if a.pending != nil {
		log.Warn().
			Str("pending_call", a.pending.id).
			Str("new_call", id).
			Msg("Tool start received while a call was pending, overwriting")
	}
	a.pending = &pendingToolCall{
		id:   id,
		name: name,
		args: make(map[string]interface{}),
	}
}

// OnArgDelta merges an argument fragment into the pending call,
// last-write-wins per key. Deltas for a different call id, or with no
// pending call, are ignored.
func (a *toolCallAssembler) OnArgDelta(id string, delta map[string]interface{}) {
	if a.pending == nil || a.pending.id != id {
		return
	}
	for key, value := range delta {
		a.pending.args[key] = value
	}
}

// OnToolEnd completes the pending call when the id matches and returns
// to idle. An end with no matching pending call produces nothing.
func (a *toolCallAssembler) OnToolEnd(id string) (*completedToolCall, bool) {
	if a.pending == nil || a.pending.id != id {
		return nil, false
	}

	call := &completedToolCall{
		ID:   a.pending.id,
		Name: a.pending.name,
		Args: a.pending.args,
	}
	a.pending = nil
	return call, true
}

// Close ends the turn. A call still pending means the stream was
// truncated mid tool call: the call is discarded and a protocol error
// is reported, since the tool was never invoked.
func (a *toolCallAssembler) Close() error {
	if a.pending == nil {
		return nil
	}

	id := a.pending.id
	a.pending = nil
	return fmt.Errorf("%w: turn ended with incomplete tool call %s", domain.ErrProtocol, id)
}
