package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/forgeline/devagent/internal/config"
	"github.com/forgeline/devagent/internal/connections"
	domain "github.com/forgeline/devagent/internal/domain/chat"
	"github.com/forgeline/devagent/internal/domain/chat/models"
	"github.com/forgeline/devagent/internal/infrastructure/anthropic"
	"github.com/forgeline/devagent/internal/services/session"
	"github.com/forgeline/devagent/internal/services/tools"
	"github.com/rs/zerolog/log"
)

// Implementation drives one user turn end-to-end: it feeds the session
// log to the model, pumps decoded stream events through the assembler,
// executes completed tool calls, and streams response chunks back.
type Implementation struct {
	provider       *anthropic.Service
	sessionService *session.Service
	toolRegistry   *tools.Service
	connManager    *connections.Manager
}

func NewService(provider *anthropic.Service, sessions *session.Service, registry *tools.Service, conns *connections.Manager) (*Implementation, error) {
	if provider == nil {
		return nil, fmt.Errorf("anthropic provider is required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session service is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("tool registry is required")
	}

	return &Implementation{
		provider:       provider,
		sessionService: sessions,
		toolRegistry:   registry,
		connManager:    conns,
	}, nil
}

// ProcessMessage runs one turn. Pre-flight failures (unknown session)
// return an error and mutate nothing; once the chunk stream is open,
// every later failure ends it with a terminal error chunk instead.
// Turns on the same session are serialized; other sessions proceed in
// parallel.
func (s *Implementation) ProcessMessage(ctx context.Context, sessionID, message string) (<-chan models.ChatResponse, error) {
	if err := s.sessionService.Exists(ctx, sessionID); err != nil {
		return nil, err
	}

	log.Info().Str("session_id", sessionID).Msg("Processing message")

	unlock := s.sessionService.LockTurn(sessionID)

	fail := func(err error) (<-chan models.ChatResponse, error) {
		unlock()
		return nil, err
	}

	if err := s.sessionService.AppendUserMessage(ctx, sessionID, message); err != nil {
		return fail(err)
	}
	if err := s.sessionService.EnsureSystemMessage(ctx, sessionID); err != nil {
		return fail(err)
	}
	snapshot, err := s.sessionService.Snapshot(ctx, sessionID)
	if err != nil {
		return fail(err)
	}

	req := s.buildRequest(snapshot)

	out := make(chan models.ChatResponse)
	go func() {
		defer close(out)
		defer unlock()
		s.runTurn(ctx, sessionID, req, out)
	}()

	return out, nil
}

func (s *Implementation) runTurn(ctx context.Context, sessionID string, req *anthropic.Request, out chan<- models.ChatResponse) {
	body, err := s.provider.Stream(ctx, req)
	if err != nil {
		s.emitError(ctx, out, sessionID, err)
		return
	}
	defer body.Close()

	assembler := newToolCallAssembler()

	for ev := range anthropic.DecodeStream(ctx, body) {
		switch ev.Type {
		case models.StreamTextDelta:
			if err := s.sessionService.AppendAssistantDelta(ctx, sessionID, ev.Text); err != nil {
				s.emitError(ctx, out, sessionID, err)
				return
			}
			if !s.emit(ctx, out, models.ChatResponse{
				SessionID: sessionID,
				Message:   ev.Text,
				Role:      models.RoleAssistant,
				Timestamp: time.Now(),
			}) {
				return
			}

		case models.StreamToolStart:
			assembler.OnToolStart(ev.CallID, ev.ToolName)

		case models.StreamToolArgDelta:
			assembler.OnArgDelta(ev.CallID, ev.ArgDelta)

		case models.StreamToolEnd:
			call, ok := assembler.OnToolEnd(ev.CallID)
			if !ok {
				continue
			}
			if !s.handleToolCall(ctx, sessionID, call, out) {
				return
			}

		case models.StreamTurnEnd:
			if err := assembler.Close(); err != nil {
				s.emitError(ctx, out, sessionID, err)
			}
			log.Info().Str("session_id", sessionID).Msg("Turn completed")
			return
		}
	}

	// Stream ended without a message_stop; a still-pending tool call is
	// a truncated stream.
	if err := assembler.Close(); err != nil {
		s.emitError(ctx, out, sessionID, err)
	}
}

// handleToolCall records, executes, and broadcasts one completed tool
// call. Returns false when the turn must end.
func (s *Implementation) handleToolCall(ctx context.Context, sessionID string, call *completedToolCall, out chan<- models.ChatResponse) bool {
	log.Info().
		Str("session_id", sessionID).
		Str("tool", call.Name).
		Str("call_id", call.ID).
		Msg("Handling completed tool call")

	tool, exists := s.toolRegistry.Get(call.Name)
	if !exists {
		s.emitError(ctx, out, sessionID, fmt.Errorf("%w: %s", domain.ErrToolNotFound, call.Name))
		return false
	}
	if err := tools.ValidateArgs(tool, call.Args); err != nil {
		s.emitError(ctx, out, sessionID, err)
		return false
	}

	argsJSON, err := json.Marshal(call.Args)
	if err != nil {
		s.emitError(ctx, out, sessionID, fmt.Errorf("failed to serialize tool arguments: %w", err))
		return false
	}

	if err := s.sessionService.RecordToolCall(ctx, sessionID, models.ToolCall{
		ID:        call.ID,
		Name:      call.Name,
		Arguments: string(argsJSON),
	}); err != nil {
		s.emitError(ctx, out, sessionID, err)
		return false
	}

	outputs, err := tool.Execute(ctx, call.Args)
	if err != nil {
		s.emitError(ctx, out, sessionID, &domain.ToolExecutionError{Tool: call.Name, Err: err})
		return false
	}

	var result strings.Builder
	var failed error
	for output := range outputs {
		if s.connManager != nil {
			s.connManager.BroadcastToolOutput(models.ToolOutputEvent{
				SessionID:  sessionID,
				ToolName:   call.Name,
				ToolCallID: call.ID,
				Args:       call.Args,
				Output:     output,
				Timestamp:  time.Now(),
			})
		}
		result.WriteString(output.Content)
		result.WriteString("\n")
		if output.Type == tools.OutputError {
			failed = &domain.ToolExecutionError{Tool: call.Name, Err: fmt.Errorf("%s", output.Content)}
		}
	}

	// The result is recorded even when the tool failed, so history
	// shows an attempted failed call rather than a phantom success.
	if err := s.sessionService.RecordToolResult(ctx, sessionID, call.ID, result.String()); err != nil {
		s.emitError(ctx, out, sessionID, err)
		return false
	}

	if failed != nil {
		s.emitError(ctx, out, sessionID, failed)
		return false
	}

	return s.emit(ctx, out, models.ChatResponse{
		SessionID:  sessionID,
		Message:    fmt.Sprintf("[Tool execution completed: %s]", call.Name),
		Role:       models.RoleAssistant,
		ToolCallID: call.ID,
		ToolCall: &models.ToolCallResponse{
			Name:   call.Name,
			Result: result.String(),
		},
		Timestamp: time.Now(),
	})
}

// buildRequest converts a session snapshot into the provider payload:
// system as a top-level field, messages filtered to non-empty user and
// assistant content, tools exported from the registry
func (s *Implementation) buildRequest(snapshot []models.Message) *anthropic.Request {
	var system string
	var messages []anthropic.RequestMessage

	for _, msg := range snapshot {
		switch msg.Role {
		case models.RoleSystem:
			if system == "" {
				system = msg.Content
			}
		case models.RoleUser, models.RoleAssistant:
			if msg.Content == "" {
				continue
			}
			messages = append(messages, anthropic.RequestMessage{
				Role:    msg.Role,
				Content: msg.Content,
			})
		}
	}

	if system == "" {
		system = models.FallbackSystemPrompt()
	}

	return &anthropic.Request{
		Model:       config.GetAnthropicModel(),
		Messages:    messages,
		System:      system,
		Temperature: config.GetAnthropicTemperature(),
		MaxTokens:   config.GetAnthropicMaxTokens(),
		Tools:       s.toolRegistry.Definitions(),
	}
}

func (s *Implementation) emit(ctx context.Context, out chan<- models.ChatResponse, chunk models.ChatResponse) bool {
	select {
	case out <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Implementation) emitError(ctx context.Context, out chan<- models.ChatResponse, sessionID string, err error) {
	log.Error().Err(err).Str("session_id", sessionID).Msg("Turn failed")
	s.emit(ctx, out, models.ChatResponse{
		SessionID: sessionID,
		Message:   fmt.Sprintf("[Error: %v]", err),
		Role:      models.RoleAssistant,
		Timestamp: time.Now(),
	})
}
