package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/forgeline/devagent/internal/domain/chat/models"
	openaiinfra "github.com/forgeline/devagent/internal/infrastructure/openai"
	"github.com/forgeline/devagent/internal/services/tools"
	"github.com/sashabaranov/go-openai"
)

type echoTool struct{}

func (e *echoTool) Name() string        { return "echo" }
func (e *echoTool) Description() string { return "echoes its input" }
func (e *echoTool) Parameters() []tools.Parameter {
	return []tools.Parameter{{Name: "text", Type: "string", Description: "text", Required: true}}
}

func (e *echoTool) Execute(ctx context.Context, args map[string]interface{}) (<-chan models.ToolOutput, error) {
	out := make(chan models.ToolOutput, 1)
	out <- models.ToolOutput{Type: "stdout", Content: args["text"].(string)}
	close(out)
	return out, nil
}

func contentResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		ID: "cmpl-1",
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: content,
			},
		}},
	}
}

func TestProcessChat(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the assistant response", func(t *testing.T) {
		var sawSystem atomic.Bool
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req openai.ChatCompletionRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("Failed to decode request: %v", err)
			}
			if len(req.Messages) > 0 && req.Messages[0].Role == openai.ChatMessageRoleSystem {
				sawSystem.Store(true)
			}
			json.NewEncoder(w).Encode(contentResponse("hello there"))
		}))
		defer server.Close()

		svc, err := NewService(openaiinfra.NewServiceWithBaseURL("test-key", server.URL), tools.NewEmptyService())
		if err != nil {
			t.Fatalf("Failed to create service: %v", err)
		}

		resp, err := svc.ProcessChat(ctx, openai.ChatCompletionRequest{
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: "hi"},
			},
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if resp.Choices[0].Message.Content != "hello there" {
			t.Errorf("Unexpected content: %q", resp.Choices[0].Message.Content)
		}
		if !sawSystem.Load() {
			t.Error("Expected the default system prompt to be prepended")
		}
	})

	t.Run("resolves a tool call and feeds the result back", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req openai.ChatCompletionRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("Failed to decode request: %v", err)
			}

			if calls.Add(1) == 1 {
				json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
					ID: "cmpl-1",
					Choices: []openai.ChatCompletionChoice{{
						Message: openai.ChatCompletionMessage{
							Role: openai.ChatMessageRoleAssistant,
							ToolCalls: []openai.ToolCall{{
								ID:   "call-1",
								Type: openai.ToolTypeFunction,
								Function: openai.FunctionCall{
									Name:      "echo",
									Arguments: `{"text":"pong"}`,
								},
							}},
						},
					}},
				})
				return
			}

			// Second round must carry the tool result message
			last := req.Messages[len(req.Messages)-1]
			if last.Role != openai.ChatMessageRoleTool || last.ToolCallID != "call-1" {
				t.Errorf("Expected a tool result message, got %+v", last)
			}
			json.NewEncoder(w).Encode(contentResponse("done: pong"))
		}))
		defer server.Close()

		registry := tools.NewEmptyService()
		registry.Register(&echoTool{})

		svc, err := NewService(openaiinfra.NewServiceWithBaseURL("test-key", server.URL), registry)
		if err != nil {
			t.Fatalf("Failed to create service: %v", err)
		}

		resp, err := svc.ProcessChat(ctx, openai.ChatCompletionRequest{
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: "echo pong"},
			},
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if resp.Choices[0].Message.Content != "done: pong" {
			t.Errorf("Unexpected content: %q", resp.Choices[0].Message.Content)
		}
		if calls.Load() != 2 {
			t.Errorf("Expected 2 completion rounds, got %d", calls.Load())
		}
	})

	t.Run("rejects an empty messages array", func(t *testing.T) {
		svc, _ := NewService(openaiinfra.NewServiceWithBaseURL("test-key", "http://localhost:0"), tools.NewEmptyService())

		if _, err := svc.ProcessChat(ctx, openai.ChatCompletionRequest{}); err == nil {
			t.Error("Expected an error for empty messages")
		}
	})

	t.Run("requires the OpenAI service", func(t *testing.T) {
		if _, err := NewService(nil, tools.NewEmptyService()); err == nil {
			t.Error("Expected an error for a nil OpenAI service")
		}
	})
}
