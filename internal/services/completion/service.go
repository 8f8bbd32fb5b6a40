package completion

import (
	"context"
	"fmt"
	"sync"

	"github.com/forgeline/devagent/internal/config"
	"github.com/forgeline/devagent/internal/domain/chat/models"
	openaiinfra "github.com/forgeline/devagent/internal/infrastructure/openai"
	"github.com/forgeline/devagent/internal/services/tools"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// Service is the non-streaming completion path: one request, tool
// calls resolved inline, one final response. Sessions are not
// involved; the caller supplies the full message history.
type Service struct {
	mu           sync.RWMutex
	client       *openai.Client
	toolExecutor *tools.ToolExecutor
	toolRegistry *tools.Service
	systemPrompt *models.SystemPrompt
}

func NewService(openAIService *openaiinfra.Service, registry *tools.Service) (*Service, error) {
	if openAIService == nil {
		return nil, fmt.Errorf("OpenAI service is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("tool registry is required")
	}

	return &Service{
		client:       openAIService.GetClient(),
		toolExecutor: tools.NewToolExecutor(registry),
		toolRegistry: registry,
		systemPrompt: models.DefaultSystemPrompt(),
	}, nil
}

// ProcessChat runs the completion loop until the model returns plain
// assistant content. Tool calls in intermediate responses are executed
// and their results fed back as tool messages.
func (s *Service) ProcessChat(ctx context.Context, req openai.ChatCompletionRequest) (*openai.ChatCompletionResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log.Debug().Int("message_count", len(req.Messages)).Msg("Processing completion request")

	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("empty messages array")
	}

	if req.Model == "" {
		req.Model = config.GetOpenAIModel()
	}
	if len(req.Tools) == 0 {
		req.Tools = s.toolRegistry.OpenAITools()
	}

	// A caller-provided system message takes precedence over the default
	// prompt
	if req.Messages[0].Role != openai.ChatMessageRoleSystem {
		messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: s.systemPrompt.String(),
		})
		messages = append(messages, req.Messages...)
		req.Messages = messages
	}

	for {
		resp, err := s.client.CreateChatCompletion(ctx, req)
		if err != nil {
			log.Error().Err(err).Msg("Failed to get chat completion")
			return nil, fmt.Errorf("failed to get chat completion: %w", err)
		}

		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("no response choices returned")
		}

		message := resp.Choices[0].Message

		if len(message.ToolCalls) == 0 {
			return &resp, nil
		}

		req.Messages = append(req.Messages, message)

		for _, toolCall := range message.ToolCalls {
			log.Info().
				Str("tool", toolCall.Function.Name).
				Str("call_id", toolCall.ID).
				Msg("Resolving tool call in completion loop")

			result, err := s.toolExecutor.ExecuteToolCall(ctx, models.ToolCall{
				ID:        toolCall.ID,
				Name:      toolCall.Function.Name,
				Arguments: toolCall.Function.Arguments,
			})
			if err != nil {
				return nil, fmt.Errorf("tool call failed: %w", err)
			}

			req.Messages = append(req.Messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    result,
				ToolCallID: toolCall.ID,
			})
		}
	}
}
