package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/forgeline/devagent/internal/config"
	"github.com/forgeline/devagent/internal/domain/chat"
	"github.com/rs/zerolog/log"
)

const (
	messagesURL = "https://api.anthropic.com/v1/messages"
	apiVersion  = "2023-06-01"
)

type Service struct {
	mu      sync.RWMutex
	client  *http.Client
	apiKey  string
	baseURL string
}

func NewService() *Service {
	key := config.GetAnthropicAPIKey()
	if key == "" {
		return nil
	}

	return &Service{
		mu:      sync.RWMutex{},
		client:  &http.Client{},
		apiKey:  key,
		baseURL: messagesURL,
	}
}

// NewServiceWithBaseURL is used by tests to point the client at a
// local server
func NewServiceWithBaseURL(apiKey, baseURL string) *Service {
	return &Service{
		client:  &http.Client{},
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

// Request is the provider message request payload
type Request struct {
	Model       string           `json:"model"`
	Messages    []RequestMessage `json:"messages"`
	System      string           `json:"system,omitempty"`
	Temperature float64          `json:"temperature,omitempty"`
	MaxTokens   int              `json:"max_tokens"`
	Stream      bool             `json:"stream,omitempty"`
	Tools       []ToolDefinition `json:"tools,omitempty"`
}

// RequestMessage carries one conversation message. The messages array
// only accepts user and assistant roles; system is a top-level field.
type RequestMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToolDefinition is the provider's tool-declaration shape
type ToolDefinition struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"input_schema"`
}

type InputSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]PropertySchema `json:"properties"`
	Required   []string                  `json:"required"`
}

type PropertySchema struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Enum        []string `json:"enum,omitempty"`
}

// Response is the non-streaming message response
type Response struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Content    []ContentBlock `json:"content"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
}

type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (s *Service) do(ctx context.Context, req *Request, accept string) (*http.Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("x-api-key", s.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", accept)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, &chat.TransportError{Body: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		log.Error().
			Int("status", resp.StatusCode).
			Str("body", string(body)).
			Msg("Claude API returned an error response")
		return nil, &chat.TransportError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return resp, nil
}

// Stream opens a streaming message request and returns the raw body.
// The caller owns closing it. Non-2xx responses surface as a single
// TransportError carrying the full body.
func (s *Service) Stream(ctx context.Context, req *Request) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req.Stream = true

	log.Info().
		Int("message_count", len(req.Messages)).
		Int("tool_count", len(req.Tools)).
		Str("model", req.Model).
		Msg("Opening Claude streaming request")

	resp, err := s.do(ctx, req, "text/event-stream")
	if err != nil {
		return nil, err
	}

	return resp.Body, nil
}

// Generate performs a non-streaming message request and returns the
// first content block's text
func (s *Service) Generate(ctx context.Context, req *Request) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req.Stream = false

	resp, err := s.do(ctx, req, "application/json")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var parsed Response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to parse Claude response: %w", err)
	}

	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("empty content in Claude response")
	}

	return parsed.Content[0].Text, nil
}
