package openai

import (
	"sync"

	"github.com/forgeline/devagent/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

type Service struct {
	mu     sync.RWMutex
	client *openai.Client
}

func NewService() *Service {
	key := config.GetOpenAIKey()

	if key == "" {
		log.Warn().Msg("OpenAI service not configured - OPENAI_KEY missing")
		return nil
	}

	return &Service{
		mu:     sync.RWMutex{},
		client: openai.NewClient(key),
	}
}

// NewServiceWithBaseURL builds a service against an explicit endpoint,
// used by tests to point the client at a local server.
func NewServiceWithBaseURL(key, baseURL string) *Service {
	cfg := openai.DefaultConfig(key)
	cfg.BaseURL = baseURL

	return &Service{
		client: openai.NewClientWithConfig(cfg),
	}
}

func (s *Service) GetClient() *openai.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}
