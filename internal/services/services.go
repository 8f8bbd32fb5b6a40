package services

import (
	"fmt"
	"sync"

	"github.com/forgeline/devagent/internal/connections"
	"github.com/forgeline/devagent/internal/infrastructure/anthropic"
	"github.com/forgeline/devagent/internal/infrastructure/openai"
	"github.com/forgeline/devagent/internal/infrastructure/redis"
	"github.com/forgeline/devagent/internal/services/chat"
	"github.com/forgeline/devagent/internal/services/completion"
	"github.com/forgeline/devagent/internal/services/session"
	"github.com/forgeline/devagent/internal/services/tools"
	"github.com/rs/zerolog/log"
)

var (
	// Mutex for thread-safe initialization
	servicesMu sync.RWMutex
)

type Services struct {
	anthropicService  *anthropic.Service
	chatService       *chat.Implementation
	completionService *completion.Service
	connManager       *connections.Manager
	openAIService     *openai.Service
	redisService      *redis.Service
	sessionService    *session.Service
	toolService       *tools.Service
}

// InitializeServices initializes all required services
func InitializeServices() (*Services, error) {
	servicesMu.Lock()
	defer servicesMu.Unlock()

	log.Info().Msg("Initializing core services")

	// Initialize Redis service (optional)
	redisService := redis.NewService()
	log.Info().Msg("Initializing Redis service")

	toolService := tools.NewService()
	log.Info().Msg("Initializing tool service")

	// Initialize session service with optional Redis
	sessionService := session.NewService(redisService)
	log.Info().Msg("Initializing session service")

	connManager := connections.NewManager(connections.DefaultTimeouts)
	log.Info().Msg("Initializing connection manager")

	// Initialize Anthropic service (required)
	anthropicService := anthropic.NewService()
	if anthropicService == nil {
		log.Error().Msg("Failed to initialize Anthropic service - service is required for core functionality")
		return nil, fmt.Errorf("anthropic service is required")
	}

	// Initialize chat service (required)
	chatService, err := chat.NewService(anthropicService, sessionService, toolService, connManager)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize chat service - required for message processing")
		return nil, fmt.Errorf("failed to initialize chat service: %w", err)
	}
	log.Info().Msg("Initializing chat service")

	// Initialize OpenAI-backed completion service (optional)
	var completionService *completion.Service
	openAIService := openai.NewService()
	if openAIService != nil {
		completionService, err = completion.NewService(openAIService, toolService)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize completion service")
			return nil, fmt.Errorf("failed to initialize completion service: %w", err)
		}
	} else {
		log.Warn().Msg("Completion endpoint disabled - OpenAI service not configured")
	}

	log.Info().Msg("All services initialized successfully")

	return &Services{
		anthropicService:  anthropicService,
		chatService:       chatService,
		completionService: completionService,
		connManager:       connManager,
		openAIService:     openAIService,
		redisService:      redisService,
		sessionService:    sessionService,
		toolService:       toolService,
	}, nil
}

// GetChatService returns the chat service
func (s *Services) GetChatService() *chat.Implementation {
	return s.chatService
}

// GetCompletionService returns the completion service, nil when OpenAI
// is not configured
func (s *Services) GetCompletionService() *completion.Service {
	return s.completionService
}

// GetConnectionManager returns the websocket connection manager
func (s *Services) GetConnectionManager() *connections.Manager {
	return s.connManager
}

// GetSessionService returns the session service
func (s *Services) GetSessionService() *session.Service {
	return s.sessionService
}

// GetToolService returns the tool service
func (s *Services) GetToolService() *tools.Service {
	return s.toolService
}
