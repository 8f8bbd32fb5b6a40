package chat

import (
	"context"

	"github.com/forgeline/devagent/internal/domain/chat/models"
)

// Service defines the interface for turn processing
type Service interface {
	// ProcessMessage runs one user turn and streams response chunks
	// until the turn completes or errors
	ProcessMessage(ctx context.Context, sessionID, message string) (<-chan models.ChatResponse, error)
}
