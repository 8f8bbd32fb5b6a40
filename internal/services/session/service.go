package session

import (
	"context"
	"sync"
	"time"

	domain "github.com/forgeline/devagent/internal/domain/chat"
	"github.com/forgeline/devagent/internal/domain/chat/models"
	"github.com/forgeline/devagent/internal/infrastructure/redis"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service owns the session registry. All message-log mutations flow
// through it; a turn takes the session's lock first so no two turns
// ever mutate the same session concurrently.
type Service struct {
	store Store
	locks sync.Map // session id -> *sync.Mutex
}

func NewService(redisService *redis.Service) *Service {
	var store Store
	if redisService != nil {
		if err := redisService.Ping(context.Background()); err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, keeping sessions in memory")
			store = NewMemoryStore()
		} else {
			store = &RedisStore{redisService: redisService}
		}
	} else {
		store = NewMemoryStore()
	}

	return &Service{store: store}
}

// NewServiceWithStore is used by tests and by callers that bring
// their own store
func NewServiceWithStore(store Store) *Service {
	return &Service{store: store}
}

// Create allocates a session seeded with the agent system message
func (s *Service) Create(ctx context.Context) (*models.SessionResponse, error) {
	sessionID := uuid.New().String()
	now := time.Now()

	sess := &Session{
		ID:        sessionID,
		CreatedAt: now,
		Messages: []models.Message{{
			Role:      models.RoleSystem,
			Content:   models.DefaultSystemPrompt().String(),
			Timestamp: now,
		}},
	}

	if err := s.store.Put(ctx, sess); err != nil {
		return nil, err
	}

	log.Info().Str("session_id", sessionID).Msg("Created new session")

	return &models.SessionResponse{
		SessionID: sessionID,
		CreatedAt: now,
	}, nil
}

// LockTurn serializes turns on one session. It returns the unlock
// function; other sessions proceed in parallel.
func (s *Service) LockTurn(sessionID string) func() {
	muIface, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := muIface.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *Service) get(ctx context.Context, sessionID string) (*Session, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

// Exists reports whether the session id is known, without mutating
// anything
func (s *Service) Exists(ctx context.Context, sessionID string) error {
	_, err := s.get(ctx, sessionID)
	return err
}

// History returns all non-system messages in conversational order
func (s *Service) History(ctx context.Context, sessionID string) ([]models.Message, error) {
	sess, err := s.get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	history := make([]models.Message, 0, len(sess.Messages))
	for _, msg := range sess.Messages {
		if msg.Role == models.RoleSystem {
			continue
		}
		history = append(history, msg)
	}
	return history, nil
}

// Snapshot returns a deep copy of the full message log, safe to hand
// to the model transport while the session keeps mutating
func (s *Service) Snapshot(ctx context.Context, sessionID string) ([]models.Message, error) {
	sess, err := s.get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return copyMessages(sess.Messages), nil
}

// Delete removes the session and its turn lock. Unknown ids fail with
// ErrSessionNotFound.
func (s *Service) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.get(ctx, sessionID); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.locks.Delete(sessionID)

	log.Info().Str("session_id", sessionID).Msg("Deleted session")
	return nil
}

// AppendUserMessage appends a user message with the current timestamp
func (s *Service) AppendUserMessage(ctx context.Context, sessionID, text string) error {
	sess, err := s.get(ctx, sessionID)
	if err != nil {
		return err
	}

	sess.Messages = append(sess.Messages, models.Message{
		Role:      models.RoleUser,
		Content:   text,
		Timestamp: time.Now(),
	})
	return s.store.Put(ctx, sess)
}

// EnsureSystemMessage injects a fallback system message at the head of
// the log if the session somehow lacks one
func (s *Service) EnsureSystemMessage(ctx context.Context, sessionID string) error {
	sess, err := s.get(ctx, sessionID)
	if err != nil {
		return err
	}

	for _, msg := range sess.Messages {
		if msg.Role == models.RoleSystem {
			return nil
		}
	}

	log.Info().Str("session_id", sessionID).Msg("No system message found, injecting fallback")

	sess.Messages = append([]models.Message{{
		Role:      models.RoleSystem,
		Content:   models.FallbackSystemPrompt(),
		Timestamp: time.Now(),
	}}, sess.Messages...)
	return s.store.Put(ctx, sess)
}

// AppendAssistantDelta extends the open assistant message at the tail
// of the log, opening one first if needed. At most one assistant
// message accumulates deltas at a time.
func (s *Service) AppendAssistantDelta(ctx context.Context, sessionID, delta string) error {
	sess, err := s.get(ctx, sessionID)
	if err != nil {
		return err
	}

	n := len(sess.Messages)
	if n > 0 && sess.Messages[n-1].Role == models.RoleAssistant && sess.Messages[n-1].ToolCall == nil {
		sess.Messages[n-1].Content += delta
	} else {
		sess.Messages = append(sess.Messages, models.Message{
			Role:      models.RoleAssistant,
			Content:   delta,
			Timestamp: time.Now(),
		})
	}
	return s.store.Put(ctx, sess)
}

// RecordToolCall appends an assistant tool-call message
func (s *Service) RecordToolCall(ctx context.Context, sessionID string, call models.ToolCall) error {
	sess, err := s.get(ctx, sessionID)
	if err != nil {
		return err
	}

	c := call
	sess.Messages = append(sess.Messages, models.Message{
		Role:       models.RoleAssistant,
		ToolCallID: call.ID,
		ToolCall:   &c,
		Timestamp:  time.Now(),
	})

	log.Info().
		Str("session_id", sessionID).
		Str("tool", call.Name).
		Str("call_id", call.ID).
		Msg("Recorded tool call")

	return s.store.Put(ctx, sess)
}

// RecordToolResult appends a tool-role message referencing a prior
// tool call. Fails with ErrToolCallNotFound when no assistant message
// carries the call id.
func (s *Service) RecordToolResult(ctx context.Context, sessionID, callID, content string) error {
	sess, err := s.get(ctx, sessionID)
	if err != nil {
		return err
	}

	found := false
	for _, msg := range sess.Messages {
		if msg.Role == models.RoleAssistant && msg.ToolCall != nil && msg.ToolCall.ID == callID {
			found = true
			break
		}
	}
	if !found {
		return domain.ErrToolCallNotFound
	}

	sess.Messages = append(sess.Messages, models.Message{
		Role:       models.RoleTool,
		ToolCallID: callID,
		Content:    content,
		Timestamp:  time.Now(),
	})
	return s.store.Put(ctx, sess)
}
