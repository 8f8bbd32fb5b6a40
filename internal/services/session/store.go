package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/forgeline/devagent/internal/domain/chat/models"
	"github.com/forgeline/devagent/internal/infrastructure/redis"
)

const sessionKeyPrefix = "session:"

// Sessions are garbage-collected by the store backend; in-memory
// sessions live for the process lifetime.
const sessionLifetime = 24 * time.Hour

// Session owns the ordered message log for one conversation.
// Insertion order is conversational order and is never reordered.
type Session struct {
	ID        string           `json:"id"`
	Messages  []models.Message `json:"messages"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Clone returns a deep copy of the session and its message log
func (s *Session) Clone() *Session {
	return &Session{
		ID:        s.ID,
		Messages:  copyMessages(s.Messages),
		CreatedAt: s.CreatedAt,
	}
}

func copyMessages(in []models.Message) []models.Message {
	out := make([]models.Message, len(in))
	for i, msg := range in {
		out[i] = msg
		if msg.ToolCall != nil {
			tc := *msg.ToolCall
			out[i].ToolCall = &tc
		}
	}
	return out
}

// Store is the session registry. Get returns (nil, nil) for an
// unknown id.
type Store interface {
	Get(ctx context.Context, sessionID string) (*Session, error)
	Put(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStore keeps sessions in a process-local map. Stored sessions
// are deep-copied on the way in and out so an in-flight turn can never
// alias a reader's view of the log.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

func (ms *MemoryStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	sess, exists := ms.sessions[sessionID]
	if !exists {
		return nil, nil
	}
	return sess.Clone(), nil
}

func (ms *MemoryStore) Put(ctx context.Context, sess *Session) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.sessions[sess.ID] = sess.Clone()
	return nil
}

func (ms *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.sessions, sessionID)
	return nil
}

// RedisStore persists sessions as JSON, making the registry survivable
// across restarts without touching turn logic
type RedisStore struct {
	redisService *redis.Service
}

func (rs *RedisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, err := rs.redisService.Get(ctx, sessionKeyPrefix+sessionID)
	if err != nil {
		if redis.IsNil(err) {
			return nil, nil
		}
		return nil, err
	}
	if data == "" {
		return nil, nil
	}

	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (rs *RedisStore) Put(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return rs.redisService.Set(ctx, sessionKeyPrefix+sess.ID, string(data), sessionLifetime)
}

func (rs *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return rs.redisService.Delete(ctx, sessionKeyPrefix+sessionID)
}
