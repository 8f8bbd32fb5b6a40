package connections

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/forgeline/devagent/internal/domain/chat/models"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// TimeoutConfig holds the various timeout settings for WebSocket connections
type TimeoutConfig struct {
	PongWait   time.Duration
	PingPeriod time.Duration
	WriteWait  time.Duration
}

// DefaultTimeouts provides sensible default timeout values
var DefaultTimeouts = TimeoutConfig{
	PongWait:   30 * time.Second,
	PingPeriod: 27 * time.Second, // (PongWait * 9) / 10
	WriteWait:  10 * time.Second,
}

// Manager owns the set of observer connections subscribed to tool
// telemetry. Delivery is best-effort: a failed write drops that
// observer, never the turn.
type Manager struct {
	connections sync.Map
	writeMu     sync.Map // per-connection write lock
	timeouts    TimeoutConfig
}

// NewManager creates a new connection manager with the specified timeouts
func NewManager(timeouts TimeoutConfig) *Manager {
	return &Manager{
		timeouts: timeouts,
	}
}

// AddConnection registers a new WebSocket connection
func (m *Manager) AddConnection(conn *websocket.Conn) {
	m.connections.Store(conn, struct{}{})
	m.writeMu.Store(conn, &sync.Mutex{})
	log.Info().Int("observers", m.GetConnectionCount()).Msg("Tool output observer connected")
}

// RemoveConnection removes a WebSocket connection
func (m *Manager) RemoveConnection(conn *websocket.Conn) {
	m.connections.Delete(conn)
	m.writeMu.Delete(conn)
}

// GetConnectionCount returns the current number of active connections
func (m *Manager) GetConnectionCount() int {
	count := 0
	m.connections.Range(func(key, value interface{}) bool {
		count++
		return true
	})
	return count
}

// HasConnection checks if a specific connection exists
func (m *Manager) HasConnection(conn *websocket.Conn) bool {
	_, exists := m.connections.Load(conn)
	return exists
}

// GetTimeouts returns the current timeout configuration
func (m *Manager) GetTimeouts() TimeoutConfig {
	return m.timeouts
}

// BroadcastToolOutput sends a tool telemetry event to every observer
func (m *Manager) BroadcastToolOutput(event models.ToolOutputEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to serialize tool output event")
		return
	}

	m.connections.Range(func(key, value interface{}) bool {
		conn := key.(*websocket.Conn)

		muIface, exists := m.writeMu.Load(conn)
		if !exists {
			return true
		}
		mu := muIface.(*sync.Mutex)

		mu.Lock()
		conn.SetWriteDeadline(time.Now().Add(m.timeouts.WriteWait))
		err := conn.WriteMessage(websocket.TextMessage, payload)
		mu.Unlock()

		if err != nil {
			log.Warn().Err(err).Msg("Dropping tool output observer after failed write")
			m.RemoveConnection(conn)
			conn.Close()
		}
		return true
	})
}
