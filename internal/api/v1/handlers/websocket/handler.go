package websocket

import (
	"net/http"
	"time"

	"github.com/forgeline/devagent/internal/connections"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: Implement proper origin checking based on configuration
		return true
	},
}

// HandleToolOutput subscribes the caller to live tool telemetry. The
// connection is read-only for the client; anything it sends is
// discarded. Observers are kept alive with pings and dropped on the
// first failed write.
func HandleToolOutput(connManager *connections.Manager, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to upgrade tool output connection")
		return
	}

	connManager.AddConnection(conn)
	defer func() {
		connManager.RemoveConnection(conn)
		conn.Close()
	}()

	timeouts := connManager.GetTimeouts()

	conn.SetReadDeadline(time.Now().Add(timeouts.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(timeouts.PongWait))
	})

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(timeouts.PingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				// WriteControl is safe alongside broadcast writes
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(timeouts.WriteWait)); err != nil {
					return
				}
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("Tool output observer closed unexpectedly")
			}
			return
		}
	}
}
