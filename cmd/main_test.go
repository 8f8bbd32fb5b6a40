package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/forgeline/devagent/internal/domain/chat/models"
	"github.com/forgeline/devagent/internal/services"
	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	t.Setenv("OPENAI_KEY", "")
	t.Setenv("REDIS_URL", "")

	svcs, err := services.InitializeServices()
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	server := httptest.NewServer(setupRouter(svcs))
	t.Cleanup(server.Close)
	return server
}

func TestServerRoutes(t *testing.T) {
	server := newTestServer(t)

	t.Run("create session and fetch empty history", func(t *testing.T) {
		resp, err := http.Post(server.URL+"/api/v1/sessions", "application/json", nil)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d", resp.StatusCode)
		}

		var created models.SessionResponse
		if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
			t.Fatalf("Failed to decode session response: %v", err)
		}
		if created.SessionID == "" {
			t.Fatal("Expected a session id")
		}

		histResp, err := http.Get(server.URL + "/api/v1/sessions/" + created.SessionID + "/history")
		if err != nil {
			t.Fatalf("Failed to fetch history: %v", err)
		}
		defer histResp.Body.Close()

		if histResp.StatusCode != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", histResp.StatusCode)
		}

		var history []models.Message
		if err := json.NewDecoder(histResp.Body).Decode(&history); err != nil {
			t.Fatalf("Failed to decode history: %v", err)
		}
		if len(history) != 0 {
			t.Errorf("Expected empty history for a fresh session, got %+v", history)
		}
	})

	t.Run("history for unknown session is 404", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/api/v1/sessions/no-such-session/history")
		if err != nil {
			t.Fatalf("Failed to fetch history: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", resp.StatusCode)
		}
	})

	t.Run("chat with unknown session is 404", func(t *testing.T) {
		body, _ := json.Marshal(models.ChatRequest{SessionID: "no-such-session", Message: "hi"})
		resp, err := http.Post(server.URL+"/api/v1/chat", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("Failed to post chat: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", resp.StatusCode)
		}
	})

	t.Run("chat without a message is rejected", func(t *testing.T) {
		body := []byte(`{"sessionId":"s1"}`)
		resp, err := http.Post(server.URL+"/api/v1/chat", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("Failed to post chat: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", resp.StatusCode)
		}
	})

	t.Run("unknown tool is 404", func(t *testing.T) {
		resp, err := http.Post(server.URL+"/api/v1/tools/no-such-tool", "application/json", strings.NewReader("{}"))
		if err != nil {
			t.Fatalf("Failed to post tool invocation: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", resp.StatusCode)
		}
	})

	t.Run("tool output websocket accepts connections", func(t *testing.T) {
		wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/ws/tool-output"
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("Failed to connect: %v", err)
		}
		conn.Close()
	})

	t.Run("completions endpoint is unavailable without OpenAI", func(t *testing.T) {
		body := []byte(`{"messages":[{"role":"user","content":"hi"}]}`)
		resp, err := http.Post(server.URL+"/api/v1/chat/completions", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("Failed to post completion: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", resp.StatusCode)
		}
	})
}
