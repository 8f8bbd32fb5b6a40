package anthropic

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/forgeline/devagent/internal/domain/chat"
)

func TestService(t *testing.T) {
	t.Run("stream returns body on success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("x-api-key") != "test-key" {
				t.Errorf("Expected x-api-key header to be set")
			}
			if r.Header.Get("anthropic-version") == "" {
				t.Errorf("Expected anthropic-version header to be set")
			}
			w.Write([]byte("data: {\"type\":\"message_stop\"}\n"))
		}))
		defer server.Close()

		svc := NewServiceWithBaseURL("test-key", server.URL)
		body, err := svc.Stream(context.Background(), &Request{Model: "claude-test", MaxTokens: 100})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		defer body.Close()

		data, _ := io.ReadAll(body)
		if len(data) == 0 {
			t.Error("Expected stream body to be readable")
		}
	})

	t.Run("stream returns transport error on non-2xx", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"bad"}}`))
		}))
		defer server.Close()

		svc := NewServiceWithBaseURL("test-key", server.URL)
		_, err := svc.Stream(context.Background(), &Request{Model: "claude-test", MaxTokens: 100})
		if err == nil {
			t.Fatal("Expected an error")
		}

		var te *chat.TransportError
		if !errors.As(err, &te) {
			t.Fatalf("Expected TransportError, got %T", err)
		}
		if te.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", te.StatusCode)
		}
		if te.Body == "" {
			t.Error("Expected error body to carry the response body")
		}
	})

	t.Run("generate returns first content block text", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","content":[{"type":"text","text":"hi there"}]}`))
		}))
		defer server.Close()

		svc := NewServiceWithBaseURL("test-key", server.URL)
		text, err := svc.Generate(context.Background(), &Request{Model: "claude-test", MaxTokens: 100})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if text != "hi there" {
			t.Errorf("Expected %q, got %q", "hi there", text)
		}
	})
}
