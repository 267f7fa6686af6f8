package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ZaguanLabs/doclai"
	"github.com/sashabaranov/go-openai"
)

// chatServer answers chat completions with a fixed reply or status code.
func chatServer(t *testing.T, status int, reply string, got *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got != nil {
			if err := json.NewDecoder(r.Body).Decode(got); err != nil {
				t.Errorf("Bad request body: %v", err)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error": {"message": "boom", "type": "server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIProvider_Generate(t *testing.T) {
	var req openai.ChatCompletionRequest
	srv := chatServer(t, http.StatusOK, "Hola", &req)

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1"})

	out, err := p.Generate(context.Background(), Prompt{Directive: "Translate into Spanish", Content: "Hello"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if out != "Hola" {
		t.Errorf("Expected Hola, got %q", out)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != openai.ChatMessageRoleSystem || req.Messages[1].Content != "Hello" {
		t.Errorf("Expected system directive and user content, got %+v", req.Messages)
	}
	if req.Model != "gpt-4o-mini" {
		t.Errorf("Expected default model, got %q", req.Model)
	}
}

func TestOpenAIProvider_NoDirective(t *testing.T) {
	var req openai.ChatCompletionRequest
	srv := chatServer(t, http.StatusOK, "ok", &req)

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1"})
	if _, err := p.Generate(context.Background(), Prompt{Content: "Hello"}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(req.Messages) != 1 {
		t.Errorf("Expected only the user message, got %d", len(req.Messages))
	}
}

func TestOpenAIProvider_ServerErrorIsRetryable(t *testing.T) {
	srv := chatServer(t, http.StatusServiceUnavailable, "", nil)

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1"})
	_, err := p.Generate(context.Background(), Prompt{Content: "Hello"})

	var provErr *doclai.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("Expected ProviderError, got %v", err)
	}
	if !provErr.Retryable {
		t.Error("503 should be retryable")
	}
}

func TestOpenAIProvider_AuthErrorIsNotRetryable(t *testing.T) {
	srv := chatServer(t, http.StatusUnauthorized, "", nil)

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "bad", BaseURL: srv.URL + "/v1"})
	_, err := p.Generate(context.Background(), Prompt{Content: "Hello"})

	if doclai.IsRetryable(err) {
		t.Errorf("401 should not be retried, got %v", err)
	}
}

func TestOllamaProvider_Defaults(t *testing.T) {
	var req openai.ChatCompletionRequest
	srv := chatServer(t, http.StatusOK, "Bonjour", &req)

	p := NewOllamaProvider(OllamaConfig{BaseURL: srv.URL})
	out, err := p.Generate(context.Background(), Prompt{Content: "Hello"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if out != "Bonjour" || req.Model != "llama3.2" || p.Model() != "llama3.2" {
		t.Errorf("Unexpected reply %q or model %q", out, req.Model)
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"429 Too Many Requests", true},
		{"dial tcp: connection refused", true},
		{"context deadline: timeout", true},
		{"invalid api key", false},
	}

	for _, tt := range tests {
		if got := isRetryableError(errors.New(tt.msg)); got != tt.want {
			t.Errorf("isRetryableError(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
}
