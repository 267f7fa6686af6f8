package doclai

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ZaguanLabs/doclai/logger"
)

// stubGenerator answers from a table, a function or a fixed reply, and can
// fail its first calls.
type stubGenerator struct {
	mu      sync.Mutex
	reply   string
	replies map[string]string
	fn      func(content string) string
	errs    []error
	delay   time.Duration
	prompts []Prompt
}

func (s *stubGenerator) Generate(ctx context.Context, prompt Prompt) (string, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.prompts = append(s.prompts, prompt)
	n := len(s.prompts)
	if n <= len(s.errs) && s.errs[n-1] != nil {
		return "", s.errs[n-1]
	}

	if r, ok := s.replies[prompt.Content]; ok {
		return r, nil
	}
	if s.fn != nil {
		return s.fn(prompt.Content), nil
	}
	return s.reply, nil
}

func (s *stubGenerator) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

func (s *stubGenerator) contents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.prompts))
	for i, p := range s.prompts {
		out[i] = p.Content
	}
	return out
}

type mapCache struct {
	data map[string]string
}

func (c *mapCache) Get(key string) (string, bool) {
	v, ok := c.data[key]
	return v, ok
}

func (c *mapCache) Set(key, value string) error {
	c.data[key] = value
	return nil
}

func fastClient(g Generator, opts ...ClientOption) *Client {
	opts = append([]ClientOption{WithRetryConfig(RetryConfig{MaxAttempts: 2, Delay: time.Millisecond})}, opts...)
	return NewClient(g, opts...)
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(nil) })
	return &buf
}

func TestClient_Translate(t *testing.T) {
	g := &stubGenerator{replies: map[string]string{"Hello": "Привіт"}}
	c := fastClient(g)

	out := c.Translate(context.Background(), TranslationRequest{
		Text: "Hello", DocumentType: TypeXML, TargetLanguage: "Ukrainian",
	})

	if out.Kind != Translated || out.Text != "Привіт" {
		t.Fatalf("Expected Translated Привіт, got %v %q", out.Kind, out.Text)
	}
	if out.Attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", out.Attempts)
	}
	if !strings.Contains(g.prompts[0].Directive, "Ukrainian") {
		t.Error("Directive should name the target language")
	}
}

func TestClient_RetryThenSuccess(t *testing.T) {
	buf := captureLog(t)
	g := &stubGenerator{reply: "Hola", errs: []error{errors.New("connection reset")}}

	out := fastClient(g).Translate(context.Background(), TranslationRequest{Text: "Hello", TargetLanguage: "Spanish"})

	if out.Kind != Translated || out.Text != "Hola" {
		t.Fatalf("Expected Translated Hola, got %v %q", out.Kind, out.Text)
	}
	if g.calls() != 2 {
		t.Errorf("Expected 2 calls, got %d", g.calls())
	}
	if !strings.Contains(buf.String(), "[WARN]") {
		t.Error("First failure should be logged as a warning")
	}
}

func TestClient_TwoFailuresFallback(t *testing.T) {
	captureLog(t)
	boom := errors.New("timeout")
	g := &stubGenerator{errs: []error{boom, boom, boom}}

	out := fastClient(g).Translate(context.Background(), TranslationRequest{Text: "Hello", TargetLanguage: "French"})

	if out.Kind != Fallback || out.Text != "Hello" {
		t.Fatalf("Expected Fallback with source text, got %v %q", out.Kind, out.Text)
	}
	if !errors.Is(out.Reason, boom) {
		t.Errorf("Expected reason %v, got %v", boom, out.Reason)
	}
	if g.calls() != 2 {
		t.Errorf("Expected exactly 2 calls, got %d", g.calls())
	}
}

func TestClient_NonTransientStops(t *testing.T) {
	captureLog(t)
	g := &stubGenerator{errs: []error{&ProviderError{Message: "invalid key"}}}

	out := fastClient(g).Translate(context.Background(), TranslationRequest{Text: "Hello", TargetLanguage: "French"})

	if out.Kind != Fallback {
		t.Fatalf("Expected Fallback, got %v", out.Kind)
	}
	if g.calls() != 1 {
		t.Errorf("Expected 1 call, got %d", g.calls())
	}
}

func TestClient_EmptyResultKeepsSource(t *testing.T) {
	buf := captureLog(t)
	g := &stubGenerator{reply: "   \n"}

	out := fastClient(g).Translate(context.Background(), TranslationRequest{Text: "Hello", TargetLanguage: "French"})

	if out.Kind != Fallback || out.Text != "Hello" {
		t.Fatalf("Expected Fallback with source text, got %v %q", out.Kind, out.Text)
	}
	if !errors.Is(out.Reason, ErrEmptyResult) {
		t.Errorf("Expected ErrEmptyResult, got %v", out.Reason)
	}
	if !strings.Contains(buf.String(), "Empty translation received") {
		t.Errorf("Expected empty-result warning, got %q", buf.String())
	}
}

func TestClient_WhitespaceSourceNotSent(t *testing.T) {
	g := &stubGenerator{reply: "x"}

	out := fastClient(g).Translate(context.Background(), TranslationRequest{Text: " \n\t", TargetLanguage: "French"})

	if out.Kind != Fallback {
		t.Errorf("Expected Fallback, got %v", out.Kind)
	}
	if g.calls() != 0 {
		t.Errorf("Whitespace-only text should not be sent, got %d calls", g.calls())
	}
}

func TestClient_StripsBoilerplate(t *testing.T) {
	g := &stubGenerator{reply: "Here is the translation: Bonjour"}

	out := fastClient(g).Translate(context.Background(), TranslationRequest{Text: "Hello", TargetLanguage: "French"})

	if out.Text != "Bonjour" {
		t.Errorf("Expected Bonjour, got %q", out.Text)
	}
}

func TestClient_RefusalFallsBack(t *testing.T) {
	captureLog(t)
	g := &stubGenerator{reply: "As an AI language model, I cannot translate this."}

	out := fastClient(g).Translate(context.Background(), TranslationRequest{Text: "Hello", TargetLanguage: "French"})

	if out.Kind != Fallback || !errors.Is(out.Reason, ErrRefusal) {
		t.Errorf("Expected refusal fallback, got %v %v", out.Kind, out.Reason)
	}
}

func TestClient_ValidationDisabled(t *testing.T) {
	g := &stubGenerator{reply: "I cannot wait to see you"}

	out := fastClient(g, WithResponseValidation(false)).Translate(context.Background(), TranslationRequest{Text: "x", TargetLanguage: "English"})

	if out.Kind != Translated || out.Text != "I cannot wait to see you" {
		t.Errorf("Expected raw response, got %v %q", out.Kind, out.Text)
	}
}

func TestClient_Cache(t *testing.T) {
	cache := &mapCache{data: map[string]string{}}
	g := &stubGenerator{reply: "Hola"}
	c := fastClient(g, WithCache(cache))
	req := TranslationRequest{Text: "Hello", DocumentType: TypeHTML, TargetLanguage: "Spanish"}

	first := c.Translate(context.Background(), req)
	second := c.Translate(context.Background(), req)

	if first.Cached || !second.Cached {
		t.Errorf("Expected miss then hit, got %v then %v", first.Cached, second.Cached)
	}
	if second.Text != "Hola" {
		t.Errorf("Expected cached Hola, got %q", second.Text)
	}
	if g.calls() != 1 {
		t.Errorf("Expected 1 generator call, got %d", g.calls())
	}
}

func TestClient_FallbackNotCached(t *testing.T) {
	captureLog(t)
	cache := &mapCache{data: map[string]string{}}
	g := &stubGenerator{reply: ""}

	fastClient(g, WithCache(cache)).Translate(context.Background(), TranslationRequest{Text: "Hello", TargetLanguage: "Spanish"})

	if len(cache.data) != 0 {
		t.Errorf("Fallbacks must not be cached, got %v", cache.data)
	}
}

func TestClient_EnglishTranslationWithIndicatorsKept(t *testing.T) {
	captureLog(t)
	reply := "I can't swim, sorry, but I apologize."
	g := &stubGenerator{reply: reply}

	out := fastClient(g).Translate(context.Background(), TranslationRequest{
		Text:           "Je ne sais pas nager, désolé, mais je m'excuse.",
		TargetLanguage: "English",
	})

	if out.Kind != Translated || out.Text != reply {
		t.Errorf("Expected the reply as a translation, got %v %q", out.Kind, out.Text)
	}
}

func TestClient_LegitimatePrefixNotStripped(t *testing.T) {
	g := &stubGenerator{reply: "Here is the list of topics."}

	out := fastClient(g).Translate(context.Background(), TranslationRequest{Text: "Voici la liste des sujets.", TargetLanguage: "English"})

	if out.Text != "Here is the list of topics." {
		t.Errorf("Sentence should be kept whole, got %q", out.Text)
	}
}

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		in      string
		want    string
		refusal bool
	}{
		{"plain", "Hello", "Bonjour", "Bonjour", false},
		{"trimmed", "Hello", "  Bonjour \n", "Bonjour", false},
		{"translation colon", "Hello", "Translation: Hola", "Hola", false},
		{"case insensitive", "Hello", "HERE IS THE TRANSLATION:\nHola", "Hola", false},
		{"prefix then newline", "Hello", "Here is the translation\nHola", "Hola", false},
		{"prefix inside sentence", "Voici", "Here is the list of topics.", "Here is the list of topics.", false},
		{"russian prefix", "Hello", "Перевод: Привет", "Привет", false},
		{"refusal", "Hello", "I'm unable to help with that", "", true},
		{"russian refusal", "Hello", "Извините, но я не могу это перевести", "", true},
		{"apology without task", "Désolé", "I apologize for the delay.", "I apologize for the delay.", false},
		{"indicator mid sentence", "Je ne peux pas", "Sadly I can't come.", "Sadly I can't come.", false},
		{"indicator in source", "I cannot wait", "I cannot wait", "I cannot wait", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cleanResponse(tt.source, tt.in)
			if tt.refusal {
				if !errors.Is(err, ErrRefusal) {
					t.Errorf("Expected ErrRefusal, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("cleanResponse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
