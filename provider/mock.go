package provider

import (
	"context"
	"sync"
)

// MockProvider is a mock generator for testing and dry runs.
type MockProvider struct {
	mu           sync.Mutex
	Translations map[string]string // Map of content to reply
	Err          error             // Returned by every call when set
	CallCount    int               // Number of times Generate was called
	LastPrompt   *Prompt           // Last prompt received
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello":                "Hola",
			"World":                "Mundo",
			"Hello World":          "Hola Mundo",
			"<p>Hello</p>":         "<p>Hola</p>",
			"<p>World</p>":         "<p>Mundo</p>",
			"Welcome to our site.": "Bienvenido a nuestro sitio.",
		},
	}
}

// Generate returns the mapped reply, or the content in brackets.
func (m *MockProvider) Generate(ctx context.Context, prompt Prompt) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.LastPrompt = &prompt

	if m.Err != nil {
		return "", m.Err
	}
	if translation, ok := m.Translations[prompt.Content]; ok {
		return translation, nil
	}
	return "[" + prompt.Content + "]", nil
}

// Calls returns the number of Generate calls so far.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}

// Reset resets the call count and last prompt.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount = 0
	m.LastPrompt = nil
}

// Verify MockProvider implements Generator
var _ Generator = (*MockProvider)(nil)
