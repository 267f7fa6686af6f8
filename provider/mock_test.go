package provider

import (
	"context"
	"errors"
	"testing"
)

func TestMockProvider(t *testing.T) {
	p := NewMockProvider()

	out, err := p.Generate(context.Background(), Prompt{Directive: "d", Content: "Hello"})
	if err != nil || out != "Hola" {
		t.Errorf("Expected Hola, got %q (%v)", out, err)
	}

	out, _ = p.Generate(context.Background(), Prompt{Content: "Unknown"})
	if out != "[Unknown]" {
		t.Errorf("Expected bracketed fallback, got %q", out)
	}

	if p.Calls() != 2 || p.LastPrompt.Content != "Unknown" {
		t.Errorf("Unexpected call tracking: %d %+v", p.Calls(), p.LastPrompt)
	}

	p.Reset()
	if p.Calls() != 0 || p.LastPrompt != nil {
		t.Error("Reset should clear tracking")
	}
}

func TestMockProvider_Err(t *testing.T) {
	p := NewMockProvider()
	p.Err = errors.New("down")

	if _, err := p.Generate(context.Background(), Prompt{Content: "Hello"}); err == nil {
		t.Error("Expected configured error")
	}
}
