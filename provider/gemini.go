package provider

import (
	"context"
	"strings"

	"github.com/ZaguanLabs/doclai"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// contentGenerator is the part of *genai.GenerativeModel the provider uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiProvider implements Generator with single-shot Gemini generation.
// The directive and content are sent as one text prompt.
type GeminiProvider struct {
	client *genai.Client
	model  contentGenerator
}

// GeminiConfig holds configuration for the Gemini provider.
type GeminiConfig struct {
	APIKey      string  // Google AI API key
	Model       string  // Model to use (default: "gemini-1.5-flash")
	Temperature float32 // Temperature for generation (default: 0.1)
}

// NewGeminiProvider creates a new Gemini provider. Call Close when done.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey), option.WithUserAgent(doclai.UserAgent()))
	if err != nil {
		return nil, &doclai.ProviderError{Message: "failed to create Gemini client", Cause: err}
	}

	name := cfg.Model
	if name == "" {
		name = "gemini-1.5-flash"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.1
	}

	model := client.GenerativeModel(name)
	model.SetTemperature(temperature)

	return &GeminiProvider{client: client, model: model}, nil
}

// Generate sends the prompt as a single text part and joins the text parts
// of the first candidate.
func (p *GeminiProvider) Generate(ctx context.Context, prompt Prompt) (string, error) {
	resp, err := p.model.GenerateContent(ctx, genai.Text(prompt.String()))
	if err != nil {
		return "", &doclai.ProviderError{
			Message:   "Gemini API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &doclai.ProviderError{
			Message:   "no candidates in Gemini response",
			Retryable: true,
		}
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}

// Close releases the underlying client.
func (p *GeminiProvider) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

// Verify GeminiProvider implements Generator
var _ Generator = (*GeminiProvider)(nil)
