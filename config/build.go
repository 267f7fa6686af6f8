package config

import (
	"context"

	"github.com/ZaguanLabs/doclai"
	"github.com/ZaguanLabs/doclai/cache"
	"github.com/ZaguanLabs/doclai/logger"
	"github.com/ZaguanLabs/doclai/processor"
	"github.com/ZaguanLabs/doclai/provider"
)

// Session bundles what one run needs and releases it on Close.
type Session struct {
	Config    *Config
	Generator doclai.Generator
	Cache     cache.Cache // nil when caching is off
	Client    *doclai.Client
	closers   []func() error
}

// Open validates the configuration and builds the generator, cache and client.
func (c *Config) Open(ctx context.Context) (*Session, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	s := &Session{Config: c}

	gen, closeGen, err := c.NewGenerator(ctx)
	if err != nil {
		return nil, err
	}
	s.Generator = gen
	if closeGen != nil {
		s.closers = append(s.closers, closeGen)
	}

	tc, err := cache.Open(ctx, cache.Config{
		Type:     c.Cache.Type,
		TTL:      c.Cache.TTL.Std(),
		RedisURL: c.Cache.RedisURL,
		File:     c.Cache.File,
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	if tc != nil {
		s.Cache = tc
		s.closers = append(s.closers, tc.Close)
	}

	s.Client = c.NewClient(s.Generator, s.Cache)
	return s, nil
}

// Translator builds a document translator for the session's client.
func (s *Session) Translator(opts ...doclai.TranslatorOption) *doclai.Translator {
	return s.Config.NewTranslator(s.Client, opts...)
}

// Close releases the generator and cache, returning the first error.
func (s *Session) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}

// NewGenerator builds the configured backend, rate limited when
// requests_per_minute is set. The returned close function may be nil.
func (c *Config) NewGenerator(ctx context.Context) (doclai.Generator, func() error, error) {
	var (
		gen     doclai.Generator
		closeFn func() error
	)

	switch c.Provider {
	case provider.NameOpenAI:
		gen = provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey:      c.APIKey,
			Model:       c.Model,
			Temperature: c.Temperature,
			BaseURL:     c.BaseURL,
		})
	case provider.NameOllama:
		gen = provider.NewOllamaProvider(provider.OllamaConfig{
			BaseURL:     c.BaseURL,
			Model:       c.Model,
			Temperature: c.Temperature,
		})
	case provider.NameGemini:
		g, err := provider.NewGeminiProvider(ctx, provider.GeminiConfig{
			APIKey:      c.APIKey,
			Model:       c.Model,
			Temperature: c.Temperature,
		})
		if err != nil {
			return nil, nil, err
		}
		gen, closeFn = g, g.Close
	case provider.NameLambda:
		g, err := provider.NewLambdaProvider(ctx, provider.LambdaConfig{
			FunctionName: c.LambdaFunction,
			Region:       c.Region,
		})
		if err != nil {
			return nil, nil, err
		}
		gen = g
	case provider.NameMock:
		gen = provider.NewMockProvider()
	default:
		return nil, nil, &doclai.ConfigError{Field: "provider", Message: "unknown provider " + c.Provider}
	}

	if c.RequestsPerMinute > 0 {
		logger.Debug("limiting %s to %d requests per minute", c.Provider, c.RequestsPerMinute)
		gen = doclai.NewRateLimitedGenerator(gen, doclai.RateLimitConfig{RequestsPerMinute: c.RequestsPerMinute})
	}
	return gen, closeFn, nil
}

// NewClient builds the translation client. tc may be nil.
func (c *Config) NewClient(gen doclai.Generator, tc doclai.TranslationCache) *doclai.Client {
	opts := []doclai.ClientOption{
		doclai.WithRetryConfig(doclai.RetryConfig{
			MaxAttempts: c.RetryAttempts,
			Delay:       c.RetryDelay.Std(),
		}),
	}
	if tc != nil {
		opts = append(opts, doclai.WithCache(tc))
	}
	return doclai.NewClient(gen, opts...)
}

// Processors builds one processor per document type from the tag settings.
func (c *Config) Processors() []doclai.ContentProcessor {
	return []doclai.ContentProcessor{
		processor.NewHTMLProcessor(
			processor.WithHTMLTags(c.HTMLTags),
			processor.WithMaxUnitTokens(c.MaxUnitTokens),
			processor.WithDocumentRegions(c.HTMLDocumentRegions),
		),
		processor.NewXMLProcessor(
			processor.WithXMLTags(c.XMLTags),
			processor.WithXMLAttributes(c.XMLAttributes),
			processor.WithIndent(c.XMLIndent),
		),
		processor.NewNotebookProcessor(),
	}
}

// NewTranslator builds a translator for the configured target language with
// every processor registered. Extra options are applied last.
func (c *Config) NewTranslator(client doclai.UnitTranslator, opts ...doclai.TranslatorOption) *doclai.Translator {
	all := []doclai.TranslatorOption{doclai.WithConcurrency(c.Concurrency)}
	for _, p := range c.Processors() {
		all = append(all, doclai.WithProcessor(p))
	}
	all = append(all, opts...)
	return doclai.NewTranslator(c.TargetLanguage, client, all...)
}
