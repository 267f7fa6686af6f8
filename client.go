package doclai

import (
	"context"
	"strings"

	"github.com/ZaguanLabs/doclai/logger"
)

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// OutcomeKind tells whether a unit was translated or kept its source text.
type OutcomeKind int

const (
	Translated OutcomeKind = iota
	Fallback
)

func (k OutcomeKind) String() string {
	if k == Translated {
		return "translated"
	}
	return "fallback"
}

// Outcome is the result of translating one unit. It never carries a hard failure:
// a Fallback holds the original text and the reason it was kept.
type Outcome struct {
	Kind     OutcomeKind
	Text     string
	Reason   error // nil for Translated
	Attempts int   // Generator calls made for this unit
	Cached   bool  // Served from the translation cache
}

// Client translates single units through a Generator.
type Client struct {
	generator Generator
	retry     RetryConfig
	cache     TranslationCache
	validate  bool
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithRetryConfig sets the attempt bound and the delay between attempts.
func WithRetryConfig(cfg RetryConfig) ClientOption {
	return func(c *Client) {
		c.retry = cfg
	}
}

// WithCache sets the translation cache. Caching is off unless this option is given.
func WithCache(cache TranslationCache) ClientOption {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithResponseValidation toggles stripping of boilerplate prefixes and
// detection of assistant-style refusals. It is on by default.
func WithResponseValidation(enabled bool) ClientOption {
	return func(c *Client) {
		c.validate = enabled
	}
}

// NewClient creates a Client for the given generator.
func NewClient(generator Generator, opts ...ClientOption) *Client {
	c := &Client{
		generator: generator,
		retry:     DefaultRetryConfig(),
		validate:  true,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Translate translates one unit. Failures are logged and reported as a Fallback
// carrying req.Text; they are never returned as errors.
func (c *Client) Translate(ctx context.Context, req TranslationRequest) Outcome {
	if strings.TrimSpace(req.Text) == "" {
		return Outcome{Kind: Fallback, Text: req.Text, Reason: ErrEmptyResult}
	}

	cacheKey := CacheKey(req.DocumentType, HashText(req.Text), req.TargetLanguage)
	if c.cache != nil {
		if cached, ok := c.cache.Get(cacheKey); ok && strings.TrimSpace(cached) != "" {
			return Outcome{Kind: Translated, Text: cached, Cached: true}
		}
	}

	prompt := BuildPrompt(req)
	text, attempts, err := WithRetry(ctx, c.retry, func() (string, error) {
		return c.generator.Generate(ctx, prompt)
	})
	if err != nil {
		logger.Warn("translation failed after %d attempt(s): %v. Keeping original.", attempts, err)
		return Outcome{Kind: Fallback, Text: req.Text, Reason: err, Attempts: attempts}
	}

	if c.validate {
		var reason error
		text, reason = cleanResponse(req.Text, text)
		if reason != nil {
			logger.Warn("assistant-style response detected. Keeping original.")
			return Outcome{Kind: Fallback, Text: req.Text, Reason: reason, Attempts: attempts}
		}
	}

	if strings.TrimSpace(text) == "" {
		logger.Warn("Empty translation received. Keeping original.")
		return Outcome{Kind: Fallback, Text: req.Text, Reason: ErrEmptyResult, Attempts: attempts}
	}

	if c.cache != nil {
		if err := c.cache.Set(cacheKey, text); err != nil {
			logger.Debug("cache set failed: %v", err)
		}
	}

	return Outcome{Kind: Translated, Text: text, Attempts: attempts}
}

// boilerplatePrefixes are stripped from the start of a response, in order.
var boilerplatePrefixes = []string{
	"Here is the translation",
	"The translated content is",
	"Here's the translated",
	"Translation:",
	"Translated version:",
	"Here is the",
	"The translation of",
	"Вот перевод",
	"Переведенный контент",
	"Перевод:",
}

// refusalIndicators mark a response that talks to the user instead of translating.
var refusalIndicators = []string{
	"I cannot",
	"I'm unable",
	"As an AI",
	"I apologize",
	"Sorry, but",
	"I can't",
	"Я не могу",
	"Извините",
}

// refusalTopics must appear in the opening sentence of a refusal.
var refusalTopics = []string{
	"translat",
	"assist",
	"help",
	"comply",
	"request",
	"language model",
	"перев",
	"помоч",
}

// cleanResponse strips boilerplate from a generator response and reports
// ErrRefusal when the response reads like an assistant reply. A prefix is
// boilerplate only when a colon or line break follows it.
func cleanResponse(source, response string) (string, error) {
	cleaned := strings.TrimSpace(response)

	for _, prefix := range boilerplatePrefixes {
		if len(cleaned) < len(prefix) || !strings.EqualFold(cleaned[:len(prefix)], prefix) {
			continue
		}
		rest := cleaned[len(prefix):]
		if !strings.HasSuffix(prefix, ":") && !startsLabel(rest) {
			continue
		}
		cleaned = strings.TrimLeft(rest, ": \t\r\n")
	}

	if isRefusal(source, cleaned) {
		return "", ErrRefusal
	}
	return cleaned, nil
}

// isRefusal reports whether response opens with a refusal indicator that the
// source does not contain, and its first sentence is about the task.
func isRefusal(source, response string) bool {
	lower := strings.ToLower(response)
	lowerSource := strings.ToLower(source)

	opens := false
	for _, indicator := range refusalIndicators {
		ind := strings.ToLower(indicator)
		if strings.HasPrefix(lower, ind) && !strings.Contains(lowerSource, ind) {
			opens = true
			break
		}
	}
	if !opens {
		return false
	}

	first := lower
	if i := strings.IndexAny(first, ".!?\n"); i >= 0 {
		first = first[:i]
	}
	for _, topic := range refusalTopics {
		if strings.Contains(first, topic) {
			return true
		}
	}
	return false
}

// startsLabel reports whether s opens with a colon or a line break, ignoring
// spaces and tabs.
func startsLabel(s string) bool {
	s = strings.TrimLeft(s, " \t")
	return strings.HasPrefix(s, ":") || strings.HasPrefix(s, "\n") || strings.HasPrefix(s, "\r")
}
