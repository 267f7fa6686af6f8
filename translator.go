package doclai

import (
	"context"
	"errors"
	"strings"

	"github.com/ZaguanLabs/doclai/logger"
)

// UnitTranslator translates one unit. *Client is the standard implementation.
type UnitTranslator interface {
	Translate(ctx context.Context, req TranslationRequest) Outcome
}

// ContentProcessor is the interface for content processing.
//
// Extract parses content and returns the parsed tree with its translatable
// units. Apply writes the filled entries of tm back into the tree and
// serializes it. Units missing from tm keep their source text.
type ContentProcessor interface {
	Extract(content string) (interface{}, []TextNode, error)
	Apply(parsed interface{}, tm *TranslationMap) (string, error)
	ContentType() DocumentType
	Granularity() Granularity
}

// Translator is the document orchestrator.
type Translator struct {
	targetLang  string
	client      UnitTranslator
	processors  map[DocumentType]ContentProcessor
	progress    ProgressFunc
	stateHook   StateFunc
	concurrency int
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithProcessor registers a content processor.
func WithProcessor(processor ContentProcessor) TranslatorOption {
	return func(t *Translator) {
		t.processors[processor.ContentType()] = processor
	}
}

// WithProgress sets the per-unit progress callback.
func WithProgress(fn ProgressFunc) TranslatorOption {
	return func(t *Translator) {
		t.progress = fn
	}
}

// WithStateHook sets a callback observing state transitions.
func WithStateHook(fn StateFunc) TranslatorOption {
	return func(t *Translator) {
		t.stateHook = fn
	}
}

// WithConcurrency translates up to n units of one document at a time.
// Values below 2 keep the default of one in-flight call.
func WithConcurrency(n int) TranslatorOption {
	return func(t *Translator) {
		t.concurrency = n
	}
}

// NewTranslator creates a new Translator with the given target language and client.
func NewTranslator(targetLang string, client UnitTranslator, opts ...TranslatorOption) *Translator {
	t := &Translator{
		targetLang:  targetLang,
		client:      client,
		processors:  make(map[DocumentType]ContentProcessor),
		concurrency: 1,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Process translates content of the specified type.
//
// A unit that cannot be translated keeps its source text and is listed in
// ProcessedContent.Degraded. Errors are returned only for caller mistakes,
// unparseable input or a cancelled context.
func (t *Translator) Process(ctx context.Context, content string, docType DocumentType) (*ProcessedContent, error) {
	if strings.TrimSpace(t.targetLang) == "" {
		return nil, &TranslationError{Message: "cannot process document", Cause: ErrNoTargetLang}
	}

	processor, ok := t.processors[docType]
	if !ok {
		return nil, &ProcessorError{
			Message:     "cannot process document",
			Cause:       ErrNoProcessor,
			ContentType: string(docType),
		}
	}

	parsed, nodes, err := processor.Extract(content)
	if err != nil {
		return nil, asProcessorError(err, docType)
	}

	run := &runState{hook: t.stateHook}
	tm := NewTranslationMap(nodes)
	tracker := newProgressTracker(tm.Len(), t.progress)

	if tm.Len() == 0 {
		tracker.start()
		run.to(StateSerialized)
		return &ProcessedContent{Content: content}, nil
	}

	run.to(StateExtracting)
	logger.Debug("%s: %d unit(s) extracted (%s granularity)", docType, tm.Len(), processor.Granularity())

	result := &ProcessedContent{TotalUnits: tm.Len()}
	var pending []TextNode
	tracker.start()
	for _, node := range tm.Units() {
		if node.Oversize {
			logger.Warn("unit %s exceeds %d tokens, left untranslated", node.ID, DefaultMaxUnitTokens)
			result.OversizeCount++
			result.Degraded = append(result.Degraded, node.Text)
			tracker.advance()
			continue
		}
		pending = append(pending, node)
	}

	run.to(StateTranslating)
	translateUnits(ctx, t.client, pending, t.requestFor(docType), t.concurrency, tracker, func(node TextNode, out Outcome) {
		if out.Kind == Translated {
			if err := tm.Set(node.Key, out.Text); err != nil {
				logger.Error("dropping translation for %s: %v", node.ID, err)
				return
			}
			if out.Cached {
				result.CachedCount++
			} else {
				result.TranslatedCount++
			}
			return
		}
		result.FallbackCount++
		result.Degraded = append(result.Degraded, node.Text)
	})

	if err := ctx.Err(); err != nil {
		return nil, &TranslationError{Message: "translation cancelled", Cause: err}
	}

	run.to(StateMerging)
	output, err := processor.Apply(parsed, tm)
	if err != nil {
		return nil, asProcessorError(err, docType)
	}
	run.to(StateSerialized)

	result.Content = output
	if len(result.Degraded) > 0 {
		logger.Warn("%s: %d of %d unit(s) kept their source text", docType, len(result.Degraded), result.TotalUnits)
	}
	return result, nil
}

// ProcessHTML is a convenience method for processing HTML content.
func (t *Translator) ProcessHTML(ctx context.Context, html string) (*ProcessedContent, error) {
	return t.Process(ctx, html, TypeHTML)
}

// ProcessXML is a convenience method for processing XML course markup.
func (t *Translator) ProcessXML(ctx context.Context, xml string) (*ProcessedContent, error) {
	return t.Process(ctx, xml, TypeXML)
}

// ProcessNotebook is a convenience method for processing a Jupyter notebook.
func (t *Translator) ProcessNotebook(ctx context.Context, notebook string) (*ProcessedContent, error) {
	return t.Process(ctx, notebook, TypeNotebook)
}

// Extract returns the units of content without translating them.
func (t *Translator) Extract(content string, docType DocumentType) ([]TextNode, error) {
	processor, ok := t.processors[docType]
	if !ok {
		return nil, &ProcessorError{Message: "cannot extract units", Cause: ErrNoProcessor, ContentType: string(docType)}
	}

	_, nodes, err := processor.Extract(content)
	if err != nil {
		return nil, asProcessorError(err, docType)
	}
	return NewTranslationMap(nodes).Units(), nil
}

// Merge applies a known translation map to content without calling the client.
func (t *Translator) Merge(content string, docType DocumentType, tm *TranslationMap) (string, error) {
	processor, ok := t.processors[docType]
	if !ok {
		return "", &ProcessorError{Message: "cannot merge units", Cause: ErrNoProcessor, ContentType: string(docType)}
	}

	parsed, _, err := processor.Extract(content)
	if err != nil {
		return "", asProcessorError(err, docType)
	}
	out, err := processor.Apply(parsed, tm)
	if err != nil {
		return "", asProcessorError(err, docType)
	}
	return out, nil
}

// TargetLang returns the target language.
func (t *Translator) TargetLang() string {
	return t.targetLang
}

// Supports reports whether a processor is registered for docType.
func (t *Translator) Supports(docType DocumentType) bool {
	_, ok := t.processors[docType]
	return ok
}

func (t *Translator) requestFor(docType DocumentType) func(TextNode) TranslationRequest {
	return func(node TextNode) TranslationRequest {
		return TranslationRequest{
			Text:           node.Text,
			DocumentType:   docType,
			TargetLanguage: t.targetLang,
		}
	}
}

// runState emits forward-only state transitions to an optional hook.
type runState struct {
	current State
	hook    StateFunc
}

func (r *runState) to(next State) {
	if next <= r.current {
		return
	}
	if r.hook != nil {
		r.hook(r.current, next)
	}
	r.current = next
}

func asProcessorError(err error, docType DocumentType) error {
	var procErr *ProcessorError
	if errors.As(err, &procErr) {
		return err
	}
	return &ProcessorError{Message: "failed to process document", Cause: err, ContentType: string(docType)}
}
