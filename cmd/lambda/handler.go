package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ZaguanLabs/doclai"
	"github.com/ZaguanLabs/doclai/config"
	"github.com/ZaguanLabs/doclai/logger"
	"github.com/ZaguanLabs/doclai/provider"
)

// Request is a document or prompt event.
type Request struct {
	DocumentType   string `json:"document_type,omitempty"`
	Content        string `json:"content"`
	TargetLanguage string `json:"target_language,omitempty"`
	Directive      string `json:"directive,omitempty"`
}

// Response carries either a translated document or generated text.
// Failures are reported in Error rather than as an invocation error.
type Response struct {
	Content         string   `json:"content,omitempty"`
	Text            string   `json:"text,omitempty"`
	TotalUnits      int      `json:"total_units,omitempty"`
	TranslatedCount int      `json:"translated_count,omitempty"`
	CachedCount     int      `json:"cached_count,omitempty"`
	FallbackCount   int      `json:"fallback_count,omitempty"`
	OversizeCount   int      `json:"oversize_count,omitempty"`
	Degraded        []string `json:"degraded,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// Handler serves events with one session kept across warm invocations.
type Handler struct {
	cfg *config.Config

	mu      sync.Mutex
	session *config.Session
}

// NewHandler creates a handler; the session is opened on first use.
func NewHandler(cfg *config.Config) *Handler {
	return &Handler{cfg: cfg}
}

func (h *Handler) open(ctx context.Context) (*config.Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.session != nil {
		return h.session, nil
	}
	if h.cfg.Provider == provider.NameLambda && h.cfg.LambdaFunction == os.Getenv("AWS_LAMBDA_FUNCTION_NAME") {
		return nil, fmt.Errorf("lambda provider points at this function")
	}
	s, err := h.cfg.Open(ctx)
	if err != nil {
		return nil, err
	}
	h.session = s
	return s, nil
}

// Handle dispatches on the event shape.
func (h *Handler) Handle(ctx context.Context, req Request) (*Response, error) {
	if req.DocumentType == "" && req.Directive != "" {
		return h.generate(ctx, req), nil
	}
	return h.translate(ctx, req), nil
}

func (h *Handler) generate(ctx context.Context, req Request) *Response {
	s, err := h.open(ctx)
	if err != nil {
		return &Response{Error: err.Error()}
	}
	text, err := s.Generator.Generate(ctx, doclai.Prompt{Directive: req.Directive, Content: req.Content})
	if err != nil {
		logger.Warn("generate failed: %v", err)
		return &Response{Error: err.Error()}
	}
	return &Response{Text: text}
}

func (h *Handler) translate(ctx context.Context, req Request) *Response {
	if err := validateRequest(req); err != nil {
		return &Response{Error: err.Error()}
	}
	docType := doclai.DocumentType(strings.ToLower(req.DocumentType))

	// Nothing to translate: return the input without opening a session.
	if strings.TrimSpace(req.Content) == "" {
		return &Response{Content: req.Content}
	}

	s, err := h.open(ctx)
	if err != nil {
		return &Response{Error: fmt.Sprintf("failed to open session: %v", err)}
	}

	cfg := *h.cfg
	cfg.TargetLanguage = req.TargetLanguage
	tr := cfg.NewTranslator(s.Client)
	if !tr.Supports(docType) {
		return &Response{Error: fmt.Sprintf("unsupported document_type %q", req.DocumentType)}
	}

	res, err := tr.Process(ctx, req.Content, docType)
	if err != nil {
		return &Response{Error: fmt.Sprintf("translation failed: %v", err)}
	}
	return &Response{
		Content:         res.Content,
		TotalUnits:      res.TotalUnits,
		TranslatedCount: res.TranslatedCount,
		CachedCount:     res.CachedCount,
		FallbackCount:   res.FallbackCount,
		OversizeCount:   res.OversizeCount,
		Degraded:        res.Degraded,
	}
}

func validateRequest(req Request) error {
	if req.DocumentType == "" {
		return fmt.Errorf("document_type is required")
	}
	if strings.TrimSpace(req.TargetLanguage) == "" {
		return fmt.Errorf("target_language is required")
	}
	return nil
}
