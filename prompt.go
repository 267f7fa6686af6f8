package doclai

import (
	"context"
	"fmt"
	"strings"
)

// Generator is the interface for text generation backends.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// Prompt is one generation request: a directive and the content it applies to.
// Chat backends send Directive as the system message and Content as the user
// message. Single-shot backends use String.
type Prompt struct {
	Directive string
	Content   string
}

// String joins the directive and content into a single prompt.
func (p Prompt) String() string {
	if p.Directive == "" {
		return p.Content
	}
	return p.Directive + "\n\n" + p.Content
}

// BuildPrompt returns the prompt used to translate one unit.
func BuildPrompt(req TranslationRequest) Prompt {
	return Prompt{
		Directive: BuildDirective(req.DocumentType, req.TargetLanguage),
		Content:   req.Text,
	}
}

// BuildDirective returns the translation instructions for a document type.
func BuildDirective(docType DocumentType, targetLang string) string {
	lang := GetLanguageName(targetLang)

	var b strings.Builder
	fmt.Fprintf(&b, `# Role
You are a TRANSLATION TOOL ONLY. Do not act as an assistant or provide commentary.

# Rules
- Translate the content strictly into %s, and ONLY %s.
- Do NOT add explanations, disclaimers, general knowledge, or other languages.
- Preserve the original formatting, structure and tags (HTML, XML or markdown).
- If you are unsure, return the original content as-is.
- NEVER add phrases like "Here is the translation" or "The translated content is".
- NEVER mix languages in your response.
`, lang, lang)

	b.WriteString("\n# Task\n")
	switch docType {
	case TypeXML:
		b.WriteString(`Translate the following XML text. Only translate real visible text and attribute values (like display_name, markdown).
Do NOT modify tag names or structure. Do NOT return empty. Do NOT reformat.
`)
	case TypeHTML:
		b.WriteString(`Translate the following HTML. Only translate visible text and attribute values (e.g. alt, title, display_name, markdown).
Keep all tags, attributes and styles exactly as they are. Do NOT merge blocks. Do NOT skip content. Do NOT add anything.
Return valid HTML.
`)
	case TypeNotebook:
		b.WriteString(`Translate the following markdown cell of a Jupyter notebook.
Keep all formatting, links, math and code blocks. Text inside code fences is code and must not be translated.
Do NOT return an empty cell.
`)
	default:
		b.WriteString("Translate the following text.\n")
	}

	b.WriteString("\n# Format\nReturn ONLY the translated content, nothing else.")
	return b.String()
}
