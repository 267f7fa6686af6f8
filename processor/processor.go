// Package processor provides the document-type strategies: unit extraction,
// translation merging and serialization for HTML, OLX and Jupyter notebooks.
package processor

import (
	"strings"

	"github.com/ZaguanLabs/doclai"
)

// ContentProcessor is an alias to the main package interface.
type ContentProcessor = doclai.ContentProcessor

// TextNode is an alias to the main package type.
type TextNode = doclai.TextNode

// ForType returns the default processor for a document type.
func ForType(docType doclai.DocumentType) (ContentProcessor, bool) {
	switch docType {
	case doclai.TypeHTML:
		return NewHTMLProcessor(), true
	case doclai.TypeXML:
		return NewXMLProcessor(), true
	case doclai.TypeNotebook:
		return NewNotebookProcessor(), true
	}
	return nil, false
}

// All returns one default processor per supported document type.
func All() []ContentProcessor {
	return []ContentProcessor{NewHTMLProcessor(), NewXMLProcessor(), NewNotebookProcessor()}
}

func tagSet(tags []string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, tag := range tags {
		set[strings.ToLower(strings.TrimSpace(tag))] = true
	}
	return set
}

// preserveWhitespace preserves the original leading/trailing whitespace.
func preserveWhitespace(original, translated string) string {
	leadingLen := len(original) - len(strings.TrimLeft(original, " \t\n\r"))
	leading := original[:leadingLen]

	trailingLen := len(original) - len(strings.TrimRight(original, " \t\n\r"))
	trailing := ""
	if trailingLen > 0 {
		trailing = original[len(original)-trailingLen:]
	}

	return leading + strings.TrimSpace(translated) + trailing
}
