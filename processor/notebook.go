package processor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ZaguanLabs/doclai"
)

// NotebookProcessor translates the markdown cells of a Jupyter notebook, one
// cell per unit. Code cells and metadata are never touched.
//
// Markdown cells whose source is blank are not units. They are written back
// as they were and are left out of the progress total, so a notebook with
// three markdown cells, one of them blank, reports a total of two.
type NotebookProcessor struct{}

// NewNotebookProcessor creates a new notebook processor.
func NewNotebookProcessor() *NotebookProcessor {
	return &NotebookProcessor{}
}

// parsedNotebook holds the decoded notebook and the markdown cells found in it.
type parsedNotebook struct {
	nb    map[string]interface{}
	cells map[string]notebookCell // unit key -> cell
}

type notebookCell struct {
	cell   map[string]interface{}
	source string
}

// Extract decodes the notebook and returns one unit per non-blank markdown cell.
func (p *NotebookProcessor) Extract(content string) (interface{}, []doclai.TextNode, error) {
	dec := json.NewDecoder(strings.NewReader(content))
	dec.UseNumber()

	var nb map[string]interface{}
	if err := dec.Decode(&nb); err != nil {
		return nil, nil, notebookError("failed to parse notebook JSON", err)
	}

	rawCells, ok := nb["cells"].([]interface{})
	if !ok {
		return nil, nil, notebookError("notebook has no cells list", nil)
	}

	pn := &parsedNotebook{nb: nb, cells: make(map[string]notebookCell)}
	var nodes []doclai.TextNode

	for i, raw := range rawCells {
		cell, ok := raw.(map[string]interface{})
		if !ok {
			return nil, nil, notebookError(fmt.Sprintf("cell %d is not an object", i), nil)
		}
		if cell["cell_type"] != "markdown" {
			continue
		}

		source, err := cellSource(cell["source"])
		if err != nil {
			return nil, nil, notebookError(fmt.Sprintf("cell %d", i), err)
		}
		if strings.TrimSpace(source) == "" {
			continue
		}

		key := fmt.Sprintf("cell-%d", i)
		pn.cells[key] = notebookCell{cell: cell, source: source}
		nodes = append(nodes, doclai.TextNode{
			ID:       key,
			Key:      key,
			Text:     source,
			Hash:     doclai.HashText(source),
			NodeType: "notebook_cell",
			Context:  fmt.Sprintf("markdown cell %d", i),
			Metadata: map[string]string{"cell": strconv.Itoa(i)},
		})
	}

	return pn, nodes, nil
}

// Apply writes translated cell sources back and re-serializes the notebook
// with one-space indentation and sorted keys.
func (p *NotebookProcessor) Apply(parsed interface{}, tm *doclai.TranslationMap) (string, error) {
	pn, ok := parsed.(*parsedNotebook)
	if !ok {
		return "", notebookError("invalid parsed content type", nil)
	}

	for key, c := range pn.cells {
		translated, ok := tm.Get(key)
		if !ok {
			continue
		}
		c.cell["source"] = splitLines(preserveWhitespace(c.source, translated))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", " ")
	if err := enc.Encode(pn.nb); err != nil {
		return "", notebookError("failed to serialize notebook", err)
	}

	return buf.String(), nil
}

// ContentType returns doclai.TypeNotebook.
func (p *NotebookProcessor) ContentType() doclai.DocumentType {
	return doclai.TypeNotebook
}

// Granularity returns doclai.GranularityCell.
func (p *NotebookProcessor) Granularity() doclai.Granularity {
	return doclai.GranularityCell
}

// cellSource joins a cell source given as a string or a list of lines.
func cellSource(v interface{}) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	case []interface{}:
		var b strings.Builder
		for _, line := range s {
			str, ok := line.(string)
			if !ok {
				return "", fmt.Errorf("source line is %T, not a string", line)
			}
			b.WriteString(str)
		}
		return b.String(), nil
	}
	return "", fmt.Errorf("source is %T, not a string or list", v)
}

// splitLines splits text after every newline, keeping the newlines.
func splitLines(text string) []string {
	lines := strings.SplitAfter(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if lines == nil {
		lines = []string{}
	}
	return lines
}

func notebookError(msg string, err error) error {
	return &doclai.ProcessorError{
		Message:     msg,
		Cause:       err,
		ContentType: string(doclai.TypeNotebook),
	}
}

// Verify NotebookProcessor implements ContentProcessor
var _ ContentProcessor = (*NotebookProcessor)(nil)
