package processor

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/ZaguanLabs/doclai"
	"github.com/beevik/etree"
)

// XMLProcessor translates OLX course markup string by string. Eligible leaf
// text and allow-listed attributes become units; identical strings share one
// translation across the whole document. On merge, any attribute of an
// eligible element whose value is a translated unit is replaced too.
type XMLProcessor struct {
	tags   map[string]bool
	attrs  map[string]bool
	indent int
}

// XMLOption is a functional option for configuring the XMLProcessor.
type XMLOption func(*XMLProcessor)

// WithXMLTags replaces the eligible tag set.
func WithXMLTags(tags []string) XMLOption {
	return func(p *XMLProcessor) {
		p.tags = tagSet(tags)
	}
}

// WithXMLAttributes replaces the attributes extracted from eligible elements.
func WithXMLAttributes(attrs []string) XMLOption {
	return func(p *XMLProcessor) {
		p.attrs = tagSet(attrs)
	}
}

// WithIndent re-indents the output with n spaces per level. Zero keeps the
// source layout.
func WithIndent(n int) XMLOption {
	return func(p *XMLProcessor) {
		p.indent = n
	}
}

// NewXMLProcessor creates a new XML processor with the default tag and attribute sets.
func NewXMLProcessor(opts ...XMLOption) *XMLProcessor {
	p := &XMLProcessor{
		tags:  tagSet(doclai.DefaultXMLTags),
		attrs: tagSet(doclai.DefaultXMLAttributes),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// parsedXML holds the parsed document and its eligible elements.
type parsedXML struct {
	doc      *etree.Document
	eligible []*etree.Element
}

// Extract parses XML and returns the unique eligible strings.
func (p *XMLProcessor) Extract(content string) (interface{}, []doclai.TextNode, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		Entity:        xml.HTMLEntity,
		PreserveCData: true,
	}
	if err := doc.ReadFromString(content); err != nil {
		return nil, nil, &doclai.ProcessorError{
			Message:     "failed to parse XML",
			Cause:       err,
			ContentType: string(doclai.TypeXML),
		}
	}

	px := &parsedXML{doc: doc}
	var nodes []doclai.TextNode
	seen := make(map[string]bool)

	add := func(text, nodeType, context string, meta map[string]string) {
		if text == "" || seen[text] {
			return
		}
		seen[text] = true
		nodes = append(nodes, doclai.TextNode{
			ID:       fmt.Sprintf("node-%d", len(nodes)),
			Key:      text,
			Text:     text,
			Hash:     doclai.HashText(text),
			NodeType: nodeType,
			Context:  context,
			Metadata: meta,
		})
	}

	for _, el := range doc.FindElements("//*") {
		if !p.tags[el.Tag] {
			continue
		}
		px.eligible = append(px.eligible, el)

		if cd := soleText(el); cd != nil {
			add(strings.TrimSpace(cd.Data), "xml_text", fmt.Sprintf("<%s>", el.Tag),
				map[string]string{"tag": el.Tag})
		}

		for _, a := range el.Attr {
			if !p.attrs[a.Key] {
				continue
			}
			add(strings.TrimSpace(a.Value), "xml_attr", fmt.Sprintf("<%s %s>", el.Tag, a.Key),
				map[string]string{"tag": el.Tag, "attribute": a.Key})
		}
	}

	return px, nodes, nil
}

// Apply substitutes translated strings into eligible text and attributes and
// serializes the document without an XML declaration.
func (p *XMLProcessor) Apply(parsed interface{}, tm *doclai.TranslationMap) (string, error) {
	px, ok := parsed.(*parsedXML)
	if !ok {
		return "", &doclai.ProcessorError{
			Message:     "invalid parsed content type",
			ContentType: string(doclai.TypeXML),
		}
	}

	done := make(map[*etree.CharData]bool)
	for _, el := range px.eligible {
		if cd := soleText(el); cd != nil && !done[cd] {
			done[cd] = true
			if v, ok := tm.Get(strings.TrimSpace(cd.Data)); ok {
				cd.Data = preserveWhitespace(cd.Data, v)
			}
		}

		for i, a := range el.Attr {
			if v, ok := tm.Get(strings.TrimSpace(a.Value)); ok {
				el.Attr[i].Value = preserveWhitespace(a.Value, v)
			}
		}
	}

	stripDeclaration(px.doc)
	if p.indent > 0 {
		px.doc.Indent(p.indent)
	}

	out, err := px.doc.WriteToString()
	if err != nil {
		return "", &doclai.ProcessorError{
			Message:     "failed to serialize XML",
			Cause:       err,
			ContentType: string(doclai.TypeXML),
		}
	}
	return out, nil
}

// ContentType returns doclai.TypeXML.
func (p *XMLProcessor) ContentType() doclai.DocumentType {
	return doclai.TypeXML
}

// Granularity returns doclai.GranularityText.
func (p *XMLProcessor) Granularity() doclai.Granularity {
	return doclai.GranularityText
}

// soleText returns the only character data of el, following single-child
// element chains. Mixed content has no sole text.
func soleText(el *etree.Element) *etree.CharData {
	if len(el.Child) != 1 {
		return nil
	}
	switch t := el.Child[0].(type) {
	case *etree.CharData:
		return t
	case *etree.Element:
		return soleText(t)
	}
	return nil
}

// stripDeclaration removes the <?xml ...?> header and the whitespace after it.
func stripDeclaration(doc *etree.Document) {
	for i, t := range doc.Child {
		pi, ok := t.(*etree.ProcInst)
		if !ok || pi.Target != "xml" {
			continue
		}
		doc.RemoveChildAt(i)
		if i < len(doc.Child) {
			if cd, ok := doc.Child[i].(*etree.CharData); ok && strings.TrimSpace(cd.Data) == "" {
				doc.RemoveChildAt(i)
			}
		}
		return
	}
}

// Verify XMLProcessor implements ContentProcessor
var _ ContentProcessor = (*XMLProcessor)(nil)
