package processor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ZaguanLabs/doclai"
	"github.com/ZaguanLabs/doclai/logger"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLProcessor translates HTML one top-level block at a time. Each eligible
// element is sent as serialized markup, so nested text and attributes travel
// together and the translated fragment replaces the element.
type HTMLProcessor struct {
	tags           map[string]bool
	maxTokens      int
	includeRegions bool
}

// HTMLOption is a functional option for configuring the HTMLProcessor.
type HTMLOption func(*HTMLProcessor)

// WithHTMLTags replaces the eligible tag set.
func WithHTMLTags(tags []string) HTMLOption {
	return func(p *HTMLProcessor) {
		p.tags = tagSet(tags)
	}
}

// WithMaxUnitTokens sets the estimated token count above which a block is
// marked instead of translated.
func WithMaxUnitTokens(n int) HTMLOption {
	return func(p *HTMLProcessor) {
		if n > 0 {
			p.maxTokens = n
		}
	}
}

// WithDocumentRegions makes the children of an explicit <head> and <body> the
// top level of the walk. Without it both regions are left untouched.
func WithDocumentRegions(include bool) HTMLOption {
	return func(p *HTMLProcessor) {
		p.includeRegions = include
	}
}

// NewHTMLProcessor creates a new HTML processor with the default tag set.
func NewHTMLProcessor(opts ...HTMLOption) *HTMLProcessor {
	p := &HTMLProcessor{
		tags:      tagSet(doclai.DefaultHTMLTags),
		maxTokens: doclai.DefaultMaxUnitTokens,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// htmlUnit is one eligible top-level element and its key.
type htmlUnit struct {
	node *html.Node
	key  string
}

// parsedHTML holds the parsed tree and the units found in it.
type parsedHTML struct {
	root  *html.Node // document node, synthetic for fragments
	units []htmlUnit
}

// Extract parses HTML and returns one unit per top-level eligible element
// that has visible text.
func (p *HTMLProcessor) Extract(content string) (interface{}, []doclai.TextNode, error) {
	ph := &parsedHTML{}
	markers := scanDocument(content)

	var candidates []*html.Node
	if markers.document() {
		doc, err := html.Parse(strings.NewReader(content))
		if err != nil {
			return nil, nil, htmlError("failed to parse HTML", err)
		}
		ph.root = doc
		candidates = p.documentCandidates(doc, markers)
	} else {
		nodes, err := html.ParseFragment(strings.NewReader(content), bodyContext())
		if err != nil {
			return nil, nil, htmlError("failed to parse HTML fragment", err)
		}
		ph.root = &html.Node{Type: html.DocumentNode}
		for _, n := range nodes {
			ph.root.AppendChild(n)
		}
		candidates = topLevel(ph.root)
	}

	var nodes []doclai.TextNode
	for _, n := range candidates {
		if n.Type != html.ElementNode || !p.tags[n.Data] {
			continue
		}

		sel := goquery.NewDocumentFromNode(n).Selection
		if strings.TrimSpace(sel.Text()) == "" {
			continue
		}

		outer, err := goquery.OuterHtml(sel)
		if err != nil {
			return nil, nil, htmlError("failed to serialize element", err)
		}
		outer = strings.TrimSpace(outer)
		tokens := EstimateTokens(outer)

		node := doclai.TextNode{
			ID:       fmt.Sprintf("node-%d", len(nodes)),
			Key:      outer,
			Text:     outer,
			Hash:     doclai.HashText(outer),
			NodeType: "html_block",
			Context:  fmt.Sprintf("<%s>", n.Data),
			Metadata: map[string]string{
				"tag":    n.Data,
				"tokens": strconv.Itoa(tokens),
			},
		}

		if tokens > p.maxTokens {
			markOversize(n)
			node.Oversize = true
		}

		ph.units = append(ph.units, htmlUnit{node: n, key: outer})
		nodes = append(nodes, node)
	}

	return ph, nodes, nil
}

// Apply replaces every translated element with its re-parsed fragment.
func (p *HTMLProcessor) Apply(parsed interface{}, tm *doclai.TranslationMap) (string, error) {
	ph, ok := parsed.(*parsedHTML)
	if !ok {
		return "", &doclai.ProcessorError{
			Message:     "invalid parsed content type",
			ContentType: string(doclai.TypeHTML),
		}
	}

	for _, u := range ph.units {
		translated, ok := tm.Get(u.key)
		if !ok || u.node.Parent == nil {
			continue
		}

		replacement, err := parseReplacement(u.node, translated)
		if err != nil || len(replacement) == 0 {
			logger.Warn("translated <%s> block could not be parsed, keeping original", u.node.Data)
			continue
		}

		for _, n := range replacement {
			u.node.Parent.InsertBefore(n, u.node)
		}
		u.node.Parent.RemoveChild(u.node)
	}

	out, err := goquery.NewDocumentFromNode(ph.root).Html()
	if err != nil {
		return "", htmlError("failed to serialize HTML", err)
	}

	return out, nil
}

// ContentType returns doclai.TypeHTML.
func (p *HTMLProcessor) ContentType() doclai.DocumentType {
	return doclai.TypeHTML
}

// Granularity returns doclai.GranularityBlock.
func (p *HTMLProcessor) Granularity() doclai.Granularity {
	return doclai.GranularityBlock
}

// documentMarkers records which document-level tokens appear in the source.
// The parser synthesizes html, head and body for any full document, so the
// tokens decide what was really there.
type documentMarkers struct {
	regions map[string]bool // explicit head and body
	html    bool
	doctype bool
}

func (m documentMarkers) document() bool {
	return m.html || m.doctype || len(m.regions) > 0
}

func scanDocument(content string) documentMarkers {
	m := documentMarkers{regions: make(map[string]bool)}
	z := html.NewTokenizer(strings.NewReader(content))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return m
		case html.DoctypeToken:
			m.doctype = true
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "html":
				m.html = true
			case "head", "body":
				m.regions[string(name)] = true
			}
		}
	}
}

// documentCandidates returns the top level of a parsed document. Elements the
// parser synthesized are unwrapped so the output keeps the source structure.
// Without explicit regions an explicit <html> is itself the unit when
// eligible. Explicit head and body are walked only with WithDocumentRegions.
func (p *HTMLProcessor) documentCandidates(doc *html.Node, m documentMarkers) []*html.Node {
	root := htmlElement(doc)
	if root == nil {
		return topLevel(doc)
	}
	unwrapSynthesized(root, m.regions)

	switch {
	case !m.html:
		unwrap(root)
		root = doc
	case len(m.regions) == 0 && p.tags["html"]:
		return []*html.Node{root}
	}

	var out []*html.Node
	for _, c := range topLevel(root) {
		if isRegion(c) {
			if p.includeRegions {
				out = append(out, topLevel(c)...)
			}
			continue
		}
		out = append(out, c)
	}
	return out
}

// parseReplacement parses a translated block in the context of the element it
// replaces. An <html> unit is parsed as a document so its attributes survive.
func parseReplacement(n *html.Node, translated string) ([]*html.Node, error) {
	if n.DataAtom == atom.Html {
		doc, err := html.Parse(strings.NewReader(translated))
		if err != nil {
			return nil, err
		}
		root := htmlElement(doc)
		if root == nil {
			return nil, nil
		}
		unwrapSynthesized(root, scanDocument(translated).regions)
		doc.RemoveChild(root)
		return []*html.Node{root}, nil
	}

	context := n.Parent
	if context.Type != html.ElementNode || context.DataAtom == atom.Html {
		context = bodyContext()
	}
	return html.ParseFragment(strings.NewReader(translated), context)
}

func bodyContext() *html.Node {
	return &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
}

// topLevel returns the direct children of n.
func topLevel(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

func htmlElement(doc *html.Node) *html.Node {
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Html {
			return c
		}
	}
	return nil
}

func isRegion(n *html.Node) bool {
	return n.Type == html.ElementNode && (n.DataAtom == atom.Head || n.DataAtom == atom.Body)
}

// unwrapSynthesized replaces every head or body the source did not spell out
// with its children.
func unwrapSynthesized(root *html.Node, explicit map[string]bool) {
	for _, r := range topLevel(root) {
		if isRegion(r) && !explicit[r.Data] {
			unwrap(r)
		}
	}
}

// unwrap moves the children of n into its parent and removes n.
func unwrap(n *html.Node) {
	parent := n.Parent
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
}

// markOversize flags a block that is too large to send.
func markOversize(n *html.Node) {
	for i, a := range n.Attr {
		if a.Key == "style" {
			n.Attr[i].Val = doclai.OversizeStyle
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "style", Val: doclai.OversizeStyle})
}

func htmlError(msg string, err error) error {
	return &doclai.ProcessorError{
		Message:     msg,
		Cause:       err,
		ContentType: string(doclai.TypeHTML),
	}
}

// Verify HTMLProcessor implements ContentProcessor
var _ ContentProcessor = (*HTMLProcessor)(nil)
