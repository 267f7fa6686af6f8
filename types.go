package doclai

// DocumentType identifies the markup family of a document.
type DocumentType string

const (
	// TypeHTML is an HTML page or fragment.
	TypeHTML DocumentType = "html"
	// TypeXML is XML course markup (OLX).
	TypeXML DocumentType = "xml"
	// TypeNotebook is a Jupyter notebook.
	TypeNotebook DocumentType = "ipynb"
)

// Granularity describes how a processor cuts a document into units.
type Granularity int

const (
	// GranularityText deduplicates units by their trimmed source text.
	GranularityText Granularity = iota
	// GranularityBlock treats one serialized element as one unit, deduplicated by markup.
	GranularityBlock
	// GranularityCell treats every cell as its own unit, even if two cells share text.
	GranularityCell
)

func (g Granularity) String() string {
	switch g {
	case GranularityText:
		return "text"
	case GranularityBlock:
		return "block"
	case GranularityCell:
		return "cell"
	}
	return "unknown"
}

// TextNode represents a translatable unit of content.
type TextNode struct {
	ID       string            // Position-based identifier ("node-3", "cell-1")
	Key      string            // Deduplication key; units sharing a key share a translation
	Text     string            // Source text sent for translation (trimmed)
	Hash     string            // SHA-256 hash of Text
	NodeType string            // "html_block", "xml_text", "xml_attr", "notebook_cell"
	Context  string            // Where the unit was found, for logs and dry runs
	Metadata map[string]string // Additional info (tag, attribute, cell index)
	Oversize bool              // Exceeds the token budget; never sent to the generator
}

// TranslationRequest is the value sent to the text translation client for one unit.
type TranslationRequest struct {
	Text           string
	DocumentType   DocumentType
	TargetLanguage string
}

// Progress is a (current, total) pair for one document run.
type Progress struct {
	Current int
	Total   int
}

// Fraction returns the completed share in [0,1]. An empty run counts as complete.
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Current) / float64(p.Total)
}

// ProgressFunc observes per-unit progress. It is called with a non-decreasing current value.
type ProgressFunc func(current, total int)

// State is a stage of one document run.
type State int

const (
	StateParsed State = iota
	StateExtracting
	StateTranslating
	StateMerging
	StateSerialized
)

func (s State) String() string {
	switch s {
	case StateParsed:
		return "parsed"
	case StateExtracting:
		return "extracting"
	case StateTranslating:
		return "translating"
	case StateMerging:
		return "merging"
	case StateSerialized:
		return "serialized"
	}
	return "unknown"
}

// StateFunc observes state transitions of a document run.
type StateFunc func(from, to State)

// ProcessedContent is the result of a translation operation.
type ProcessedContent struct {
	Content         string   // Translated content
	TotalUnits      int      // Unique units found
	TranslatedCount int      // Units replaced with generator output
	CachedCount     int      // Units served from the translation cache
	FallbackCount   int      // Units that kept their source text
	OversizeCount   int      // Units skipped for exceeding the token budget
	Degraded        []string // Source text of every unit that kept its original text
}

// DefaultHTMLTags are the block-level HTML elements translated as whole units.
var DefaultHTMLTags = []string{
	"html", "p", "h1", "h2", "h3", "h4", "h5", "h6",
	"ul", "ol", "li", "table", "strong", "section",
	"div", "dl", "dd",
}

// DefaultXMLTags are the OLX elements whose text and attributes are translated.
var DefaultXMLTags = []string{
	"problem", "label", "choice", "sequential", "vertical",
	"chapter", "html", "course",
}

// DefaultXMLAttributes are the only attributes extracted from eligible XML elements.
var DefaultXMLAttributes = []string{"display_name", "markdown"}

// DefaultMaxUnitTokens is the token budget above which an HTML unit is not sent.
const DefaultMaxUnitTokens = 4097

// OversizeStyle marks HTML units that were skipped for size so a reviewer can find them.
const OversizeStyle = "background: #fffee0;"
