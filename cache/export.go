package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
)

// ExportVersion is written into every export file.
const ExportVersion = "2"

// ExportFormat is the JSON document written by Exporter and read by Importer.
type ExportFormat struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Entries    []ExportEntry     `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ExportEntry is one cached translation. Type and Language are derived from
// the key for readability and ignored on import.
type ExportEntry struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Type     string `json:"type,omitempty"`
	Language string `json:"language,omitempty"`
}

// Exporter writes the contents of an enumerable cache.
type Exporter struct {
	cache Enumerable
}

// NewExporter creates an exporter for cache.
func NewExporter(cache Enumerable) *Exporter {
	return &Exporter{cache: cache}
}

// Export writes the cache as indented JSON, entries sorted by key.
func (e *Exporter) Export(w io.Writer, metadata map[string]string) error {
	data, err := e.cache.Entries()
	if err != nil {
		return fmt.Errorf("listing cache entries: %w", err)
	}

	doc := ExportFormat{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:    make([]ExportEntry, 0, len(data)),
		Metadata:   metadata,
	}
	for key, value := range data {
		entry := ExportEntry{Key: key, Value: value}
		if docType, _, lang, ok := SplitKey(key); ok {
			entry.Type = string(docType)
			entry.Language = lang
		}
		doc.Entries = append(doc.Entries, entry)
	}
	sort.Slice(doc.Entries, func(i, j int) bool { return doc.Entries[i].Key < doc.Entries[j].Key })

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return nil
}

// ExportToFile writes the export to path, replacing any existing file.
func (e *Exporter) ExportToFile(path string, metadata map[string]string) error {
	f, err := os.Create(path) // #nosec G304 - path is user-provided
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := e.Export(f, metadata); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ImportResult summarises one import.
type ImportResult struct {
	Version  string
	Metadata map[string]string
	Imported int
	Skipped  int // blank values or malformed keys
	Failed   int // rejected by the cache
}

// Importer loads exported entries into any cache.
type Importer struct {
	cache TranslationCache
}

// NewImporter creates an importer writing into cache.
func NewImporter(cache TranslationCache) *Importer {
	return &Importer{cache: cache}
}

// Import reads an export document from r. Entries with a blank value or a
// key that was not built by doclai.CacheKey are skipped.
func (i *Importer) Import(r io.Reader) (*ImportResult, error) {
	var doc ExportFormat
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding export: %w", err)
	}

	res := &ImportResult{Version: doc.Version, Metadata: doc.Metadata}
	for _, entry := range doc.Entries {
		if _, _, _, ok := SplitKey(entry.Key); !ok || strings.TrimSpace(entry.Value) == "" {
			res.Skipped++
			continue
		}
		if err := i.cache.Set(entry.Key, entry.Value); err != nil {
			res.Failed++
			continue
		}
		res.Imported++
	}
	return res, nil
}

// ImportFromFile imports the export stored at path.
func (i *Importer) ImportFromFile(path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is user-provided
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	return i.Import(f)
}
