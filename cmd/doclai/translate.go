package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ZaguanLabs/doclai"
	"github.com/ZaguanLabs/doclai/logger"
	"github.com/spf13/cobra"
)

// translateOutput is the --json form of a translated document.
type translateOutput struct {
	Content         string   `json:"content"`
	DocumentType    string   `json:"document_type"`
	TargetLanguage  string   `json:"target_language"`
	TotalUnits      int      `json:"total_units"`
	TranslatedCount int      `json:"translated_count"`
	CachedCount     int      `json:"cached_count"`
	FallbackCount   int      `json:"fallback_count"`
	OversizeCount   int      `json:"oversize_count"`
	Degraded        []string `json:"degraded,omitempty"`
	Residual        []string `json:"residual,omitempty"`
	ElapsedMs       int64    `json:"elapsed_ms"`
}

func newTranslateCmd(root *rootOptions) *cobra.Command {
	var (
		output   string
		docType  string
		jsonOut  bool
		noVerify bool
	)

	cmd := &cobra.Command{
		Use:   "translate [file]",
		Short: "Translate one HTML, XML or notebook document",
		Long: `Translate one document and write it to stdout or --output.

The document type follows the file extension (.html, .htm, .xml, .ipynb)
unless --type is given; --type is required when reading stdin.

Examples:
  doclai translate --lang Ukrainian problem.xml -o problem.uk.xml
  doclai translate --lang uk_UA --provider ollama lesson.ipynb
  cat page.html | doclai translate --type html --lang French`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return runTranslate(cmd, root, path, output, docType, jsonOut, !noVerify)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&docType, "type", "t", "", "Document type: html, xml, ipynb")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output result as JSON")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip the check for units left in the source language")
	return cmd
}

func runTranslate(cmd *cobra.Command, root *rootOptions, path, output, typeFlag string, jsonOut, verify bool) error {
	cfg, err := root.loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := requireLang(cfg); err != nil {
		return err
	}
	docType, err := detectType(path, typeFlag)
	if err != nil {
		return err
	}
	input, name, err := readInput(cmd, path)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	session, err := cfg.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("closing session: %v", err)
		}
	}()

	stderr := cmd.ErrOrStderr()
	var bar *progressLine
	if !root.quiet {
		fmt.Fprintf(stderr, "Translating %s to %s...\n", name, doclai.GetLanguageName(cfg.TargetLanguage))
	}
	if root.showProgress() {
		bar = newProgressLine(stderr, string(docType))
	}
	tr := session.Translator(
		doclai.WithProgress(bar.Update),
		doclai.WithStateHook(func(from, to doclai.State) {
			logger.Debug("%s: %s -> %s", name, from, to)
		}),
	)

	start := time.Now()
	res, err := tr.Process(ctx, input, docType)
	bar.Done()
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}
	elapsed := time.Since(start)

	var residual []doclai.TextNode
	if verify && res.TotalUnits > 0 {
		residual = residualUnits(tr, input, res, docType)
	}

	var out io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output) // #nosec G304 - CLI tool writes user-specified files
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if jsonOut {
		return writeTranslateJSON(out, cfg.TargetLanguage, docType, res, residual, elapsed)
	}
	if _, err := io.WriteString(out, res.Content); err != nil {
		return err
	}
	if !root.quiet {
		printSummary(stderr, name, res, len(residual), elapsed)
	}
	return nil
}

// residualUnits re-extracts the output and returns source units that came
// back verbatim, excluding those already known to have kept their text.
func residualUnits(tr *doclai.Translator, source string, res *doclai.ProcessedContent, docType doclai.DocumentType) []doclai.TextNode {
	before, err := tr.Extract(source, docType)
	if err != nil {
		return nil
	}
	after, err := tr.Extract(res.Content, docType)
	if err != nil {
		logger.Warn("Translated output could not be re-read: %v", err)
		return nil
	}
	kept := make(map[string]bool, len(res.Degraded))
	for _, text := range res.Degraded {
		kept[text] = true
	}
	var out []doclai.TextNode
	for _, n := range doclai.Untranslated(before, after) {
		if n.Oversize || kept[n.Text] {
			continue
		}
		logger.Debug("unchanged after translation: %q", preview(n.Text, 60))
		out = append(out, n)
	}
	return out
}

func writeTranslateJSON(w io.Writer, lang string, docType doclai.DocumentType, res *doclai.ProcessedContent, residual []doclai.TextNode, elapsed time.Duration) error {
	out := translateOutput{
		Content:         res.Content,
		DocumentType:    string(docType),
		TargetLanguage:  lang,
		TotalUnits:      res.TotalUnits,
		TranslatedCount: res.TranslatedCount,
		CachedCount:     res.CachedCount,
		FallbackCount:   res.FallbackCount,
		OversizeCount:   res.OversizeCount,
		Degraded:        res.Degraded,
		ElapsedMs:       elapsed.Milliseconds(),
	}
	for _, n := range residual {
		out.Residual = append(out.Residual, n.Text)
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// preview shortens s to at most n runes.
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
