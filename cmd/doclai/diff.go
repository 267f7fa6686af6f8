package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ZaguanLabs/doclai"
	"github.com/spf13/cobra"
)

type diffOutput struct {
	Previous string `json:"previous_file"`
	Current  string `json:"current_file"`
	Stats    struct {
		Added     int `json:"added"`
		Removed   int `json:"removed"`
		Modified  int `json:"modified"`
		Unchanged int `json:"unchanged"`
	} `json:"stats"`
	NeedsTranslation []string `json:"needs_translation"`
	Added            []string `json:"added,omitempty"`
	Removed          []string `json:"removed,omitempty"`
	Modified         []struct {
		Old string `json:"old"`
		New string `json:"new"`
	} `json:"modified,omitempty"`
}

func newDiffCmd(root *rootOptions) *cobra.Command {
	var (
		docType string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "diff <previous> <current>",
		Short: "Compare the translatable units of two versions of a document",
		Long: `Compare the units of two versions of a document and report which ones
are new or changed and so need translating. Comparing a source document with
its translation lists the units the translation left untouched.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, root, args[0], args[1], docType, jsonOut)
		},
	}

	cmd.Flags().StringVarP(&docType, "type", "t", "", "Document type: html, xml, ipynb")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func runDiff(cmd *cobra.Command, root *rootOptions, oldPath, newPath, typeFlag string, jsonOut bool) error {
	cfg, err := root.loadConfig(cmd)
	if err != nil {
		return err
	}
	docType, err := detectType(newPath, typeFlag)
	if err != nil {
		return err
	}

	tr := cfg.NewTranslator(nil)
	oldNodes, err := extractFile(tr, oldPath, docType)
	if err != nil {
		return fmt.Errorf("parsing previous version: %w", err)
	}
	newNodes, err := extractFile(tr, newPath, docType)
	if err != nil {
		return fmt.Errorf("parsing current version: %w", err)
	}

	diff := doclai.DiffContentWithContext(oldNodes, newNodes)
	if jsonOut {
		return writeDiffJSON(cmd.OutOrStdout(), oldPath, newPath, diff)
	}
	printDiff(cmd.OutOrStdout(), oldPath, newPath, diff)
	return nil
}

func extractFile(tr *doclai.Translator, path string, docType doclai.DocumentType) ([]doclai.TextNode, error) {
	data, err := os.ReadFile(path) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return nil, err
	}
	return tr.Extract(string(data), docType)
}

func writeDiffJSON(w io.Writer, oldPath, newPath string, diff *doclai.DiffResult) error {
	stats := diff.Stats()
	out := diffOutput{Previous: filepath.Base(oldPath), Current: filepath.Base(newPath)}
	out.Stats.Added = stats.Added
	out.Stats.Removed = stats.Removed
	out.Stats.Modified = stats.Modified
	out.Stats.Unchanged = stats.Unchanged

	out.NeedsTranslation = []string{}
	for _, n := range diff.NeedsTranslation() {
		out.NeedsTranslation = append(out.NeedsTranslation, n.Text)
	}
	for _, n := range diff.Added {
		out.Added = append(out.Added, n.Text)
	}
	for _, n := range diff.Removed {
		out.Removed = append(out.Removed, n.Text)
	}
	for _, m := range diff.Modified {
		out.Modified = append(out.Modified, struct {
			Old string `json:"old"`
			New string `json:"new"`
		}{Old: m.Old.Text, New: m.New.Text})
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printDiff(w io.Writer, oldPath, newPath string, diff *doclai.DiffResult) {
	stats := diff.Stats()
	fmt.Fprintf(w, "Diff: %s vs %s\n\n", filepath.Base(newPath), filepath.Base(oldPath))
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Unchanged: %d\n", stats.Unchanged)
	fmt.Fprintf(w, "  Added:     %d\n", stats.Added)
	fmt.Fprintf(w, "  Removed:   %d\n", stats.Removed)
	fmt.Fprintf(w, "  Modified:  %d\n\n", stats.Modified)

	if !diff.HasChanges() {
		fmt.Fprintf(w, "No changes detected.\n")
		return
	}
	fmt.Fprintf(w, "Needs translation: %d units\n\n", len(diff.NeedsTranslation()))

	if len(diff.Added) > 0 {
		fmt.Fprintf(w, "Added:\n")
		for _, n := range diff.Added {
			fmt.Fprintf(w, "  + %q\n", preview(n.Text, 50))
		}
		fmt.Fprintln(w)
	}
	if len(diff.Modified) > 0 {
		fmt.Fprintf(w, "Modified:\n")
		for _, m := range diff.Modified {
			fmt.Fprintf(w, "  ~ %q -> %q\n", preview(m.Old.Text, 30), preview(m.New.Text, 30))
		}
		fmt.Fprintln(w)
	}
	if len(diff.Removed) > 0 {
		fmt.Fprintf(w, "Removed:\n")
		for _, n := range diff.Removed {
			fmt.Fprintf(w, "  - %q\n", preview(n.Text, 50))
		}
		fmt.Fprintln(w)
	}
}
