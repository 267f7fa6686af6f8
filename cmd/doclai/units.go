package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
)

type unitOutput struct {
	ID       string `json:"id"`
	Type     string `json:"node_type"`
	Text     string `json:"text"`
	Tokens   int    `json:"tokens,omitempty"`
	Oversize bool   `json:"oversize,omitempty"`
	Context  string `json:"context,omitempty"`
}

type unitsOutput struct {
	InputFile    string       `json:"input_file"`
	DocumentType string       `json:"document_type"`
	UnitCount    int          `json:"unit_count"`
	Units        []unitOutput `json:"units"`
}

func newUnitsCmd(root *rootOptions) *cobra.Command {
	var (
		docType string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "units [file]",
		Short: "List the units that would be translated, without calling a model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return runUnits(cmd, root, path, docType, jsonOut)
		},
	}

	cmd.Flags().StringVarP(&docType, "type", "t", "", "Document type: html, xml, ipynb")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func runUnits(cmd *cobra.Command, root *rootOptions, path, typeFlag string, jsonOut bool) error {
	cfg, err := root.loadConfig(cmd)
	if err != nil {
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

	// Extraction never reaches the client, so no generator is built.
	tr := cfg.NewTranslator(nil)
	nodes, err := tr.Extract(input, docType)
	if err != nil {
		return err
	}

	out := unitsOutput{InputFile: name, DocumentType: string(docType), UnitCount: len(nodes)}
	for _, n := range nodes {
		u := unitOutput{ID: n.ID, Type: n.NodeType, Text: n.Text, Oversize: n.Oversize, Context: n.Context}
		if tokens, err := strconv.Atoi(n.Metadata["tokens"]); err == nil {
			u.Tokens = tokens
		}
		out.Units = append(out.Units, u)
	}

	if jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	printUnits(cmd.OutOrStdout(), out)
	return nil
}

func printUnits(w io.Writer, out unitsOutput) {
	fmt.Fprintf(w, "Units in %s (%s)\n", out.InputFile, out.DocumentType)
	fmt.Fprintf(w, "Found %d translatable units:\n\n", out.UnitCount)
	for i, u := range out.Units {
		flag := ""
		if u.Oversize {
			flag = " [oversize, kept as is]"
		}
		fmt.Fprintf(w, "%3d. %-8s %q%s\n", i+1, u.ID, preview(u.Text, 60), flag)
		if u.Context != "" {
			fmt.Fprintf(w, "     Context: %s\n", u.Context)
		}
	}
}
