package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ZaguanLabs/doclai"
	"github.com/ZaguanLabs/doclai/archive"
	"github.com/ZaguanLabs/doclai/logger"
	"github.com/spf13/cobra"
)

func newArchiveCmd(root *rootOptions) *cobra.Command {
	var (
		outDir  string
		workDir string
	)

	cmd := &cobra.Command{
		Use:   "archive <course.tar.gz>",
		Short: "Translate every HTML and XML file in a course archive",
		Long: `Unpack a gzip tarball, translate each .html and .xml file once and
repack it as <language>_<name> in the output directory. Entries keep the
owner and group of the archive's first entry.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchive(cmd, root, args[0], outDir, workDir)
		},
	}

	cmd.Flags().StringVarP(&outDir, "output-dir", "o", "translated_archives", "Directory for translated archives")
	cmd.Flags().StringVar(&workDir, "work-dir", "", "Staging directory (default: system temp)")
	return cmd
}

func runArchive(cmd *cobra.Command, root *rootOptions, path, outDir, workDir string) error {
	cfg, err := root.loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := requireLang(cfg); err != nil {
		return err
	}

	in, err := os.Open(path) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	outPath := filepath.Join(outDir, archive.OutputName(path, doclai.GetLanguageName(cfg.TargetLanguage)))

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
	var opts []archive.Option
	if root.showProgress() {
		opts = append(opts, archive.WithFileProgress(newFileProgress(stderr).Update))
	}
	if workDir != "" {
		opts = append(opts, archive.WithWorkDir(workDir))
	}
	at := archive.New(session.Translator(), opts...)

	out, err := os.Create(outPath) // #nosec G304 - derived from user-specified paths
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}

	start := time.Now()
	report, err := at.TranslateArchive(ctx, in, out)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(outPath)
		return fmt.Errorf("translating archive: %w", err)
	}

	if !root.quiet {
		fmt.Fprintf(stderr, "%s %s in %v\n", titleStyle.Render("Done"), filepath.Base(path), time.Since(start).Round(time.Millisecond))
		fmt.Fprintf(stderr, "  HTML files:   %d\n", report.Total[doclai.TypeHTML])
		fmt.Fprintf(stderr, "  XML files:    %d\n", report.Total[doclai.TypeXML])
		degraded := 0
		for _, f := range report.Files {
			degraded += f.Degraded
		}
		if degraded > 0 {
			fmt.Fprintf(stderr, "  %s\n", warnStyle.Render(fmt.Sprintf("%d unit(s) kept their source text", degraded)))
		}
		for _, f := range report.Failed() {
			fmt.Fprintf(stderr, "  %s %s: %v\n", warnStyle.Render("skipped"), f.Path, f.Err)
		}
		fmt.Fprintf(stderr, "  Output:       %s\n", outPath)
	}
	fmt.Fprintln(cmd.OutOrStdout(), outPath)
	return nil
}

// fileProgress draws one bar per document type. When files of another type
// come next, the line of the bar drawn last is ended first.
type fileProgress struct {
	w      io.Writer
	bars   map[doclai.DocumentType]*progressLine
	active *progressLine
}

func newFileProgress(w io.Writer) *fileProgress {
	return &fileProgress{w: w, bars: make(map[doclai.DocumentType]*progressLine)}
}

// Update implements archive.FileProgressFunc.
func (f *fileProgress) Update(docType doclai.DocumentType, current, total int) {
	bar, ok := f.bars[docType]
	if !ok {
		bar = newProgressLine(f.w, string(docType)+" files")
		f.bars[docType] = bar
	}
	if f.active != nil && f.active != bar {
		f.active.Done()
	}
	f.active = bar

	bar.Update(current, total)
	if current == total {
		bar.Done()
	}
}
