package archive

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZaguanLabs/doclai"
	"github.com/ZaguanLabs/doclai/logger"
	"github.com/google/uuid"
)

// DocumentTranslator translates one document. *doclai.Translator satisfies it.
type DocumentTranslator interface {
	Process(ctx context.Context, content string, docType doclai.DocumentType) (*doclai.ProcessedContent, error)
}

// FileProgressFunc observes per-type file progress: after each translated
// file of docType, current of total files of that type are done.
type FileProgressFunc func(docType doclai.DocumentType, current, total int)

// FileResult records the outcome for one file.
type FileResult struct {
	Path     string // relative to the archive root
	Type     doclai.DocumentType
	Units    int
	Degraded int
	Err      error // parse failure; the file was left untouched
}

// Report summarises a directory or archive run.
type Report struct {
	Owner Owner
	Files []FileResult
	Total map[doclai.DocumentType]int
}

// Failed returns the files that could not be parsed.
func (r *Report) Failed() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// Translator walks extracted archives and translates their documents in place.
type Translator struct {
	docs     DocumentTranslator
	workDir  string
	progress FileProgressFunc
}

// Option configures a Translator.
type Option func(*Translator)

// WithWorkDir sets where archives are staged. Defaults to os.TempDir().
func WithWorkDir(dir string) Option {
	return func(t *Translator) {
		t.workDir = dir
	}
}

// WithFileProgress registers a per-type file progress callback.
func WithFileProgress(fn FileProgressFunc) Option {
	return func(t *Translator) {
		t.progress = fn
	}
}

// New creates an archive translator on top of a document translator.
func New(docs DocumentTranslator, opts ...Option) *Translator {
	t := &Translator{docs: docs}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// typeOf maps a file name to the document type translated inside archives.
// Notebooks are not part of course exports and are left alone.
func typeOf(name string) (doclai.DocumentType, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html":
		return doclai.TypeHTML, true
	case ".xml":
		return doclai.TypeXML, true
	}
	return "", false
}

// CountFiles counts the translatable files under dir per document type.
func CountFiles(dir string) (map[doclai.DocumentType]int, error) {
	files, err := collect(dir)
	if err != nil {
		return nil, err
	}
	counts := map[doclai.DocumentType]int{doclai.TypeHTML: 0, doclai.TypeXML: 0}
	for _, f := range files {
		counts[f.Type]++
	}
	return counts, nil
}

func collect(dir string) ([]FileResult, error) {
	var files []FileResult
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		docType, ok := typeOf(d.Name())
		if !ok {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, FileResult{Path: rel, Type: docType})
		return nil
	})
	return files, err
}

// TranslateDir translates every .html and .xml file under dir once, in walk
// order, rewriting each file in place. A file that fails to parse is logged,
// recorded and left as it was; cancellation stops the walk.
func (t *Translator) TranslateDir(ctx context.Context, dir string) (*Report, error) {
	files, err := collect(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	report := &Report{Total: map[doclai.DocumentType]int{doclai.TypeHTML: 0, doclai.TypeXML: 0}}
	for _, f := range files {
		report.Total[f.Type]++
	}
	done := make(map[doclai.DocumentType]int, 2)

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		logger.Section(f.Path)

		if err := t.translateFile(ctx, dir, &f); err != nil {
			return report, err
		}
		report.Files = append(report.Files, f)

		done[f.Type]++
		if t.progress != nil {
			t.progress(f.Type, done[f.Type], report.Total[f.Type])
		}
	}
	return report, nil
}

func (t *Translator) translateFile(ctx context.Context, dir string, f *FileResult) error {
	path := filepath.Join(dir, f.Path)
	data, err := os.ReadFile(path) // #nosec G304 - file found by walking dir
	if err != nil {
		return fmt.Errorf("reading %s: %w", f.Path, err)
	}

	result, err := t.docs.Process(ctx, string(data), f.Type)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("Skipping %s: %v", f.Path, err)
		f.Err = err
		return nil
	}
	f.Units = result.TotalUnits
	f.Degraded = len(result.Degraded)

	if result.Content == string(data) {
		return nil
	}
	if err := os.WriteFile(path, []byte(result.Content), fileMode); err != nil {
		return fmt.Errorf("writing %s: %w", f.Path, err)
	}
	return nil
}

// TranslateArchive extracts the gzip tarball from r into a fresh staging
// directory, translates it and writes the repacked archive to w. The staging
// directory is removed afterwards.
func (t *Translator) TranslateArchive(ctx context.Context, r io.Reader, w io.Writer) (*Report, error) {
	base := t.workDir
	if base == "" {
		base = os.TempDir()
	}
	staging := filepath.Join(base, "doclai-"+uuid.New().String())
	if err := os.MkdirAll(staging, dirMode); err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			logger.Warn("Could not remove %s: %v", staging, err)
		}
	}()

	owner, err := Extract(r, staging)
	if err != nil {
		return nil, err
	}
	logger.Debug("extracted archive into %s (owner %s:%s)", staging, owner.User, owner.Group)

	report, err := t.TranslateDir(ctx, staging)
	if err != nil {
		return report, err
	}
	report.Owner = owner

	if err := Pack(w, staging, owner); err != nil {
		return report, err
	}
	return report, nil
}
