// Command doclai translates HTML pages, OLX course markup, Jupyter notebooks
// and course archives while keeping their structure intact.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZaguanLabs/doclai"
	"github.com/ZaguanLabs/doclai/config"
	"github.com/ZaguanLabs/doclai/logger"
	"github.com/spf13/cobra"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	logger.SetOutput(stderr)
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.Execute()
}

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath  string
	lang        string
	customLang  string
	provider    string
	model       string
	apiKey      string
	baseURL     string
	cacheType   string
	concurrency int
	verbose     bool
	quiet       bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   doclai.Name,
		Short: "Structure-preserving AI translation for documents",
		Long: doclai.Description + `.

Only human-readable text is sent to the model: HTML blocks, OLX element text
and display names, and notebook markdown cells. Markup and code cells are
written back untouched. A unit that cannot be translated keeps its original
text.

Providers:
  openai   OpenAI chat completions (OPENAI_API_KEY)
  ollama   Local Ollama server
  gemini   Google Gemini (GEMINI_API_KEY)
  lambda   AWS Lambda function running a generator
  mock     Offline echo provider for dry runs and tests`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "Config file (.toml, .yaml or .yml)")
	pf.StringVarP(&opts.lang, "lang", "l", "", "Target language name or locale (e.g. Ukrainian, uk_UA), or \""+doclai.OtherLanguage+"\"")
	pf.StringVar(&opts.customLang, "custom-lang", "", "Target language label used with --lang \""+doclai.OtherLanguage+"\"")
	pf.StringVar(&opts.provider, "provider", "", "Generator backend: "+strings.Join(config.Providers, ", "))
	pf.StringVar(&opts.model, "model", "", "Model name (provider default when empty)")
	pf.StringVar(&opts.apiKey, "api-key", "", "API key (default: OPENAI_API_KEY or GEMINI_API_KEY)")
	pf.StringVar(&opts.baseURL, "base-url", "", "Custom API base URL")
	pf.StringVar(&opts.cacheType, "cache", "", "Translation cache: none, memory, file, redis")
	pf.IntVar(&opts.concurrency, "concurrency", 0, "Units translated at once per document")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable detailed logging")
	pf.BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress progress output")

	_ = root.RegisterFlagCompletionFunc("provider", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return config.Providers, cobra.ShellCompDirectiveNoFileComp
	})
	_ = root.RegisterFlagCompletionFunc("lang", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return append(append([]string{}, doclai.OfferedLanguages...), doclai.OtherLanguage), cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(
		newTranslateCmd(opts),
		newArchiveCmd(opts),
		newUnitsCmd(opts),
		newDiffCmd(opts),
		newVersionCmd(),
	)
	return root
}

// loadConfig reads the config file, the environment and then the flags
// that were set explicitly, in that order of increasing precedence.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	fileKey := cfg.APIKey
	cfg.ApplyEnv(os.Getenv)

	flags := cmd.Flags()
	if flags.Changed("lang") || flags.Changed("custom-lang") {
		lang, err := resolveLang(o.lang, o.customLang)
		if err != nil {
			return nil, err
		}
		cfg.TargetLanguage = lang
	}
	if flags.Changed("provider") {
		cfg.Provider = o.provider
		cfg.APIKey = fileKey
		cfg.FillAPIKey(os.Getenv)
	}
	if flags.Changed("model") {
		cfg.Model = o.model
	}
	if flags.Changed("api-key") {
		cfg.APIKey = o.apiKey
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = o.baseURL
	}
	if flags.Changed("cache") {
		cfg.Cache.Type = o.cacheType
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = o.concurrency
	}
	if o.verbose {
		cfg.Verbose = true
	}
	logger.SetVerbose(cfg.Verbose)
	return cfg, nil
}

// resolveLang maps the --lang choice to a language label. A bare
// --custom-lang counts as choosing OtherLanguage.
func resolveLang(choice, custom string) (string, error) {
	if strings.TrimSpace(choice) == "" && strings.TrimSpace(custom) != "" {
		choice = doclai.OtherLanguage
	}
	if choice == doclai.OtherLanguage && strings.TrimSpace(custom) == "" {
		return "", fmt.Errorf("--custom-lang is required with --lang %q", doclai.OtherLanguage)
	}
	return doclai.ResolveLanguage(choice, custom), nil
}

// showProgress reports whether progress bars may be drawn. Verbose log
// lines would break the in-place bar, so bars are off in verbose mode.
func (o *rootOptions) showProgress() bool {
	return !o.quiet && !logger.IsVerbose()
}

func requireLang(cfg *config.Config) error {
	if strings.TrimSpace(cfg.TargetLanguage) == "" {
		return fmt.Errorf("--lang is required (or target_language in the config file)")
	}
	return nil
}

// detectType maps --type or the file extension to a document type.
func detectType(path, override string) (doclai.DocumentType, error) {
	key := strings.ToLower(strings.TrimSpace(override))
	if key == "" {
		key = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch key {
	case "html", "htm":
		return doclai.TypeHTML, nil
	case "xml", "olx":
		return doclai.TypeXML, nil
	case "ipynb", "notebook":
		return doclai.TypeNotebook, nil
	case "":
		return "", fmt.Errorf("cannot detect document type; pass --type html, xml or ipynb")
	}
	return "", fmt.Errorf("unsupported document type %q", key)
}

// readInput reads the named file, or stdin when path is empty or "-".
func readInput(cmd *cobra.Command, path string) (string, string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), "stdin", nil
	}
	data, err := os.ReadFile(path) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return "", "", fmt.Errorf("reading file: %w", err)
	}
	return string(data), filepath.Base(path), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", doclai.Name, doclai.FullVersion())
			if doclai.GitCommit != "unknown" && doclai.GitCommit != "" {
				fmt.Fprintf(out, "  commit:  %s\n", doclai.GitCommit)
			}
			if doclai.BuildDate != "unknown" && doclai.BuildDate != "" {
				fmt.Fprintf(out, "  built:   %s\n", doclai.BuildDate)
			}
		},
	}
}
