// twbloc — Tableau workbook (.twb) translator with AI providers.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/twbloc/twbloc/config"
	"github.com/twbloc/twbloc/extract"
	"github.com/twbloc/twbloc/langmeta"
	"github.com/twbloc/twbloc/settings"
	"github.com/twbloc/twbloc/translate"
	"github.com/twbloc/twbloc/twbfile"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Log helpers write tagged, colored lines to stderr.
var (
	tagInfo    = color.New(color.FgBlue).Sprint("[INFO]")
	tagSuccess = color.New(color.FgGreen).Sprint("[OK]")
	tagWarning = color.New(color.Bold, color.FgYellow).Sprint("[WARN]")
	tagError   = color.New(color.FgRed).Sprint("[ERROR]")
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, tagInfo+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, tagSuccess+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, tagWarning+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, tagError+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "twbloc",
		Short: "Tableau workbook translator with AI providers",
		Long: `twbloc — translate Tableau workbook (.twb) files to any language.

User-facing strings (worksheet and dashboard names, captions, aliases,
member aliases, rich-text descriptions) are extracted from the raw XML,
translated in batches through an AI provider, and substituted back with
anchored context-aware rules so the surrounding markup stays untouched
byte for byte. A timestamped backup is always written before the output.

Commands:
  translate   Translate a workbook (creates backup + translated copy)
  extract     List translatable strings per category (no API calls)
  validate    Check that a workbook is well-formed XML
  auth        Manage stored API keys

AI Providers:
  anthropic   Anthropic messages API (default) — API key
  openai      OpenAI-compatible chat endpoint — API key
  mock        Offline identity backend (testing)`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newTranslateCmd(),
		newExtractCmd(),
		newValidateCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("twbloc version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// validate
// ---------------------------------------------------------------------------

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <workbook.twb>",
		Short: "Check that a workbook is well-formed XML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := twbfile.Load(args[0])
			if err != nil {
				return err
			}
			ok, msg := twbfile.Validate(content)
			if !ok {
				return fmt.Errorf("%s: %s", args[0], msg)
			}
			logSuccess("%s: %s", args[0], msg)
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// extract
// ---------------------------------------------------------------------------

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <workbook.twb>",
		Short: "List translatable strings per category (no API calls)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := twbfile.Load(args[0])
			if err != nil {
				return err
			}
			if ok, msg := twbfile.Validate(content); !ok {
				logWarning("%s", msg)
			}

			candidates := extract.Extract(content)
			for _, cat := range extract.Categories {
				items := candidates[cat]
				if len(items) == 0 {
					continue
				}
				fmt.Printf("%s (%d):\n", cat, len(items))
				for _, item := range items {
					fmt.Printf("  %s\n", item)
				}
			}
			logInfo("found %d unique texts to translate", extract.Total(candidates))
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// auth
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage stored API keys",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <provider> <api-key>",
		Short: "Store an API key for a provider",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := settings.LoadStore()
			if err != nil {
				return err
			}
			store[args[0]] = args[1]
			if err := settings.SaveStore(store); err != nil {
				return err
			}
			path, _ := settings.FilePath()
			logSuccess("stored key for %s in %s", args[0], path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List providers with stored keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := settings.LoadStore()
			if err != nil {
				return err
			}
			if len(store) == 0 {
				logInfo("no stored keys")
				return nil
			}
			providers := make([]string, 0, len(store))
			for p := range store {
				providers = append(providers, p)
			}
			sort.Strings(providers)
			for _, p := range providers {
				fmt.Printf("%s: %s\n", p, maskKey(store[p]))
			}
			return nil
		},
	})

	return cmd
}

// maskKey hides all but the last four characters of a key.
func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", 8) + key[len(key)-4:]
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

type translateArgs struct {
	input    string
	language string
	output   string

	provider string
	model    string
	apiKey   string
	baseURL  string

	batchSize  int
	timeout    time.Duration
	maxRetries int
	preserve   string
	dryRun     bool
	verbose    bool
}

func newTranslateCmd() *cobra.Command {
	var a translateArgs

	cmd := &cobra.Command{
		Use:   "translate [workbook.twb]",
		Short: "Translate a workbook (creates backup + translated copy)",
		Long: `Translate a Tableau workbook using an AI provider.

The input may also come from a .twbloc.yaml file in the working
directory; command-line flags win over file values. The original file
is never modified: a timestamped backup is created and the translation
is written to a separate output file.

Examples:
  # Translate to English (default)
  twbloc translate input.twb

  # Translate to French
  twbloc translate input.twb -l French

  # Translate to German with a custom output file
  twbloc translate input.twb -l German -o output_DE.twb

  # Use an OpenAI-compatible endpoint
  twbloc translate input.twb --provider openai --model gpt-4o

  # Show what would be translated without calling the API
  twbloc translate input.twb --dry-run`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				a.input = args[0]
			}
			return runTranslate(&a, cmd.Flags().Changed("language"))
		},
	}

	cmd.Flags().StringVarP(&a.language, "language", "l", "English", "Target language for translation")
	cmd.Flags().StringVarP(&a.output, "output", "o", "", "Output file path (default: derived from input and language)")

	cmd.Flags().StringVar(&a.provider, "provider", "", "AI provider: anthropic, openai, mock")
	cmd.Flags().StringVar(&a.model, "model", "", "Model name (default: provider default)")
	cmd.Flags().StringVar(&a.apiKey, "api-key", "", "API key (or ANTHROPIC_API_KEY / OPENAI_API_KEY / TWBLOC_API_KEY)")
	cmd.Flags().StringVar(&a.baseURL, "base-url", "", "Custom API base URL")

	cmd.Flags().IntVar(&a.batchSize, "batch-size", 0, "Strings per API request (default 20)")
	cmd.Flags().DurationVar(&a.timeout, "timeout", 0, "Request timeout (0 = provider default)")
	cmd.Flags().IntVar(&a.maxRetries, "max-retries", 3, "Maximum retries on rate limit or server error")
	cmd.Flags().StringVar(&a.preserve, "preserve", "", "Comma-separated terms to keep untranslated")
	cmd.Flags().BoolVar(&a.dryRun, "dry-run", false, "Extract and report without calling the API")
	cmd.Flags().BoolVar(&a.verbose, "verbose", false, "Enable detailed logging")

	_ = cmd.RegisterFlagCompletionFunc("provider", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"anthropic\tAnthropic messages API — API key",
			"openai\tOpenAI-compatible chat endpoint — API key",
			"mock\tOffline identity backend (testing)",
		}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// resolveRun merges the config file and command line into a concrete
// run: flags win, file values fill gaps, built-in defaults last.
func resolveRun(cfg config.Config, a *translateArgs, languageFlagSet bool) (*translateArgs, error) {
	merged := *a

	if merged.input == "" {
		merged.input = cfg.Input
	}
	if merged.input == "" {
		return nil, fmt.Errorf("no input file: pass a workbook path or set 'input' in %s", config.FileName)
	}
	if !languageFlagSet && cfg.Language != "" {
		merged.language = cfg.Language
	}
	if merged.output == "" {
		merged.output = cfg.Output
	}
	if merged.output == "" {
		merged.output = twbfile.OutputPath(merged.input, merged.language)
	}
	if merged.provider == "" {
		merged.provider = cfg.Provider
	}
	if merged.model == "" {
		merged.model = cfg.Model
	}
	if merged.baseURL == "" {
		merged.baseURL = cfg.BaseURL
	}
	if merged.batchSize == 0 {
		merged.batchSize = cfg.BatchSize
	}
	return &merged, nil
}

// parsePreserve combines the --preserve flag with the config list.
func parsePreserve(flagValue string, cfgTerms []string) []string {
	terms := append([]string(nil), cfgTerms...)
	for _, t := range strings.Split(flagValue, ",") {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

func runTranslate(a *translateArgs, languageFlagSet bool) error {
	cfg, err := config.Load(config.FileName)
	if err != nil {
		return err
	}
	run, err := resolveRun(cfg, a, languageFlagSet)
	if err != nil {
		return err
	}

	if _, err := os.Stat(run.input); err != nil {
		return fmt.Errorf("input file not found: %s", run.input)
	}

	providers := translate.DefaultProviders()
	prov, ok := providers[run.provider]
	if !ok {
		return fmt.Errorf("unknown provider %q", run.provider)
	}
	if run.model != "" {
		prov.Model = run.model
	}
	if run.baseURL != "" {
		prov.BaseURL = run.baseURL
	}
	if run.timeout > 0 {
		prov.Timeout = run.timeout
	}
	prov.MaxRetries = run.maxRetries
	prov.APIKey = settings.APIKey(prov.ID, run.apiKey)

	if prov.APIKey == "" && prov.ID != translate.ProviderMock && !run.dryRun {
		return fmt.Errorf("no API key for %s: pass --api-key, set the environment variable, or run 'twbloc auth set %s <key>'",
			prov.ID, prov.ID)
	}

	// Configuration header
	langDisplay := run.language
	if meta, ok := langmeta.Registry[strings.ToLower(run.language)]; ok {
		langDisplay = fmt.Sprintf("%s (%s)", run.language, meta.Native)
	}
	logInfo("input:    %s", run.input)
	logInfo("output:   %s", run.output)
	logInfo("language: %s", langDisplay)
	logInfo("provider: %s", prov.Name)

	content, err := twbfile.Load(run.input)
	if err != nil {
		return err
	}

	// Backup before any mutation; the dry run never writes, so it
	// skips the copy.
	backupPath := ""
	if !run.dryRun {
		backupPath, err = twbfile.Backup(run.input)
		if err != nil {
			return err
		}
		logSuccess("backup created: %s", backupPath)
	}

	var bar *progressbar.ProgressBar
	barCategory := ""

	opts := &translate.Options{
		Provider:      prov,
		Language:      run.language,
		BatchSize:     run.batchSize,
		PreserveTerms: parsePreserve(run.preserve, cfg.PreserveTerms),
		DryRun:        run.dryRun,
		Verbose:       run.verbose,
		OnLog:         logInfo,
		OnError:       logWarning,
		OnBatch: func(category string, done, total int) {
			if category != barCategory {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetDescription(category),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionClearOnFinish(),
				)
				barCategory = category
			}
			_ = bar.Set(done)
		},
	}

	translated, report, err := translate.Workbook(context.Background(), content, opts)
	if err != nil {
		return err
	}

	logInfo("found %d unique texts to translate", extract.Total(report.Candidates))
	for _, cat := range extract.Categories {
		if n := report.Found[cat]; n > 0 {
			logInfo("  %s: %d items", cat, n)
		}
	}

	if run.dryRun {
		logSuccess("dry run complete, nothing written")
		return nil
	}

	logInfo("total translations: %d", len(report.Translations))
	for _, pc := range report.Counts {
		if pc.Count > 0 && run.verbose {
			logInfo("  replaced '%s' → '%s' (%d occurrences)", pc.Original, pc.Translated, pc.Count)
		}
	}
	logInfo("total replacements: %d", report.Replacements)

	if err := twbfile.Write(run.output, translated); err != nil {
		return err
	}

	if !report.ValidAfter {
		logError("translated XML is not well-formed: %s", report.MessageAfter)
		logError("the translation may have introduced errors")
		logError("  output written for inspection: %s", run.output)
		logError("  original backup preserved at:  %s", backupPath)
	} else {
		logSuccess("translated XML is well-formed")
	}

	printSummary(run, backupPath, report)
	return nil
}

func printSummary(run *translateArgs, backupPath string, report *translate.Report) {
	valid := "yes"
	if !report.ValidAfter {
		valid = "NO — check the file!"
	}
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	logSuccess("translation complete")
	fmt.Fprintf(os.Stderr, "  input:        %s\n", run.input)
	fmt.Fprintf(os.Stderr, "  output:       %s\n", run.output)
	fmt.Fprintf(os.Stderr, "  backup:       %s\n", backupPath)
	fmt.Fprintf(os.Stderr, "  translations: %d\n", len(report.Translations))
	fmt.Fprintf(os.Stderr, "  replacements: %d\n", report.Replacements)
	fmt.Fprintf(os.Stderr, "  xml valid:    %s\n", valid)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
}
