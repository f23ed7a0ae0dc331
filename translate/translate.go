// Package translate implements AI-powered translation of workbook
// strings using HTTP API-based providers (Anthropic, OpenAI-compatible
// endpoints), plus the whole-workbook translation pipeline.
//
// Candidates are sent in bounded batches as a numbered list and the
// reply is parsed back positionally. The gateway is best-effort: a
// failed or malformed batch is logged and dropped, never fatal — losing
// a batch only degrades translation coverage.
package translate

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Provider IDs
// ---------------------------------------------------------------------------

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderMock      = "mock"
)

// DefaultBatchSize is how many candidate strings are sent per request,
// to stay inside service payload and response limits.
const DefaultBatchSize = 20

// Provider holds the configuration for an AI translation service.
type Provider struct {
	// ID is the provider identifier (anthropic, openai, mock).
	ID string
	// Name is the display name.
	Name string
	// BaseURL is the API base URL (empty = provider default).
	BaseURL string
	// APIKey is the authentication key.
	APIKey string
	// Model is the model identifier.
	Model string
	// Timeout is the request timeout.
	Timeout time.Duration
	// MaxRetries is the HTTP retry budget for rate limits and server
	// errors (0 = default of 3).
	MaxRetries int
}

// DefaultProviders returns the pre-configured provider definitions.
func DefaultProviders() map[string]Provider {
	return map[string]Provider{
		ProviderAnthropic: {
			ID:      ProviderAnthropic,
			Name:    "Anthropic",
			BaseURL: "https://api.anthropic.com/v1",
			Model:   "claude-sonnet-4-5",
			Timeout: 120 * time.Second,
		},
		ProviderOpenAI: {
			ID:      ProviderOpenAI,
			Name:    "OpenAI",
			Model:   "gpt-4o-mini",
			Timeout: 60 * time.Second,
		},
		ProviderMock: {
			ID:   ProviderMock,
			Name: "Mock (identity)",
		},
	}
}

// ---------------------------------------------------------------------------
// Backend
// ---------------------------------------------------------------------------

// Backend generates a completion for a prompt. Implementations wrap one
// provider API; the gateway only ever sees free-form reply text.
type Backend interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// NewBackend constructs the backend for a provider configuration.
func NewBackend(prov Provider) (Backend, error) {
	switch prov.ID {
	case ProviderAnthropic, "":
		if prov.APIKey == "" {
			return nil, fmt.Errorf("provider %s requires an API key", ProviderAnthropic)
		}
		return newAnthropicBackend(prov), nil
	case ProviderOpenAI:
		if prov.APIKey == "" {
			return nil, fmt.Errorf("provider %s requires an API key", ProviderOpenAI)
		}
		return newOpenAIBackend(prov), nil
	case ProviderMock:
		return &MockBackend{}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", prov.ID)
	}
}

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

// Options controls the translation behavior.
type Options struct {
	// Provider is the AI provider configuration.
	Provider Provider
	// Backend overrides the provider-derived backend (used in tests and
	// by the mock provider).
	Backend Backend
	// Language is the target language name (e.g. "English", "German").
	Language string
	// BatchSize is how many strings to translate per API call
	// (0 = DefaultBatchSize).
	BatchSize int
	// PreserveTerms lists proper nouns and place names the service must
	// keep verbatim.
	PreserveTerms []string
	// DryRun skips the gateway entirely; extraction and reporting only.
	DryRun bool
	// OnLog emits log messages during translation.
	OnLog func(format string, args ...any)
	// OnError emits error messages during translation.
	OnError func(format string, args ...any)
	// OnBatch is called after each successful batch, with the category
	// and running item counts. Failed batches do not advance done, so
	// a run with errors finishes short of total.
	OnBatch func(category string, done, total int)
	// Verbose enables detailed logging.
	Verbose bool
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) logError(format string, args ...any) {
	if o.OnError != nil {
		o.OnError(format, args...)
	} else if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) effectiveBatchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return DefaultBatchSize
}

func (o *Options) backend() (Backend, error) {
	if o.Backend != nil {
		return o.Backend, nil
	}
	return NewBackend(o.Provider)
}

// ---------------------------------------------------------------------------
// Prompt
// ---------------------------------------------------------------------------

// buildUserPrompt renders the numbered-list translation request for one
// batch of candidate strings.
func buildUserPrompt(items []string, language, category string, preserveTerms []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Translate the following texts to %s.\n\n", language)
	b.WriteString("IMPORTANT RULES:\n")
	if len(preserveTerms) > 0 {
		fmt.Fprintf(&b, "1. Keep place names and company names as they are (e.g., %s)\n",
			quoteTerms(preserveTerms))
	} else {
		b.WriteString("1. Keep place names and company names as they are\n")
	}
	fmt.Fprintf(&b, "2. Preserve Tableau technical terminology exactly as it should be in %s\n", language)
	b.WriteString("3. Only translate the user-facing labels and descriptions\n")
	b.WriteString("4. Do NOT include any special characters that need XML escaping (use plain quotes, not &quot;)\n")
	b.WriteString("5. Return ONLY a numbered list with translations, one per line\n")
	b.WriteString("6. Keep the same order as the input\n\n")

	fmt.Fprintf(&b, "Context: %s\n\n", category)

	b.WriteString("Texts to translate:\n")
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item)
	}

	b.WriteString("\nReturn format (plain text only, no special XML characters):\n")
	b.WriteString("1. [translation of first item]\n")
	b.WriteString("2. [translation of second item]\n")
	b.WriteString("etc.\n")

	return b.String()
}

func quoteTerms(terms []string) string {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + t + `"`
	}
	return strings.Join(quoted, ", ")
}

// systemPrompt frames the task for the model.
func systemPrompt(language string) string {
	return fmt.Sprintf("You are a professional translator localizing Tableau workbook labels into %s. "+
		"You reply with exactly the requested numbered list and nothing else.", language)
}

// ---------------------------------------------------------------------------
// Reply parsing
// ---------------------------------------------------------------------------

var numberedLineRe = regexp.MustCompile(`^(\d+)\.\s*(.*)`)

// parseNumberedList maps reply lines back onto the batch items. Line i
// of the reply answers item i, and the printed numeral must equal i+1;
// a line that fails either check is dropped (only that item loses its
// translation, later items keep their own line). This guards against a
// service that mis-numbers, reorders, or pads the list: a bad line can
// no longer silently shift every subsequent translation in the batch.
// Dropped line indexes are returned for diagnostics.
func parseNumberedList(reply string, items []string) (map[string]string, []int) {
	translations := make(map[string]string)
	var dropped []int

	lines := strings.Split(strings.TrimSpace(reply), "\n")
	for i, line := range lines {
		if i >= len(items) {
			break
		}
		m := numberedLineRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			dropped = append(dropped, i)
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n != i+1 {
			dropped = append(dropped, i)
			continue
		}
		translated := strings.TrimSpace(m[2])
		translated = strings.Trim(translated, `"`)
		translated = strings.Trim(translated, `'`)
		if translated == "" {
			dropped = append(dropped, i)
			continue
		}
		translations[items[i]] = translated
	}

	return translations, dropped
}

// ---------------------------------------------------------------------------
// Gateway
// ---------------------------------------------------------------------------

// Items translates an ordered list of candidate strings with the given
// category as context, batching requests. The returned map holds the
// translations actually obtained; a missing key means no translation,
// not an identity translation. Batch failures are logged and skipped.
func Items(ctx context.Context, backend Backend, items []string, category string, opts *Options) map[string]string {
	translations := make(map[string]string)
	if len(items) == 0 {
		return translations
	}

	batchSize := opts.effectiveBatchSize()
	for start := 0; start < len(items); start += batchSize {
		end := min(start+batchSize, len(items))
		batch := items[start:end]

		if opts.Verbose {
			opts.log("  batch %d: %d items", start/batchSize+1, len(batch))
		}

		reply, err := backend.Complete(ctx,
			systemPrompt(opts.Language),
			buildUserPrompt(batch, opts.Language, category, opts.PreserveTerms))
		if err != nil {
			// Failed items don't count as done; a bar that stops
			// short of the total marks the run as degraded.
			opts.logError("translating %s batch %d: %v", category, start/batchSize+1, err)
			continue
		}

		parsed, droppedLines := parseNumberedList(reply, batch)
		if len(droppedLines) > 0 {
			opts.logError("%s batch %d: %d reply line(s) unusable, items dropped",
				category, start/batchSize+1, len(droppedLines))
		}
		for orig, trans := range parsed {
			translations[orig] = trans
		}

		if opts.OnBatch != nil {
			opts.OnBatch(category, end, len(items))
		}
	}

	return translations
}
