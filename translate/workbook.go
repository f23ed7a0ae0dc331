package translate

import (
	"context"

	"github.com/twbloc/twbloc/extract"
	"github.com/twbloc/twbloc/rewrite"
	"github.com/twbloc/twbloc/twbfile"
)

// Report summarizes a whole-workbook translation run.
type Report struct {
	// Found is the number of unique candidates per category.
	Found map[extract.Category]int
	// Candidates is the extracted candidate set itself.
	Candidates map[extract.Category][]string
	// Translations is the original→translated map obtained from the
	// gateway. Immutable once substitution begins.
	Translations map[string]string
	// Replacements is the total number of substitutions made.
	Replacements int
	// Counts lists per-pair replacement counts in application order.
	Counts []rewrite.PairCount

	// ValidBefore/ValidAfter are the well-formedness results around the
	// substitution pass, with their diagnostic messages.
	ValidBefore   bool
	MessageBefore string
	ValidAfter    bool
	MessageAfter  string
}

// Workbook runs the full pipeline over raw workbook text: validate,
// extract, translate per category in batches, substitute longest-first,
// validate again. It returns the rewritten text and a run report.
//
// Validation failures are reported, never fatal: a broken source gets a
// warning and the pipeline proceeds; post-substitution corruption is
// surfaced through the report so the caller can warn loudly while still
// persisting the output. Gateway failures degrade coverage only.
func Workbook(ctx context.Context, content string, opts *Options) (string, *Report, error) {
	report := &Report{
		Found:        make(map[extract.Category]int),
		Translations: make(map[string]string),
	}

	report.ValidBefore, report.MessageBefore = twbfile.Validate(content)
	if !report.ValidBefore {
		opts.logError("original file has XML issues: %s", report.MessageBefore)
		opts.log("proceeding anyway, review the results carefully")
	}

	report.Candidates = extract.Extract(content)
	for cat, items := range report.Candidates {
		report.Found[cat] = len(items)
	}

	if opts.DryRun {
		report.ValidAfter, report.MessageAfter = report.ValidBefore, report.MessageBefore
		return content, report, nil
	}

	backend, err := opts.backend()
	if err != nil {
		return "", nil, err
	}

	for _, cat := range extract.Categories {
		items := report.Candidates[cat]
		if len(items) == 0 {
			continue
		}
		opts.log("translating %s to %s (%d items)", cat, opts.Language, len(items))
		for orig, trans := range Items(ctx, backend, items, string(cat), opts) {
			report.Translations[orig] = trans
		}
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}
	}

	result := rewrite.ApplyAll(content, report.Translations)
	report.Replacements = result.Total
	report.Counts = result.Counts

	report.ValidAfter, report.MessageAfter = twbfile.Validate(result.Content)
	return result.Content, report, nil
}
