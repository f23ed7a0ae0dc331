// Package extract scans raw Tableau workbook text for user-facing
// strings worth translating. Strings are collected per structural
// category (worksheet names, captions, aliases, ...) with a fixed
// extraction rule and exclusion filter per category.
//
// Extraction is pattern-based on purpose: the workbook is never parsed
// into a tree, so positions and quoting in the source text stay exactly
// as Tableau wrote them.
package extract

import (
	"regexp"
	"sort"
	"strings"
)

// Category identifies the structural context a candidate string came
// from. The gateway passes it to the translation service as context,
// and the rewrite rules are scoped per category.
type Category string

const (
	CategoryWorksheetNames Category = "worksheet_names"
	CategoryDashboardNames Category = "dashboard_names"
	CategoryCaptions       Category = "captions"
	CategoryAliases        Category = "aliases"
	CategoryMembers        Category = "members"
	CategoryDescriptions   Category = "descriptions"
)

// Categories lists all extraction categories in processing order.
var Categories = []Category{
	CategoryWorksheetNames,
	CategoryDashboardNames,
	CategoryCaptions,
	CategoryAliases,
	CategoryMembers,
	CategoryDescriptions,
}

var (
	worksheetRe = regexp.MustCompile(`<worksheet name='([^']+)'>`)
	dashboardRe = regexp.MustCompile(`<dashboard name='([^']+)'>`)
	captionRe   = regexp.MustCompile(`caption='([^']+)'`)
	aliasRe     = regexp.MustCompile(`<alias key='[^']+' value='([^']+)' />`)
	memberRe    = regexp.MustCompile(`<member alias='([^']+)'`)
	runRe       = regexp.MustCompile(`<run[^>]*>([^<]+)</run>`)

	// technicalRe matches pure lowercase-and-underscore identifiers
	// (internal field names, never user-facing).
	technicalRe = regexp.MustCompile(`^[a-z_]+$`)
)

// Extract returns the unique candidate strings found in the workbook
// text, grouped by category. Candidates are deduplicated within each
// category and returned sorted for deterministic batching. An empty
// document yields empty sets, not an error.
func Extract(content string) map[Category][]string {
	return map[Category][]string{
		CategoryWorksheetNames: unique(worksheetRe, content, nil),
		CategoryDashboardNames: unique(dashboardRe, content, nil),
		CategoryCaptions:       unique(captionRe, content, keepCaption),
		CategoryAliases:        unique(aliasRe, content, keepPlain),
		CategoryMembers:        unique(memberRe, content, keepPlain),
		CategoryDescriptions:   unique(runRe, content, keepDescription),
	}
}

// Total returns the number of candidates across all categories.
func Total(candidates map[Category][]string) int {
	n := 0
	for _, items := range candidates {
		n += len(items)
	}
	return n
}

// keepCaption drops caption values that are technical identifiers,
// field references ([...]), relative references (leading period), or
// contain an unescaped-entity risk (&).
func keepCaption(s string) (string, bool) {
	if technicalRe.MatchString(s) {
		return "", false
	}
	if strings.Contains(s, "[") || strings.HasPrefix(s, ".") || strings.Contains(s, "&") {
		return "", false
	}
	return s, true
}

// keepPlain drops values containing an ampersand. A string that already
// carries an entity marker is assumed pre-escaped or structurally
// sensitive; translating and re-escaping it risks double encoding.
func keepPlain(s string) (string, bool) {
	if strings.Contains(s, "&") {
		return "", false
	}
	return s, true
}

// keepDescription trims run text and drops empty or entity-bearing
// content.
func keepDescription(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, "&") {
		return "", false
	}
	return s, true
}

// unique collects capture group 1 of every match, applies the optional
// filter, deduplicates, and sorts.
func unique(re *regexp.Regexp, content string, keep func(string) (string, bool)) []string {
	seen := make(map[string]bool)
	var items []string
	for _, m := range re.FindAllStringSubmatch(content, -1) {
		s := m[1]
		if keep != nil {
			var ok bool
			if s, ok = keep(s); !ok {
				continue
			}
		}
		if !seen[s] {
			seen[s] = true
			items = append(items, s)
		}
	}
	sort.Strings(items)
	return items
}
