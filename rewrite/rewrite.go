// Package rewrite applies translations to raw Tableau workbook text
// through context-anchored substitution rules.
//
// Each rule scopes a replacement to one structural anchor (a specific
// attribute on a specific element kind) so a bare string match cannot
// leak into the wrong markup context. The rule table is declarative:
// every rule is a (name, anchored pattern) pair with exactly three
// capture groups — prefix anchor, original text, suffix anchor — and
// the replacement keeps both anchors byte-for-byte.
package rewrite

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/twbloc/twbloc/twbfile"
)

// Rule is one anchored substitution rule. Pattern is a regexp template
// with a single %s placeholder for the regexp-quoted original string;
// the expanded pattern must capture (prefix)(original)(suffix).
type Rule struct {
	Name    string
	Pattern string
}

// Rules returns the substitution rule table in application order.
// Ordering matters: reference-attribute rules run after the defining
// element rules they mirror, and the whitespace-tolerant run rule is a
// safety net behind the exact-match run rule.
func Rules() []Rule {
	return []Rule{
		{"sheet name", `(<(?:worksheet|dashboard) name=')(%s)(')`},
		{"dashboard ref", `(dashboard=')(%s)(')`},
		{"worksheet ref", `(worksheet=')(%s)(')`},
		{"zone name", `(<zone[^>]*name=')(%s)(')`},
		{"action target", `(<param name='target' value=')(%s)(')`},
		{"window name", `(<window class='(?:worksheet|dashboard)'[^>]*name=')(%s)(')`},
		{"thumbnail name", `(<thumbnail[^>]*name=')(%s)(')`},
		{"viewpoint name", `(<viewpoint[^>]*name=')(%s)(')`},
		{"caption", `(caption=')(%s)(')`},
		{"alias value", `(<alias key='[^']+' value=')(%s)(' />)`},
		{"member alias", `(<member alias=')(%s)(')`},
		{"run text", `(<run[^>]*>)(%s)(</run>)`},
		{"run text padded", `(<run[^>]*>)\s*(%s)\s*(</run>)`},
	}
}

// PairCount records how often one (original, translated) pair was
// substituted across all rules.
type PairCount struct {
	Original   string
	Translated string
	Count      int
}

// Result is the outcome of a full substitution pass.
type Result struct {
	// Content is the rewritten workbook text.
	Content string
	// Total is the number of replacements across all pairs and rules.
	Total int
	// Counts lists per-pair replacement counts in application order.
	Counts []PairCount
}

// Apply substitutes one (original, translated) pair in every matching
// anchor context and returns the updated text with the number of
// replacements made. Pairs where either side is empty or original
// equals translated are skipped. A pair matching zero rules is not an
// error: the string may only occur in contexts not chosen for
// substitution, or an earlier pair may have already rewritten it.
func Apply(content, original, translated string) (string, int) {
	if original == "" || translated == "" || original == translated {
		return content, 0
	}

	escaped := regexp.QuoteMeta(original)
	safe := twbfile.EscapeAttr(translated)

	total := 0
	for _, rule := range Rules() {
		re := regexp.MustCompile(fmt.Sprintf(rule.Pattern, escaped))
		content = re.ReplaceAllStringFunc(content, func(m string) string {
			parts := re.FindStringSubmatch(m)
			total++
			return parts[1] + safe + parts[3]
		})
	}
	return content, total
}

// ApplyAll substitutes every pair of the translation map, longest
// original first. The ordering is mandatory: a shorter original that is
// a substring of a longer, not-yet-translated one must not be replaced
// first, or it would corrupt the longer match's anchor context.
func ApplyAll(content string, translations map[string]string) Result {
	type pair struct{ original, translated string }
	pairs := make([]pair, 0, len(translations))
	for original, translated := range translations {
		pairs = append(pairs, pair{original, translated})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if len(pairs[i].original) != len(pairs[j].original) {
			return len(pairs[i].original) > len(pairs[j].original)
		}
		return pairs[i].original < pairs[j].original
	})

	result := Result{}
	for _, p := range pairs {
		var count int
		content, count = Apply(content, p.original, p.translated)
		result.Total += count
		result.Counts = append(result.Counts, PairCount{
			Original:   p.original,
			Translated: p.translated,
			Count:      count,
		})
	}
	result.Content = content
	return result
}
