// Package langmeta provides a shared language metadata registry
// (file-naming codes and native names) used for output file naming
// and CLI display.
package langmeta

import "strings"

// Meta describes language display metadata.
type Meta struct {
	// Code is the 2-letter uppercase tag appended to output file names.
	Code string
	// Native is the language's native name, shown in the CLI.
	Native string
}

// Registry contains canonical language metadata, keyed by the
// lowercased English language name accepted on the command line.
var Registry = map[string]Meta{
	"english":    {Code: "EN", Native: "English"},
	"french":     {Code: "FR", Native: "Français"},
	"german":     {Code: "DE", Native: "Deutsch"},
	"spanish":    {Code: "ES", Native: "Español"},
	"italian":    {Code: "IT", Native: "Italiano"},
	"portuguese": {Code: "PT", Native: "Português"},
	"russian":    {Code: "RU", Native: "Русский"},
	"chinese":    {Code: "ZH", Native: "中文"},
	"japanese":   {Code: "JP", Native: "日本語"},
	"korean":     {Code: "KR", Native: "한국어"},
	"dutch":      {Code: "NL", Native: "Nederlands"},
	"polish":     {Code: "PL", Native: "Polski"},
	"swedish":    {Code: "SE", Native: "Svenska"},
	"finnish":    {Code: "FI", Native: "Suomi"},
	"norwegian":  {Code: "NO", Native: "Norsk"},
	"danish":     {Code: "DK", Native: "Dansk"},
}

// Code returns the file-naming code for a language name.
// Unknown languages fall back to the first two letters, uppercased.
func Code(language string) string {
	if meta, ok := Registry[strings.ToLower(language)]; ok {
		return meta.Code
	}
	runes := []rune(language)
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return strings.ToUpper(string(runes))
}

// Known reports whether the language name is in the registry.
func Known(language string) bool {
	_, ok := Registry[strings.ToLower(language)]
	return ok
}
