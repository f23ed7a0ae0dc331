package translate

import (
	"context"
	"strconv"
	"strings"
)

// MockBackend is an offline backend for tests and the mock provider.
// It answers every prompt with a well-formed numbered list built from
// Translations, echoing unknown items unchanged.
type MockBackend struct {
	// Translations maps source text to translation.
	Translations map[string]string
	// Reply, when set, is returned verbatim for every prompt instead of
	// the generated list (used to simulate malformed service output).
	Reply string
	// Err, when set, is returned for every prompt.
	Err error
	// CallCount is the number of Complete calls received.
	CallCount int
	// LastPrompt is the last user prompt received.
	LastPrompt string
}

func (m *MockBackend) Complete(_ context.Context, _ string, userPrompt string) (string, error) {
	m.CallCount++
	m.LastPrompt = userPrompt
	if m.Err != nil {
		return "", m.Err
	}
	if m.Reply != "" {
		return m.Reply, nil
	}

	var b strings.Builder
	for i, item := range promptItems(userPrompt) {
		translated, ok := m.Translations[item]
		if !ok {
			translated = item
		}
		b.WriteString(strconv.Itoa(i+1) + ". " + translated + "\n")
	}
	return b.String(), nil
}

// promptItems recovers the numbered input items from a gateway prompt.
func promptItems(userPrompt string) []string {
	var items []string
	inList := false
	for _, line := range strings.Split(userPrompt, "\n") {
		if strings.HasPrefix(line, "Texts to translate:") {
			inList = true
			continue
		}
		if !inList {
			continue
		}
		m := numberedLineRe.FindStringSubmatch(line)
		if m == nil {
			break
		}
		items = append(items, m[2])
	}
	return items
}

// Verify MockBackend implements Backend.
var _ Backend = (*MockBackend)(nil)
