package settings

import (
	"os"
	"path/filepath"
	"testing"
)

// isolate points XDG_DATA_HOME at a temp dir and clears the key env
// vars so tests never touch real user state.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("TWBLOC_API_KEY", "")
	return dir
}

func TestStore_RoundTrip(t *testing.T) {
	dir := isolate(t)

	if err := SaveStore(Store{"anthropic": "sk-test-123"}); err != nil {
		t.Fatalf("SaveStore: %v", err)
	}

	path := filepath.Join(dir, "twbloc", "auth.json")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("auth.json not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("auth.json permissions = %o, want 0600", perm)
	}

	store, err := LoadStore()
	if err != nil {
		t.Fatalf("LoadStore: %v", err)
	}
	if store["anthropic"] != "sk-test-123" {
		t.Errorf("store = %v", store)
	}
}

func TestLoadStore_Missing(t *testing.T) {
	isolate(t)
	store, err := LoadStore()
	if err != nil {
		t.Fatalf("missing store must not error: %v", err)
	}
	if len(store) != 0 {
		t.Errorf("store = %v, want empty", store)
	}
}

func TestAPIKey_FlagWins(t *testing.T) {
	isolate(t)
	t.Setenv("ANTHROPIC_API_KEY", "from-env")
	if got := APIKey("anthropic", "from-flag"); got != "from-flag" {
		t.Errorf("APIKey = %q, want flag value", got)
	}
}

func TestAPIKey_ProviderEnv(t *testing.T) {
	isolate(t)
	t.Setenv("ANTHROPIC_API_KEY", "from-env")
	t.Setenv("TWBLOC_API_KEY", "generic")
	if got := APIKey("anthropic", ""); got != "from-env" {
		t.Errorf("APIKey = %q, want provider env value", got)
	}
}

func TestAPIKey_GenericEnvFallback(t *testing.T) {
	isolate(t)
	t.Setenv("TWBLOC_API_KEY", "generic")
	if got := APIKey("openai", ""); got != "generic" {
		t.Errorf("APIKey = %q, want TWBLOC_API_KEY value", got)
	}
}

func TestAPIKey_StoreFallback(t *testing.T) {
	isolate(t)
	if err := SaveStore(Store{"openai": "stored-key"}); err != nil {
		t.Fatal(err)
	}
	if got := APIKey("openai", ""); got != "stored-key" {
		t.Errorf("APIKey = %q, want stored key", got)
	}
}

func TestAPIKey_NoneAvailable(t *testing.T) {
	isolate(t)
	if got := APIKey("anthropic", ""); got != "" {
		t.Errorf("APIKey = %q, want empty", got)
	}
}
