// Package settings provides storage for twbloc user credentials.
//
// API keys are stored in auth.json under the XDG data directory:
//
//	$XDG_DATA_HOME/twbloc/  (default: ~/.local/share/twbloc/)
//
// keyed by provider ID. File permissions are 0600 (owner read/write
// only).
//
// Lookup order for API keys:
//  1. --api-key flag (highest priority)
//  2. Provider environment variable (ANTHROPIC_API_KEY, OPENAI_API_KEY)
//  3. TWBLOC_API_KEY environment variable
//  4. This credential store
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	dataDirName = "twbloc"
	fileName    = "auth.json"
)

// Store holds API keys keyed by provider ID.
type Store map[string]string

// dataDir returns the XDG data directory for twbloc.
// Respects $XDG_DATA_HOME, falling back to ~/.local/share.
func dataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

// FilePath returns the path to auth.json.
func FilePath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// LoadStore reads auth.json. A missing file yields an empty store.
func LoadStore() (Store, error) {
	path, err := FilePath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var store Store
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return store, nil
}

// SaveStore writes auth.json with 0600 permissions, creating the data
// directory as needed.
func SaveStore(store Store) error {
	path, err := FilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// envVarFor maps a provider ID to its conventional environment variable.
func envVarFor(provider string) string {
	switch provider {
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}

// APIKey resolves the API key for a provider: explicit flag value
// first, then the provider's environment variable, then TWBLOC_API_KEY,
// then the credential store. An empty result means no key is available.
func APIKey(provider, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := envVarFor(provider); env != "" {
		if key := strings.TrimSpace(os.Getenv(env)); key != "" {
			return key
		}
	}
	if key := strings.TrimSpace(os.Getenv("TWBLOC_API_KEY")); key != "" {
		return key
	}
	if store, err := LoadStore(); err == nil {
		return store[provider]
	}
	return ""
}
