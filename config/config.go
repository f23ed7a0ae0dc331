// Package config — .twbloc.yaml configuration file support.
//
// When a .twbloc.yaml file exists next to the workbook (or in the
// working directory), it supplies run defaults: input file, target
// language, provider selection, batch size, and the preserve-terms
// list. Command-line flags always win over file values. The loaded
// Config is passed explicitly into the pipeline entry point; no
// component reads ambient configuration state.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the working directory.
const FileName = ".twbloc.yaml"

// Config is the top-level .twbloc.yaml structure.
type Config struct {
	// Input is the default workbook file path.
	Input string `yaml:"input,omitempty"`
	// Language is the default target language name.
	Language string `yaml:"language,omitempty"`
	// Output is a fixed output path (default: derived from input and
	// language code).
	Output string `yaml:"output,omitempty"`

	// Provider is the AI provider ID (anthropic, openai, mock).
	Provider string `yaml:"provider,omitempty"`
	// Model overrides the provider's default model.
	Model string `yaml:"model,omitempty"`
	// BaseURL overrides the provider's API base URL.
	BaseURL string `yaml:"base_url,omitempty"`
	// BatchSize is how many strings to translate per API call.
	BatchSize int `yaml:"batch_size,omitempty"`

	// PreserveTerms lists proper nouns and place names the translation
	// service must keep verbatim.
	PreserveTerms []string `yaml:"preserve_terms,omitempty"`
}

// Default returns the built-in configuration defaults.
func Default() Config {
	return Config{
		Language: "English",
		Provider: "anthropic",
	}
}

// Load reads the configuration file at path, layered over Default().
// A missing file is not an error: defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Provider {
	case "", "anthropic", "openai", "mock":
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("batch_size must not be negative")
	}
	return nil
}
