package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// PromptConfig holds the guideline block appended to every system instruction.
// Personas and examples are fixed per focus mode and are not configurable.
type PromptConfig struct {
	Guidelines []string `yaml:"guidelines"`
}

// DefaultGuidelines are used when prompt.yaml is absent or lists none.
var DefaultGuidelines = []string{
	"ALWAYS use the Google Search tool for grounding.",
	"Format output in Markdown. Use bold headers, bullet points, and tables where appropriate.",
	"Include citations as clear links at the end of the response.",
	"If information is unavailable or contradictory, state so clearly.",
}

// DefaultPromptConfig returns default prompt configuration
func DefaultPromptConfig() *PromptConfig {
	guidelines := make([]string, len(DefaultGuidelines))
	copy(guidelines, DefaultGuidelines)
	return &PromptConfig{Guidelines: guidelines}
}

// PromptConfigPath returns the prompt config file path
func PromptConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "prompt.yaml"), nil
}

// LoadPromptConfig loads prompt configuration from file.
// A missing file yields the defaults.
func LoadPromptConfig() (*PromptConfig, error) {
	configPath, err := PromptConfigPath()
	if err != nil {
		return DefaultPromptConfig(), nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultPromptConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt config: %w", err)
	}

	var cfg PromptConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse prompt config: %w", err)
	}

	cfg.Guidelines = compactGuidelines(cfg.Guidelines)
	if len(cfg.Guidelines) == 0 {
		return DefaultPromptConfig(), nil
	}

	return &cfg, nil
}

func compactGuidelines(in []string) []string {
	out := make([]string, 0, len(in))
	for _, g := range in {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}
