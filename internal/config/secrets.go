package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Secrets holds the entries of the .secrets file kept next to config.yaml.
// The file uses dotenv syntax: KEY=value, optional "export " and quotes.
type Secrets struct {
	values map[string]string
}

// SecretsPath returns the secrets file path
func SecretsPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".secrets"), nil
}

// LoadSecrets reads the .secrets file. A missing file yields empty secrets
// and no error.
func LoadSecrets() (*Secrets, error) {
	path, err := SecretsPath()
	if err != nil {
		return &Secrets{}, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Secrets{}, nil
	}
	if err != nil {
		return &Secrets{}, fmt.Errorf("failed to read secrets: %w", err)
	}
	return parseSecrets(string(data)), nil
}

// parseSecrets skips blank lines, comments and lines without '='
func parseSecrets(data string) *Secrets {
	s := &Secrets{values: map[string]string{}}
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(strings.TrimPrefix(line, "export "), "=")
		if !ok {
			continue
		}
		s.values[strings.TrimSpace(key)] = unquote(strings.TrimSpace(value))
	}
	return s
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

// Get returns the value for a key
func (s *Secrets) Get(key string) string {
	if s == nil {
		return ""
	}
	return s.values[key]
}

// GetGeminiAPIKey returns the first non-empty key entry, using the same
// names and priority as the environment
func (s *Secrets) GetGeminiAPIKey() string {
	for _, name := range apiKeyEnvVars {
		if v := s.Get(name); v != "" {
			return v
		}
	}
	return ""
}
