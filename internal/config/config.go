// Package config provides the optional settings file controlling
// request politeness and output defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Settings holds tunables that are not part of the CLI surface.
// All fields have working defaults; a settings file only needs the
// values it wants to change.
type Settings struct {
	UserAgent      string `yaml:"userAgent"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	Retries        int    `yaml:"retries"`
	DelayMS        int    `yaml:"delayMs"`
	BackoffMS      int    `yaml:"backoffMs"`
	OutputDir      string `yaml:"outputDir"`
}

// Default returns the settings used when no file is provided.
func Default() *Settings {
	return &Settings{
		UserAgent:      "Mozilla/5.0 (compatible; noveldl/1.0)",
		TimeoutSeconds: 20,
		Retries:        3,
		DelayMS:        500,
		BackoffMS:      1000,
		OutputDir:      ".",
	}
}

// Load reads a settings file in YAML or JSON format, chosen by file
// extension. Unknown extensions are tried as YAML first, then JSON.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	s := Default()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("failed to parse YAML settings: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("failed to parse JSON settings: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, s); err != nil {
			if err := json.Unmarshal(data, s); err != nil {
				return nil, fmt.Errorf("failed to parse settings (tried YAML and JSON): %w", err)
			}
		}
	}

	if err := Validate(s); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return s, nil
}

// Validate checks the settings for consistency.
func Validate(s *Settings) error {
	if s.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeoutSeconds must be > 0")
	}
	if s.Retries < 1 {
		return fmt.Errorf("retries must be >= 1")
	}
	if s.DelayMS < 0 {
		return fmt.Errorf("delayMs must be >= 0")
	}
	if s.BackoffMS < 0 {
		return fmt.Errorf("backoffMs must be >= 0")
	}
	if s.OutputDir == "" {
		s.OutputDir = "."
	}
	return nil
}
