package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"interview-prep-simulator/internal/storage"
)

// Load reads and validates the interview catalog from a YAML file.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", filename, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &config, nil
}

// LoadOrDefault behaves like Load but falls back to DefaultConfig when the file does not exist.
func LoadOrDefault(filename string) (*Config, error) {
	config, err := Load(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return config, err
}

func validateConfig(config *Config) error {
	seen := make(map[string]bool, len(config.InterviewTypes))
	for i, it := range config.InterviewTypes {
		if parsed, err := storage.ParseInterviewType(it.Name); err != nil || string(parsed) != it.Name {
			return fmt.Errorf("interview type %d: unknown name %q", i, it.Name)
		}
		if seen[it.Name] {
			return fmt.Errorf("interview type %q is defined twice", it.Name)
		}
		seen[it.Name] = true

		if it.Title == "" {
			return fmt.Errorf("interview type %q must have title", it.Name)
		}

		if it.Focus == "" {
			return fmt.Errorf("interview type %q must have focus", it.Name)
		}
	}

	for _, t := range storage.InterviewTypes {
		if !seen[string(t)] {
			return fmt.Errorf("interview type %q is missing", t)
		}
	}

	return nil
}
