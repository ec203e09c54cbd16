// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the run configuration for the migrator.
//
// The configuration governs file selection and execution only — which
// files are visited, how many workers run, how large a file may be. The
// rewrite rule itself is fixed and has no configuration surface.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigYAML []byte

const (
	// DefaultJobs is the default number of parallel file workers.
	DefaultJobs = 4

	// DefaultMaxFileSize is the default per-file size limit in bytes (10MB).
	DefaultMaxFileSize = 10 * 1024 * 1024
)

// Config is the run configuration.
//
// Thread Safety: Immutable after loading; safe for concurrent use.
type Config struct {
	// Jobs is the number of files processed in parallel. Files never
	// share state, so any value >= 1 is safe.
	Jobs int `yaml:"jobs"`

	// MaxFileSize is the per-file size limit in bytes.
	MaxFileSize int64 `yaml:"max_file_size"`

	// Extensions lists the file suffixes visited when a directory is
	// given on the command line.
	Extensions []string `yaml:"extensions"`

	// Exclude lists glob patterns (matched against the file's base name
	// or its full slash path) that are skipped during discovery.
	Exclude []string `yaml:"exclude"`
}

// Load returns the configuration: the embedded defaults, overlaid with
// the YAML file at path when path is non-empty.
//
// Outputs:
//   - *Config: The merged, validated configuration. Never nil on success.
//   - error: Unreadable file, malformed YAML, or a validation failure.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultConfigYAML, cfg); err != nil {
		return nil, fmt.Errorf("embedded default config is malformed: %w", err)
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the runner cannot work with.
func (c *Config) Validate() error {
	if c.Jobs < 1 {
		return fmt.Errorf("config: jobs must be >= 1, got %d", c.Jobs)
	}
	if c.MaxFileSize < 1 {
		return fmt.Errorf("config: max_file_size must be >= 1, got %d", c.MaxFileSize)
	}
	if len(c.Extensions) == 0 {
		return fmt.Errorf("config: extensions must not be empty")
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("config: extension %q must start with a dot", ext)
		}
	}
	return nil
}
