// Package config loads, saves, and migrates the per-project jobdone
// configuration stored at .jobdone/config.yaml.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/bborn/jobdone/internal/project"
	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// CurrentVersion is the schema version written by this build.
const CurrentVersion = 1

// Config is the typed form of .jobdone/config.yaml.
type Config struct {
	Version    int      `yaml:"version"`
	Statuses   []string `yaml:"statuses"`
	Priorities []string `yaml:"priorities"`
	Defaults   Defaults `yaml:"defaults"`
}

// Defaults holds the creation-time defaults.
type Defaults struct {
	Priority string `yaml:"priority"`
	Template string `yaml:"template"`
}

// DefaultTemplate is the body written for new tasks, with the
// {{ title }}, {{ priority }} and {{ date }} placeholders substituted
// at creation time.
const DefaultTemplate = `---
title: {{ title }}
priority: {{ priority }}
created: {{ date }}
---

## Description

<!-- What needs to be done? -->

## Acceptance Criteria

- [ ] ...
`

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Version:    CurrentVersion,
		Statuses:   []string{"todo", "doing", "done"},
		Priorities: []string{"low", "medium", "high"},
		Defaults: Defaults{
			Priority: "medium",
			Template: DefaultTemplate,
		},
	}
}

// Load reads the project config, falling back to the built-in defaults
// for the whole file or for any missing field. It never returns an
// error: a missing or corrupt config must not block task listing.
func Load(root string) Config {
	def := Default()

	data, err := os.ReadFile(project.ConfigPath(root))
	if err != nil {
		return def
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return def
	}

	if cfg.Version == 0 {
		cfg.Version = def.Version
	}
	if len(cfg.Statuses) == 0 {
		cfg.Statuses = def.Statuses
	}
	if len(cfg.Priorities) == 0 {
		cfg.Priorities = def.Priorities
	}
	if cfg.Defaults.Priority == "" {
		cfg.Defaults.Priority = def.Defaults.Priority
	}
	if cfg.Defaults.Template == "" {
		cfg.Defaults.Template = def.Defaults.Template
	}
	return cfg
}

// LoadRaw reads the config as an untyped mapping without applying any
// defaults. Migration needs the file as it actually is, so unlike Load
// this propagates read and parse failures.
func LoadRaw(root string) (map[string]any, error) {
	data, err := os.ReadFile(project.ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return raw, nil
}

// Serialize renders a config to its persisted YAML form.
func Serialize(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// Save writes the config atomically to .jobdone/config.yaml.
func Save(root string, cfg Config) error {
	data, err := Serialize(cfg)
	if err != nil {
		return fmt.Errorf("serialize config: %w", err)
	}
	if err := atomic.WriteFile(project.ConfigPath(root), strings.NewReader(string(data))); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SaveRaw writes an untyped config mapping, used after migration so
// unknown fields survive untouched.
func SaveRaw(root string, raw map[string]any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("serialize config: %w", err)
	}
	if err := atomic.WriteFile(project.ConfigPath(root), strings.NewReader(string(data))); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ValidStatus reports whether s is one of the configured statuses.
func (c Config) ValidStatus(s string) bool {
	for _, status := range c.Statuses {
		if status == s {
			return true
		}
	}
	return false
}

// ValidPriority reports whether p is one of the configured priorities.
func (c Config) ValidPriority(p string) bool {
	for _, priority := range c.Priorities {
		if priority == p {
			return true
		}
	}
	return false
}
