// Package config provides loading and parsing of engine.yaml configuration
// files. Configuration tunes the importance model, memory store query and
// compression parameters, and the agent cleanup cadence; every knob has a
// default, so an empty document is a valid configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mnemo-ai/engine"
	"github.com/mnemo-ai/engine/knowledge"
	"github.com/mnemo-ai/engine/memory"
)

// Config represents an engine.yaml configuration file.
type Config struct {
	// Importance overrides the importance model factors.
	Importance *ImportanceConfig `yaml:"importance,omitempty"`

	// Memory tunes relevance queries and compression.
	Memory *MemoryConfig `yaml:"memory,omitempty"`

	// Agent tunes the task lifecycle and cleanup cadence.
	Agent *AgentConfig `yaml:"agent,omitempty"`
}

// ImportanceConfig overrides individual importance factors. Omitted fields
// keep their defaults.
type ImportanceConfig struct {
	HierarchyBonus  *float64 `yaml:"hierarchy_bonus,omitempty"`
	ChildrenBonus   *float64 `yaml:"children_bonus,omitempty"`
	ReferencesBonus *float64 `yaml:"references_bonus,omitempty"`
	TagBonus        *float64 `yaml:"tag_bonus,omitempty"`
	AgeDecay        *float64 `yaml:"age_decay,omitempty"`
}

// Factors resolves the configured overrides against the default factors.
func (c *ImportanceConfig) Factors() knowledge.ImportanceFactors {
	f := knowledge.DefaultImportanceFactors()
	if c == nil {
		return f
	}
	if c.HierarchyBonus != nil {
		f.HierarchyBonus = *c.HierarchyBonus
	}
	if c.ChildrenBonus != nil {
		f.ChildrenBonus = *c.ChildrenBonus
	}
	if c.ReferencesBonus != nil {
		f.ReferencesBonus = *c.ReferencesBonus
	}
	if c.TagBonus != nil {
		f.TagBonus = *c.TagBonus
	}
	if c.AgeDecay != nil {
		f.AgeDecay = *c.AgeDecay
	}
	return f
}

// MemoryConfig tunes the memory store.
type MemoryConfig struct {
	// RelevanceThreshold is the minimum score a query result must reach.
	// Default: 0.3
	RelevanceThreshold float64 `yaml:"relevance_threshold,omitempty"`

	// RelevanceLimit is the default result count for relevance queries.
	// Default: 5
	RelevanceLimit int `yaml:"relevance_limit,omitempty"`

	// TrendWindow is the interaction count per trend comparison window.
	// Default: 20
	TrendWindow int `yaml:"trend_window,omitempty"`

	// CompressKeepRecent is how many recent interactions compression keeps
	// unconditionally. Default: 50
	CompressKeepRecent int `yaml:"compress_keep_recent,omitempty"`

	// CompressThreshold is the history length above which compression
	// applies. Default: 100
	CompressThreshold int `yaml:"compress_threshold,omitempty"`

	// QueryCache enables the relevance query cache. Default: false
	QueryCache bool `yaml:"query_cache,omitempty"`
}

// GetRelevanceThreshold returns the configured threshold or the default.
func (m *MemoryConfig) GetRelevanceThreshold() float64 {
	if m == nil || m.RelevanceThreshold <= 0 {
		return memory.DefaultThreshold
	}
	return m.RelevanceThreshold
}

// GetRelevanceLimit returns the configured result limit or the default.
func (m *MemoryConfig) GetRelevanceLimit() int {
	if m == nil || m.RelevanceLimit <= 0 {
		return memory.DefaultLimit
	}
	return m.RelevanceLimit
}

// GetTrendWindow returns the configured trend window or the default.
func (m *MemoryConfig) GetTrendWindow() int {
	if m == nil || m.TrendWindow <= 0 {
		return memory.DefaultTrendWindow
	}
	return m.TrendWindow
}

// CompressOptions returns the configured compression options. Zero fields
// fall back to the memory package defaults.
func (m *MemoryConfig) CompressOptions() memory.CompressOptions {
	if m == nil {
		return memory.CompressOptions{}
	}
	return memory.CompressOptions{
		KeepRecent: m.CompressKeepRecent,
		Threshold:  m.CompressThreshold,
	}
}

// StoreOptions returns the store construction options implied by the
// configuration.
func (m *MemoryConfig) StoreOptions() []memory.Option {
	if m == nil || !m.QueryCache {
		return nil
	}
	return []memory.Option{memory.WithQueryCache()}
}

// AgentConfig tunes the agent lifecycle.
type AgentConfig struct {
	// CleanupFrequency is how often cleanup becomes due.
	// Format: Go duration string (e.g., "30m", "1h"). Default: 1h
	CleanupFrequency string `yaml:"cleanup_frequency,omitempty"`

	// DefaultTaskDuration is the estimated duration used when a task
	// specifies none. Format: Go duration string. Default: 60m
	DefaultTaskDuration string `yaml:"default_task_duration,omitempty"`
}

// GetCleanupFrequency parses the cleanup frequency string and returns a
// duration. Returns the default value if not set or invalid.
func (a *AgentConfig) GetCleanupFrequency() time.Duration {
	if a == nil || a.CleanupFrequency == "" {
		return time.Hour
	}
	d, err := time.ParseDuration(a.CleanupFrequency)
	if err != nil {
		return time.Hour
	}
	return d
}

// GetDefaultTaskDuration parses the default task duration string and
// returns a duration. Returns the default value if not set or invalid.
func (a *AgentConfig) GetDefaultTaskDuration() time.Duration {
	if a == nil || a.DefaultTaskDuration == "" {
		return 60 * time.Minute
	}
	d, err := time.ParseDuration(a.DefaultTaskDuration)
	if err != nil {
		return 60 * time.Minute
	}
	return d
}

// Parse decodes a configuration document. Decoding is strict: unknown keys
// are rejected rather than ignored, so typos surface at load time instead
// of silently falling back to defaults.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		// An empty document is a valid, all-defaults configuration.
		if errors.Is(err, io.EOF) {
			return &Config{}, nil
		}
		return nil, engine.NewDeserializationError("config.Parse", err).
			WithContext(map[string]any{"cause": engine.ErrInvalidConfig.Error()})
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads and parses an engine.yaml file from the given path. If the
// path is a directory, it looks for engine.yaml or engine.yml in that
// directory.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	configPath := path
	if info.IsDir() {
		yamlPath := filepath.Join(path, "engine.yaml")
		if _, err := os.Stat(yamlPath); err == nil {
			configPath = yamlPath
		} else {
			ymlPath := filepath.Join(path, "engine.yml")
			if _, err := os.Stat(ymlPath); err != nil {
				return nil, fmt.Errorf("no engine.yaml or engine.yml found in %s", path)
			}
			configPath = ymlPath
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Validate checks the configured values for range errors.
func (c *Config) Validate() error {
	const op = "config.Validate"

	if m := c.Memory; m != nil {
		if m.RelevanceThreshold < 0 || m.RelevanceThreshold > 1 {
			return engine.NewValidationError(op, engine.ErrInvalidConfig).
				WithContext(map[string]any{"field": "memory.relevance_threshold", "value": m.RelevanceThreshold})
		}
		if m.RelevanceLimit < 0 {
			return engine.NewValidationError(op, engine.ErrInvalidConfig).
				WithContext(map[string]any{"field": "memory.relevance_limit", "value": m.RelevanceLimit})
		}
		if m.TrendWindow < 0 {
			return engine.NewValidationError(op, engine.ErrInvalidConfig).
				WithContext(map[string]any{"field": "memory.trend_window", "value": m.TrendWindow})
		}
		if m.CompressKeepRecent < 0 || m.CompressThreshold < 0 {
			return engine.NewValidationError(op, engine.ErrInvalidConfig).
				WithContext(map[string]any{"field": "memory.compress", "value": fmt.Sprintf("%d/%d", m.CompressKeepRecent, m.CompressThreshold)})
		}
	}

	if a := c.Agent; a != nil {
		if a.CleanupFrequency != "" {
			if _, err := time.ParseDuration(a.CleanupFrequency); err != nil {
				return engine.NewValidationError(op, engine.ErrInvalidConfig).
					WithContext(map[string]any{"field": "agent.cleanup_frequency", "value": a.CleanupFrequency})
			}
		}
		if a.DefaultTaskDuration != "" {
			if _, err := time.ParseDuration(a.DefaultTaskDuration); err != nil {
				return engine.NewValidationError(op, engine.ErrInvalidConfig).
					WithContext(map[string]any{"field": "agent.default_task_duration", "value": a.DefaultTaskDuration})
			}
		}
	}
	return nil
}
