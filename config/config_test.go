package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-ai/engine"
	"github.com/mnemo-ai/engine/knowledge"
	"github.com/mnemo-ai/engine/memory"
)

const sampleConfig = `
importance:
  hierarchy_bonus: 8
  age_decay: 0.2
memory:
  relevance_threshold: 0.5
  relevance_limit: 10
  trend_window: 30
  compress_keep_recent: 40
  compress_threshold: 80
  query_cache: true
agent:
  cleanup_frequency: 30m
  default_task_duration: 45m
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	factors := cfg.Importance.Factors()
	assert.Equal(t, 8.0, factors.HierarchyBonus)
	assert.Equal(t, 0.2, factors.AgeDecay)
	// Unset overrides keep their defaults.
	assert.Equal(t, 3.0, factors.ChildrenBonus)

	assert.Equal(t, 0.5, cfg.Memory.GetRelevanceThreshold())
	assert.Equal(t, 10, cfg.Memory.GetRelevanceLimit())
	assert.Equal(t, 30, cfg.Memory.GetTrendWindow())
	assert.Equal(t, memory.CompressOptions{KeepRecent: 40, Threshold: 80}, cfg.Memory.CompressOptions())
	assert.Len(t, cfg.Memory.StoreOptions(), 1)

	assert.Equal(t, 30*time.Minute, cfg.Agent.GetCleanupFrequency())
	assert.Equal(t, 45*time.Minute, cfg.Agent.GetDefaultTaskDuration())
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, knowledge.DefaultImportanceFactors(), cfg.Importance.Factors())
	assert.Equal(t, memory.DefaultThreshold, cfg.Memory.GetRelevanceThreshold())
	assert.Equal(t, memory.DefaultLimit, cfg.Memory.GetRelevanceLimit())
	assert.Equal(t, memory.DefaultTrendWindow, cfg.Memory.GetTrendWindow())
	assert.Nil(t, cfg.Memory.StoreOptions())
	assert.Equal(t, time.Hour, cfg.Agent.GetCleanupFrequency())
	assert.Equal(t, 60*time.Minute, cfg.Agent.GetDefaultTaskDuration())
}

func TestParse_UnknownKey(t *testing.T) {
	_, err := Parse([]byte("memory:\n  relevance_treshold: 0.5\n"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, &engine.Error{Kind: engine.KindDeserialization}))
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"threshold above one", "memory:\n  relevance_threshold: 1.5\n"},
		{"negative limit", "memory:\n  relevance_limit: -1\n"},
		{"negative window", "memory:\n  trend_window: -5\n"},
		{"negative compress", "memory:\n  compress_keep_recent: -1\n"},
		{"bad cleanup frequency", "agent:\n  cleanup_frequency: soon\n"},
		{"bad task duration", "agent:\n  default_task_duration: list\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))

			require.Error(t, err)
			assert.True(t, errors.Is(err, engine.ErrInvalidConfig))
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	// Direct file path.
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Memory.GetRelevanceLimit())

	// Directory lookup.
	cfg, err = Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Memory.GetRelevanceLimit())
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
