package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 10, cfg.Reports.TopTopics)
	assert.Equal(t, 5, cfg.Dashboard.UpcomingLimit)
	assert.Equal(t, "tutor.db", filepath.Base(cfg.Database.Path))
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := defaultAppConfig()
	cfg.Database.Path = "/tmp/lessons.db"
	cfg.Log.Level = "debug"
	cfg.Reports.TopStudents = 3
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/lessons.db", loaded.Database.Path)
	assert.Equal(t, "debug", loaded.Log.Level)
	assert.Equal(t, 3, loaded.Reports.TopStudents)
	assert.Equal(t, 10, loaded.Reports.TopTopics)
}

func TestLoadConfigClampsNonPositiveLimits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("reports:\n  top_topics: 0\ndashboard:\n  upcoming_limit: -1\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Reports.TopTopics)
	assert.Equal(t, 5, cfg.Dashboard.UpcomingLimit)
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log: [unclosed\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
