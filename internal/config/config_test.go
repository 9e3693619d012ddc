package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8000", cfg.ListenAddr)
	assert.Equal(t, "sqlite://./jamdash.db", cfg.DatabaseURL)
	assert.Equal(t, 500, cfg.MergeBatch)
	assert.Equal(t, time.Hour, cfg.TaskRetention)
	assert.True(t, cfg.SeedDemoData)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("DATABASE_URL", "postgres://localhost/jam")
	t.Setenv("MERGE_BATCH_SIZE", "50")
	t.Setenv("TASK_RETENTION", "30m")
	t.Setenv("SEED_DEMO_DATA", "false")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "postgres://localhost/jam", cfg.DatabaseURL)
	assert.Equal(t, 50, cfg.MergeBatch)
	assert.Equal(t, 30*time.Minute, cfg.TaskRetention)
	assert.False(t, cfg.SeedDemoData)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("MERGE_BATCH_SIZE", "lots")
	t.Setenv("TASK_RETENTION", "soon")

	cfg := Load()

	assert.Equal(t, 500, cfg.MergeBatch)
	assert.Equal(t, time.Hour, cfg.TaskRetention)
}
