package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "monopoly", cfg.MongoDB.Database)
	assert.Equal(t, "events", cfg.MongoDB.EventsColl)
	assert.Equal(t, "monopoly:events", cfg.Redis.EventChannel)
	assert.Equal(t, 4, cfg.Game.MaxPlayers)
	assert.Equal(t, 2, cfg.Game.MinPlayers)
	assert.Equal(t, "easy", cfg.Game.DefaultDifficulty)
	assert.False(t, cfg.Log.Production)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := chdirTemp(t)
	yaml := []byte("server:\n  port: 9090\ngame:\n  default_difficulty: hard\n  default_time_limit: 45\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("MONOPOLY_REDIS_URI", "redis.internal:6380")
	t.Setenv("MONOPOLY_LOG_PRODUCTION", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "hard", cfg.Game.DefaultDifficulty)
	assert.Equal(t, 45, cfg.Game.DefaultTimeLimit)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.URI)
	assert.True(t, cfg.Log.Production)
}

func TestLoadRejectsBadGameConfig(t *testing.T) {
	chdirTemp(t)
	t.Setenv("MONOPOLY_GAME_MAX_PLAYERS", "6")

	_, err := Load()
	assert.Error(t, err)
}

func TestGameConfigValidate(t *testing.T) {
	valid := GameConfig{MaxPlayers: 4, MinPlayers: 2, DefaultDifficulty: "easy", CommandRate: 5, CommandBurst: 10}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*GameConfig)
	}{
		{"too many players", func(g *GameConfig) { g.MaxPlayers = 5 }},
		{"min above max", func(g *GameConfig) { g.MinPlayers = 4; g.MaxPlayers = 3 }},
		{"unknown difficulty", func(g *GameConfig) { g.DefaultDifficulty = "medium" }},
		{"negative time", func(g *GameConfig) { g.DefaultTimeLimit = -1 }},
		{"no rate", func(g *GameConfig) { g.CommandRate = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := valid
			tt.mutate(&g)
			assert.Error(t, g.Validate())
		})
	}
}
