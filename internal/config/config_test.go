package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGateConfig_Defaults(t *testing.T) {
	c := NewGateConfig(context.Background())

	assert.Equal(t, 3*time.Second, c.Cooldown)
	assert.Equal(t, 10*time.Second, c.DedupTTL)
	assert.Equal(t, 30*time.Second, c.RespondedTTL)
	assert.Equal(t, 45, c.DailyLimit)
	assert.Equal(t, 5*time.Minute, c.SweepInterval)
	assert.Equal(t, 30*24*time.Hour, c.InactiveAfter)
}

func TestGateConfig_FromEnv(t *testing.T) {
	t.Setenv("GATE_COOLDOWN", "1500ms")
	t.Setenv("GATE_DAILY_LIMIT", "5")

	c := NewGateConfig(context.Background())

	assert.Equal(t, 1500*time.Millisecond, c.Cooldown)
	assert.Equal(t, 5, c.DailyLimit)
}

func TestMemoryConfig_Defaults(t *testing.T) {
	c := NewMemoryConfig(context.Background())

	assert.Equal(t, 50, c.MaxMessages)
	assert.Equal(t, 20, c.MaxTurns)
	assert.Equal(t, 200, c.MaxEmbeddings)
	assert.Equal(t, 5, c.ProfileEvery)
	assert.Equal(t, 15*time.Minute, c.ProfileInterval)
}

func TestTelegramConfig_AllowedChats(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("TELEGRAM_ALLOWED_CHATS", "-100123,42")

	c := NewTelegramConfig(context.Background())

	assert.Equal(t, []int64{-100123, 42}, c.AllowedChats)
}

func TestResolveRuntimePath(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "rt")
	assert.Equal(t, abs, resolveRuntimePath(abs))
	assert.True(t, filepath.IsAbs(resolveRuntimePath("")))
	assert.Equal(t, defaultRuntimeDir, filepath.Base(resolveRuntimePath("")))
}

func TestAppConfig_Paths(t *testing.T) {
	t.Setenv("CHATGATE_RUNTIME_PATH", "/srv/chatgate")
	c := NewAppConfig(context.Background())

	assert.Equal(t, "/srv/chatgate/chatgate.db", c.GetDatabasePath())
	assert.Equal(t, "/srv/chatgate/bot_memory.json", c.GetSnapshotPath())
	assert.Equal(t, StoreSQLite, c.StoreBackend)
}
