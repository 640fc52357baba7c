package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 4, cfg.LobbyCapacity)
	assert.Equal(t, 90*time.Second, cfg.LobbyTTL)
	assert.Equal(t, 15*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 1500*time.Millisecond, cfg.PollInterval)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOBBYSYNC_ADDR", ":9999")
	t.Setenv("LOBBYSYNC_CAPACITY", "8")
	t.Setenv("LOBBYSYNC_POLL_INTERVAL", "500ms")

	cfg := Load()

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 8, cfg.LobbyCapacity)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("LOBBYSYNC_CAPACITY", "not-a-number")
	t.Setenv("LOBBYSYNC_LOBBY_TTL", "soon")

	cfg := Load()

	assert.Equal(t, 4, cfg.LobbyCapacity)
	assert.Equal(t, 90*time.Second, cfg.LobbyTTL)
}
